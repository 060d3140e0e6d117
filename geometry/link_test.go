package geometry

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestLinkBetween(t *testing.T) {
	link, err := LinkBetween(Point{0, 0}, Point{3, 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, link.Length, test.ShouldAlmostEqual, 5)
	test.That(t, link.Angle, test.ShouldAlmostEqual, math.Atan2(4, 3))

	link, err = LinkBetween(Point{1, 1}, Point{-1, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, link.Length, test.ShouldAlmostEqual, 2)
	test.That(t, link.Angle, test.ShouldAlmostEqual, math.Pi)

	link, err = LinkBetween(Point{0, 0}, Point{0, -2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, link.Angle, test.ShouldAlmostEqual, -math.Pi/2)
}

func TestLinkBetweenDegenerate(t *testing.T) {
	_, err := LinkBetween(Point{2.5, -3}, Point{2.5, -3})
	test.That(t, err, test.ShouldNotBeNil)
	var degenerate *DegenerateLinkError
	test.That(t, errors.As(err, &degenerate), test.ShouldBeTrue)
	test.That(t, degenerate.At, test.ShouldResemble, Point{2.5, -3})
}

func TestLinkEnd(t *testing.T) {
	start := Point{1, 2}
	link, err := LinkBetween(start, Point{4, 6})
	test.That(t, err, test.ShouldBeNil)

	end := link.End(start)
	test.That(t, end.AlmostEqual(Point{4, 6}, 1e-12), test.ShouldBeTrue)

	rotated := link.EndAt(start, 0)
	test.That(t, rotated.AlmostEqual(Point{6, 2}, 1e-12), test.ShouldBeTrue)
}
