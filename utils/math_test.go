package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDegRadConversion(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1.0, 1.0+1e-9, 1e-8), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1.0, 1.1, 1e-8), test.ShouldBeFalse)
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0, 0), test.ShouldAlmostEqual, 0)
	test.That(t, AngleDiff(math.Pi-0.01, -math.Pi+0.01), test.ShouldAlmostEqual, 0.02, 1e-12)
	test.That(t, AngleDiff(-math.Pi/2, math.Pi/2), test.ShouldAlmostEqual, math.Pi)
	test.That(t, AngleDiff(0.1, 0.3), test.ShouldAlmostEqual, AngleDiff(0.3, 0.1))
}

func TestWrapAngle(t *testing.T) {
	test.That(t, WrapAngle(3*math.Pi/2), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, WrapAngle(math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, WrapAngle(-math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, WrapAngle(0.25), test.ShouldAlmostEqual, 0.25)
}
