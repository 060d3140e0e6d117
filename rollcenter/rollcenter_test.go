package rollcenter

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
)

func TestCalculate(t *testing.T) {
	analysis := Analysis{TrackWidth: 48}
	result, err := analysis.Calculate(geometry.SampleBasic())
	test.That(t, err, test.ShouldBeNil)

	// The sample corner's arms converge inboard, putting the instant center
	// past the centerline and the roll center just above ground.
	test.That(t, result.InstantCenterFront.Y, test.ShouldAlmostEqual, -15.757, 1e-2)
	test.That(t, result.InstantCenterFront.Z, test.ShouldAlmostEqual, 1.394, 1e-2)
	test.That(t, result.Height, test.ShouldAlmostEqual, 0.8415, 1e-2)
	test.That(t, result.SwingArmLength, test.ShouldAlmostEqual, 39.78, 1e-1)
	test.That(t, result.InstantCenterSide, test.ShouldNotBeNil)
}

func TestCalculateValidation(t *testing.T) {
	_, err := Analysis{TrackWidth: 0}.Calculate(geometry.SampleBasic())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "track width")

	incomplete, err := geometry.NewMountSet("incomplete", geometry.Inches, map[string]r3.Vector{
		geometry.UCAFrontIn: {X: 22, Y: 9.812, Z: 8.875},
	})
	test.That(t, err, test.ShouldBeNil)
	_, err = Analysis{TrackWidth: 48}.Calculate(incomplete)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, geometry.LCAOut)
}

func TestCalculateParallelArms(t *testing.T) {
	// Both arms horizontal in front view: no instant center.
	flat, err := geometry.NewMountSet("flat-arms", geometry.Inches, map[string]r3.Vector{
		geometry.UCAFrontIn: {X: 22, Y: 10, Z: 9},
		geometry.UCARearIn:  {X: 28, Y: 10, Z: 9},
		geometry.LCAFrontIn: {X: 20, Y: 10, Z: 4},
		geometry.LCARearIn:  {X: 28, Y: 10, Z: 4},
		geometry.UCAOut:     {X: 25, Y: 19, Z: 9},
		geometry.LCAOut:     {X: 25, Y: 19, Z: 4},
	})
	test.That(t, err, test.ShouldBeNil)

	_, err = Analysis{TrackWidth: 48}.Calculate(flat)
	test.That(t, err, test.ShouldNotBeNil)
	var parallel *ParallelArmsError
	test.That(t, errors.As(err, &parallel), test.ShouldBeTrue)
	test.That(t, parallel.View, test.ShouldEqual, "front")
}
