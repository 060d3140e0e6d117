package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
	"github.com/CharlesShamburger/FSAE-VD/kinematics"
	"github.com/CharlesShamburger/FSAE-VD/logging"
)

func frontCorner(t *testing.T) kinematics.Chain {
	t.Helper()
	g, err := kinematics.NewPushrodGeometryFromPoints("front-left", kinematics.PushrodPoints{
		UCAIn:       geometry.Point{Y: 9.812, Z: 8.875},
		LCAIn:       geometry.Point{Y: 10, Z: 4},
		PushrodIn:   geometry.Point{Y: 8, Z: 14.75},
		UCAOut:      geometry.Point{Y: 19, Z: 11.875},
		LCAOut:      geometry.Point{Y: 20.625, Z: 5.125},
		PushrodOut:  geometry.Point{Y: 20, Z: 5},
		CamHinge:    geometry.Point{Y: 6.5, Z: 13},
		ShockOut:    geometry.Point{Y: 5, Z: 15},
		ShockIn:     geometry.Point{Y: 1, Z: 12},
		WheelCenter: geometry.Point{Y: 24, Z: 8.5},
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestSweepConfiguration(t *testing.T) {
	chain := frontCorner(t)
	opts := Options{Logger: logging.NewTestLogger(t)}

	var confErr *ConfigurationError
	_, err := Sweep(context.Background(), chain, Range{Min: 4, Max: 6, Step: 0}, opts)
	test.That(t, errors.As(err, &confErr), test.ShouldBeTrue)

	_, err = Sweep(context.Background(), chain, Range{Min: 4, Max: 6, Step: -0.1}, opts)
	test.That(t, errors.As(err, &confErr), test.ShouldBeTrue)

	_, err = Sweep(context.Background(), chain, Range{Min: 6, Max: 4, Step: 0.1}, opts)
	test.That(t, errors.As(err, &confErr), test.ShouldBeTrue)
}

func TestSweepTravel(t *testing.T) {
	chain := frontCorner(t)
	r := TravelRange(chain, 1.5, 1.5, 0.1)

	result, err := Sweep(context.Background(), chain, r, Options{Logger: logging.NewTestLogger(t)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Truncated, test.ShouldBeFalse)
	test.That(t, len(result.ShockLengths), test.ShouldEqual, 31)
	test.That(t, result.ShockLengths[0], test.ShouldAlmostEqual, chain.ReferenceShockLength()-1.5)
	test.That(t, result.LastFeasible, test.ShouldAlmostEqual, chain.ReferenceShockLength()+1.5)

	for i := 1; i < len(result.ShockLengths); i++ {
		test.That(t, result.ShockLengths[i], test.ShouldBeGreaterThan, result.ShockLengths[i-1])
	}

	test.That(t, len(result.WheelTravel), test.ShouldEqual, len(result.ShockLengths))
	test.That(t, len(result.Poses), test.ShouldEqual, len(result.ShockLengths))
	test.That(t, len(result.MotionRatios), test.ShouldEqual, len(result.WheelTravel)-1)
	test.That(t, len(result.WheelTravelMid), test.ShouldEqual, len(result.MotionRatios))

	// Every interval moves the wheel at this geometry, so every ratio is
	// defined and of one sign.
	test.That(t, result.Summary.Valid, test.ShouldEqual, len(result.MotionRatios))
	for _, mr := range result.MotionRatios {
		test.That(t, math.IsNaN(mr), test.ShouldBeFalse)
		test.That(t, mr*result.Summary.Mean, test.ShouldBeGreaterThan, 0)
	}

	// Regression baseline for this corner. The sign is negative: lengthening
	// the shock drops the wheel.
	test.That(t, result.Summary.Mean, test.ShouldAlmostEqual, -0.636, 1e-3)
	test.That(t, result.Summary.Min, test.ShouldAlmostEqual, -0.6752, 1e-3)
	test.That(t, result.Summary.Max, test.ShouldAlmostEqual, -0.5749, 1e-3)
}

func TestSweepTruncates(t *testing.T) {
	chain := frontCorner(t)
	ref := chain.ReferenceShockLength()
	r := Range{Min: ref, Max: ref + 5, Step: 0.1}

	logger, observed := logging.NewObservedTestLogger(t)
	result, err := Sweep(context.Background(), chain, r, Options{Logger: logger})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Truncated, test.ShouldBeTrue)
	test.That(t, result.LastFeasible, test.ShouldBeLessThan, ref+5)
	test.That(t, len(result.ShockLengths), test.ShouldBeGreaterThan, 0)
	test.That(t, len(result.MotionRatios), test.ShouldEqual, len(result.WheelTravel)-1)
	test.That(t, observed.FilterMessageSnippet("sweep truncated").Len(), test.ShouldEqual, 1)
}

func TestSweepNoFeasibleSteps(t *testing.T) {
	chain := frontCorner(t)
	ref := chain.ReferenceShockLength()
	r := Range{Min: ref + 6, Max: ref + 7, Step: 0.5}

	result, err := Sweep(context.Background(), chain, r, Options{Logger: logging.NewTestLogger(t)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Truncated, test.ShouldBeTrue)
	test.That(t, result.ShockLengths, test.ShouldBeEmpty)
	test.That(t, math.IsNaN(result.LastFeasible), test.ShouldBeTrue)
}

func TestSweepFailPolicy(t *testing.T) {
	chain := frontCorner(t)
	ref := chain.ReferenceShockLength()
	r := Range{Min: ref, Max: ref + 5, Step: 0.1}

	_, err := Sweep(context.Background(), chain, r, Options{
		Policy: FailOnInfeasible,
		Logger: logging.NewTestLogger(t),
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSweepCancelled(t *testing.T) {
	chain := frontCorner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, chain, TravelRange(chain, 1, 1, 0.1), Options{Logger: logging.NewTestLogger(t)})
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestSweepReseedFromReference(t *testing.T) {
	chain := frontCorner(t)
	r := TravelRange(chain, 1, 1, 0.25)

	sequential, err := Sweep(context.Background(), chain, r, Options{Logger: logging.NewTestLogger(t)})
	test.That(t, err, test.ShouldBeNil)
	independent, err := Sweep(context.Background(), chain, r, Options{
		Logger:              logging.NewTestLogger(t),
		ReseedFromReference: true,
	})
	test.That(t, err, test.ShouldBeNil)

	// The closed form ignores seeds, so both seeding strategies agree exactly.
	test.That(t, len(independent.MotionRatios), test.ShouldEqual, len(sequential.MotionRatios))
	for i := range sequential.MotionRatios {
		test.That(t, independent.MotionRatios[i], test.ShouldAlmostEqual, sequential.MotionRatios[i], 1e-12)
	}
}

func TestSweepUnitInvariance(t *testing.T) {
	logger := logging.NewTestLogger(t)
	inches, err := kinematics.NewPushrodGeometry(geometry.SamplePushrod(), logger)
	test.That(t, err, test.ShouldBeNil)
	scaledSet, err := geometry.SamplePushrod().Scaled(geometry.MillimetersPerInch, geometry.Millimeters)
	test.That(t, err, test.ShouldBeNil)
	millimeters, err := kinematics.NewPushrodGeometry(scaledSet, logger)
	test.That(t, err, test.ShouldBeNil)

	const scale = geometry.MillimetersPerInch
	inResult, err := Sweep(context.Background(), inches, TravelRange(inches, 1, 1, 0.25),
		Options{Logger: logger})
	test.That(t, err, test.ShouldBeNil)
	mmResult, err := Sweep(context.Background(), millimeters, TravelRange(millimeters, scale, scale, 0.25*scale),
		Options{Logger: logger})
	test.That(t, err, test.ShouldBeNil)

	// Motion ratio is dimensionless: the same corner in millimeters sweeps to
	// the same curve.
	test.That(t, len(mmResult.MotionRatios), test.ShouldEqual, len(inResult.MotionRatios))
	for i := range inResult.MotionRatios {
		test.That(t, mmResult.MotionRatios[i], test.ShouldAlmostEqual, inResult.MotionRatios[i], 1e-6)
	}
	for i := range inResult.WheelTravel {
		test.That(t, mmResult.WheelTravel[i], test.ShouldAlmostEqual, inResult.WheelTravel[i]*scale, 1e-6)
	}
}

func TestDeriveMotionRatioSingular(t *testing.T) {
	result := &Result{
		ShockTravel: []float64{0, 0.1, 0.2, 0.3},
		WheelTravel: []float64{0, 0.05, 0.05, 0.15},
	}
	result.deriveMotionRatio(1e-9)

	test.That(t, len(result.MotionRatios), test.ShouldEqual, 3)
	test.That(t, result.MotionRatios[0], test.ShouldAlmostEqual, 2.0)
	test.That(t, math.IsNaN(result.MotionRatios[1]), test.ShouldBeTrue)
	test.That(t, result.MotionRatios[2], test.ShouldAlmostEqual, 1.0)
	test.That(t, result.Summary.Valid, test.ShouldEqual, 2)
	test.That(t, result.Summary.Mean, test.ShouldAlmostEqual, 1.5)
	test.That(t, result.Summary.Min, test.ShouldAlmostEqual, 1.0)
	test.That(t, result.Summary.Max, test.ShouldAlmostEqual, 2.0)
}

func TestDeriveMotionRatioTooShort(t *testing.T) {
	result := &Result{ShockTravel: []float64{0}, WheelTravel: []float64{0}}
	result.deriveMotionRatio(1e-9)
	test.That(t, result.MotionRatios, test.ShouldBeEmpty)
	test.That(t, math.IsNaN(result.Summary.Mean), test.ShouldBeTrue)
	test.That(t, result.Summary.Valid, test.ShouldEqual, 0)
}
