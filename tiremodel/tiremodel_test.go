package tiremodel

import (
	"math"
	"testing"

	"go.viam.com/test"
)

// syntheticData evaluates truth over a slip/load grid, the shape of a
// cornering test day's sweep.
func syntheticData(truth Coefficients) (slip, load, force []float64) {
	for _, fz := range []float64{-1500, -1000, -500, -250} {
		for sa := -12.0; sa <= 12.0; sa += 2 {
			slip = append(slip, sa)
			load = append(load, fz)
			force = append(force, truth.Force(sa, fz))
		}
	}
	return slip, load, force
}

func TestForce(t *testing.T) {
	c := DefaultInitialGuess()

	// Zero slip produces zero force at any load; the formula is odd in slip.
	test.That(t, c.Force(0, -1000), test.ShouldAlmostEqual, 0)
	test.That(t, c.Force(8, -1000), test.ShouldAlmostEqual, -c.Force(-8, -1000), 1e-12)
	test.That(t, c.Force(8, 0), test.ShouldAlmostEqual, 0)
}

func TestFitRecoversSynthetic(t *testing.T) {
	truth := Coefficients{D1: 0.08, D2: -0.6, B: -0.55, C: -0.15}
	slip, load, force := syntheticData(truth)

	result, err := Fit(slip, load, force, DefaultInitialGuess())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.ResNorm, test.ShouldBeLessThan, 1e-2)
	for i := range force {
		test.That(t, result.Predicted[i], test.ShouldAlmostEqual, force[i], 0.5)
	}

	// Off-grid prediction, where (B, C) sign ambiguity cannot hide.
	test.That(t, result.Coefficients.Force(7.3, -800),
		test.ShouldAlmostEqual, truth.Force(7.3, -800), 1.0)
}

func TestFitValidation(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{-500}, []float64{10, 20}, DefaultInitialGuess())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "length")

	_, err = Fit([]float64{1, 2, 3}, []float64{-500, -500, -500}, []float64{10, 20, 30}, DefaultInitialGuess())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "4 samples")
}

func TestPeakForce(t *testing.T) {
	c := Coefficients{D1: 0.08, D2: -0.6, B: -0.55, C: -0.15}

	peak, err := c.PeakForce(-1000, -13, 13, 101)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, peak.Load, test.ShouldAlmostEqual, -1000)
	// These coefficients never saturate inside +-13 degrees, so the peak
	// sits at a range boundary.
	test.That(t, math.Abs(peak.Slip), test.ShouldAlmostEqual, 13)
	test.That(t, math.Abs(peak.Force), test.ShouldBeGreaterThan, math.Abs(c.Force(5, -1000)))

	_, err = c.PeakForce(-1000, -13, 13, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSurface(t *testing.T) {
	c := Coefficients{D1: 0.08, D2: -0.6, B: -0.55, C: -0.15}

	s, err := c.Surface(-13, 13, -1600, -200, 20)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(s.Slip), test.ShouldEqual, 20)
	test.That(t, len(s.Load), test.ShouldEqual, 20)
	test.That(t, len(s.Force), test.ShouldEqual, 20)
	test.That(t, s.Slip[0], test.ShouldAlmostEqual, -13)
	test.That(t, s.Slip[19], test.ShouldAlmostEqual, 13)
	test.That(t, s.Force[3][7], test.ShouldAlmostEqual, c.Force(s.Slip[7], s.Load[3]))

	_, err = c.Surface(-13, 13, -1600, -200, 1)
	test.That(t, err, test.ShouldNotBeNil)
}
