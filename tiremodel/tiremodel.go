// Package tiremodel fits tire test data to the four-parameter Pacejka
// "magic formula" and evaluates the fitted force surface. Like statics and
// rollcenter it is a collaborator of the suspension analyses rather than a
// consumer of kinematic results: fitted peak forces feed load cases, but the
// fit itself sees only tire test channels.
package tiremodel

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// fitMaxEvaluations bounds the curve fit's objective evaluations.
const fitMaxEvaluations = 100000

// Coefficients are the four magic-formula parameters. The peak factor D
// scales with normal load as (D1 + D2/1000*load)*load; B and C shape the
// sin(C*atan(B*slip)) curve. (B, C) is only identified up to a joint sign
// flip, so compare fits by their predictions, not their raw parameters.
type Coefficients struct {
	D1 float64
	D2 float64
	B  float64
	C  float64
}

// DefaultInitialGuess is a fit starting point in the neighborhood of a
// typical FSAE slick's lateral-force coefficients.
func DefaultInitialGuess() Coefficients {
	return Coefficients{D1: 0.0817, D2: -0.5734, B: -0.5681, C: -0.1447}
}

// Force evaluates the magic formula at one slip angle in degrees (or slip
// ratio, for a longitudinal fit) and one normal load in newtons, negative in
// compression.
func (c Coefficients) Force(slip, load float64) float64 {
	d := (c.D1 + c.D2/1000*load) * load
	return d * math.Sin(c.C*math.Atan(c.B*slip))
}

// FitResult is a converged curve fit: the coefficients plus the per-sample
// fit quality against the input data.
type FitResult struct {
	Coefficients Coefficients
	// ResNorm is the sum of squared residuals.
	ResNorm   float64
	Residuals []float64
	Predicted []float64
}

// Fit least-squares fits the magic formula to tire test samples. The slices
// are parallel: slip angle (degrees), normal load (N), measured force (N).
// A longitudinal fit is the same call with slip ratios and longitudinal
// forces. The initial guess matters: the objective is non-convex, so start
// from DefaultInitialGuess or a previous day's fit.
func Fit(slip, load, force []float64, initial Coefficients) (*FitResult, error) {
	if len(slip) != len(load) || len(slip) != len(force) {
		return nil, errors.Errorf(
			"tire data slices disagree in length: %d slip, %d load, %d force",
			len(slip), len(load), len(force))
	}
	if len(slip) < 4 {
		return nil, errors.Errorf("need at least 4 samples to fit 4 coefficients, got %d", len(slip))
	}

	sse := func(x []float64) float64 {
		c := Coefficients{D1: x[0], D2: x[1], B: x[2], C: x[3]}
		var sum float64
		for i := range slip {
			r := force[i] - c.Force(slip[i], load[i])
			sum += r * r
		}
		return sum
	}

	problem := optimize.Problem{Func: sse}
	settings := &optimize.Settings{FuncEvaluations: fitMaxEvaluations}
	x0 := []float64{initial.D1, initial.D2, initial.B, initial.C}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, errors.Wrap(err, "tire model fit failed")
	}
	if err := result.Status.Err(); err != nil {
		return nil, errors.Wrap(err, "tire model fit failed")
	}

	fitted := Coefficients{D1: result.X[0], D2: result.X[1], B: result.X[2], C: result.X[3]}
	out := &FitResult{
		Coefficients: fitted,
		ResNorm:      result.F,
		Residuals:    make([]float64, len(slip)),
		Predicted:    make([]float64, len(slip)),
	}
	for i := range slip {
		out.Predicted[i] = fitted.Force(slip[i], load[i])
		out.Residuals[i] = force[i] - out.Predicted[i]
	}
	return out, nil
}

// Surface is a fitted force grid for visualization consumers.
type Surface struct {
	Slip []float64
	Load []float64
	// Force[i][j] is the force at Load[i] and Slip[j].
	Force [][]float64
}

// Surface samples the fitted formula over a slip/load grid with n points per
// axis.
func (c Coefficients) Surface(slipMin, slipMax, loadMin, loadMax float64, n int) (*Surface, error) {
	if n < 2 {
		return nil, errors.Errorf("surface needs at least 2 points per axis, got %d", n)
	}
	s := &Surface{
		Slip:  floats.Span(make([]float64, n), slipMin, slipMax),
		Load:  floats.Span(make([]float64, n), loadMin, loadMax),
		Force: make([][]float64, n),
	}
	for i, load := range s.Load {
		row := make([]float64, n)
		for j, slip := range s.Slip {
			row[j] = c.Force(slip, load)
		}
		s.Force[i] = row
	}
	return s, nil
}

// Peak is the largest-magnitude force found on a slip sweep at one load,
// with its sign preserved.
type Peak struct {
	Force float64
	Slip  float64
	Load  float64
}

// PeakForce scans n slip values in [slipMin, slipMax] at the given load and
// returns the largest-magnitude force and the slip angle producing it.
func (c Coefficients) PeakForce(load, slipMin, slipMax float64, n int) (Peak, error) {
	if n < 2 {
		return Peak{}, errors.Errorf("peak search needs at least 2 points, got %d", n)
	}
	slips := floats.Span(make([]float64, n), slipMin, slipMax)
	best := Peak{Force: c.Force(slips[0], load), Slip: slips[0], Load: load}
	for _, sa := range slips[1:] {
		f := c.Force(sa, load)
		if math.Abs(f) > math.Abs(best.Force) {
			best.Force = f
			best.Slip = sa
		}
	}
	return best, nil
}
