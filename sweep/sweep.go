// Package sweep drives a kinematic chain through a range of shock lengths
// and aggregates the results into a motion-ratio curve.
package sweep

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/kinematics"
	"github.com/CharlesShamburger/FSAE-VD/logging"
	"github.com/CharlesShamburger/FSAE-VD/utils"
)

const (
	// endpointSlack tolerates floating-point step accumulation when deciding
	// whether the range endpoint was reached; naive equality would drop it.
	endpointSlack = 1e-9
	// defaultSingularTol is the wheel-displacement delta below which a
	// motion-ratio interval is reported as undefined.
	defaultSingularTol = 1e-9
	// maxAngleJump flags a solved-angle discontinuity between adjacent steps.
	// A jump this large means the solution changed assembly branch.
	maxAngleJump = 0.5
)

// Range is an inclusive sweep over shock length with a positive step.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// TravelRange builds a Range centered on a chain's reference shock length,
// extending rebound units below and compression units above it.
func TravelRange(chain kinematics.Chain, rebound, compression, step float64) Range {
	ref := chain.ReferenceShockLength()
	return Range{Min: ref - rebound, Max: ref + compression, Step: step}
}

// ConfigurationError indicates an invalid sweep range or step. It is
// surfaced immediately at call time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid sweep configuration: %s", e.Reason)
}

// Policy decides what happens when a step inside the sweep is infeasible or
// fails to converge.
type Policy int

const (
	// TruncateOnInfeasible stops the sweep at the last feasible step and
	// reports the truncated range. Skipping and continuing is deliberately
	// not offered: it would produce a misleading discontinuous curve.
	TruncateOnInfeasible Policy = iota
	// FailOnInfeasible aborts the sweep with an error instead of truncating.
	FailOnInfeasible
)

// Options configure a sweep.
type Options struct {
	Policy      Policy
	SingularTol float64
	Logger      logging.Logger
	// ReseedFromReference seeds every step's iterative solve from the
	// reference pose instead of the previous step's. Less robust near
	// linkage limits, but it removes the sequential dependency between
	// adjacent steps, so independent steps may then run in parallel.
	ReseedFromReference bool
}

// Stats summarizes the defined motion-ratio intervals of a sweep.
type Stats struct {
	Mean  float64
	Min   float64
	Max   float64
	Valid int
}

// Result is one sweep's output. ShockLengths is strictly increasing and
// bounded by the requested (possibly truncated) range; MotionRatios always
// has one fewer element than WheelTravel.
type Result struct {
	Requested Range

	ShockLengths []float64
	ShockTravel  []float64
	WheelTravel  []float64
	Poses        []kinematics.Pose

	// MotionRatios holds the shock-per-wheel travel ratio at interval
	// midpoints; intervals with near-zero wheel movement are NaN.
	MotionRatios   []float64
	WheelTravelMid []float64

	Truncated bool
	// LastFeasible is the highest shock length that solved; NaN when not
	// even the first step was feasible.
	LastFeasible float64

	Summary Stats
}

// Sweep solves the chain at each shock length of the range and derives wheel
// travel and motion ratio. Infeasible or non-converging steps truncate the
// sweep under the default policy; the result is always valid, if shorter,
// because partial kinematic curves are still useful. Cancellation is checked
// between steps.
func Sweep(ctx context.Context, chain kinematics.Chain, r Range, opts Options) (*Result, error) {
	if r.Step <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("step must be positive, got %g", r.Step)}
	}
	if r.Min > r.Max {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("min %g exceeds max %g", r.Min, r.Max)}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("sweep")
	}
	singularTol := opts.SingularTol
	if singularTol <= 0 {
		singularTol = defaultSingularTol
	}

	result := &Result{Requested: r, LastFeasible: math.NaN()}
	refPose := chain.ReferencePose()
	seed := refPose

	for i := 0; ; i++ {
		shockLength := r.Min + float64(i)*r.Step
		if shockLength > r.Max+r.Step*endpointSlack {
			break
		}
		shockLength = math.Min(shockLength, r.Max)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pose, err := chain.SolvePoseFrom(ctx, shockLength, seed)
		if err != nil {
			if kinematics.IsInfeasible(err) || kinematics.IsConvergenceFailure(err) {
				if opts.Policy == FailOnInfeasible {
					return nil, errors.Wrapf(err, "sweep of %q failed", chain.Name())
				}
				logger.Warnw("sweep truncated at infeasible step",
					"topology", chain.Name(), "shockLength", shockLength, "error", err)
				result.Truncated = true
				break
			}
			return nil, err
		}
		if len(result.Poses) > 0 {
			prev := result.Poses[len(result.Poses)-1]
			if utils.AngleDiff(pose.UprightAngle, prev.UprightAngle) > maxAngleJump ||
				utils.AngleDiff(pose.LCAAngle, prev.LCAAngle) > maxAngleJump {
				if opts.Policy == FailOnInfeasible {
					return nil, errors.Errorf(
						"sweep of %q hit a solution branch discontinuity at shock length %g",
						chain.Name(), shockLength)
				}
				logger.Warnw("sweep truncated at solution branch discontinuity",
					"topology", chain.Name(), "shockLength", shockLength)
				result.Truncated = true
				break
			}
		}

		result.ShockLengths = append(result.ShockLengths, shockLength)
		result.ShockTravel = append(result.ShockTravel, shockLength-chain.ReferenceShockLength())
		result.WheelTravel = append(result.WheelTravel, pose.WheelCenter.Z-refPose.WheelCenter.Z)
		result.Poses = append(result.Poses, pose)
		result.LastFeasible = shockLength

		if !opts.ReseedFromReference {
			seed = pose
		}
	}

	result.deriveMotionRatio(singularTol)
	return result, nil
}

// deriveMotionRatio fills the finite-difference arrays and summary stats.
func (r *Result) deriveMotionRatio(singularTol float64) {
	n := len(r.WheelTravel)
	if n < 2 {
		r.MotionRatios = []float64{}
		r.WheelTravelMid = []float64{}
		r.Summary = Stats{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		return
	}

	r.MotionRatios = make([]float64, n-1)
	r.WheelTravelMid = make([]float64, n-1)
	valid := make([]float64, 0, n-1)
	for i := 0; i < n-1; i++ {
		dShock := r.ShockTravel[i+1] - r.ShockTravel[i]
		dWheel := r.WheelTravel[i+1] - r.WheelTravel[i]
		r.WheelTravelMid[i] = r.WheelTravel[i] + dWheel/2
		if math.Abs(dWheel) < singularTol {
			r.MotionRatios[i] = math.NaN()
			continue
		}
		r.MotionRatios[i] = dShock / dWheel
		valid = append(valid, r.MotionRatios[i])
	}

	r.Summary = Stats{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN(), Valid: len(valid)}
	if len(valid) == 0 {
		return
	}
	if mean, err := stats.Mean(valid); err == nil {
		r.Summary.Mean = mean
	}
	if min, err := stats.Min(valid); err == nil {
		r.Summary.Min = min
	}
	if max, err := stats.Max(valid); err == nil {
		r.Summary.Max = max
	}
}
