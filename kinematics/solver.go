package kinematics

import (
	"context"

	"github.com/CharlesShamburger/FSAE-VD/logging"
)

// Solver solves one loop's closure equations for its two unknown angles.
// Implementations are selected by configuration on a chain rather than at
// each call site.
type Solver interface {
	// SolveLoop returns the free and input link angles closing the loop. The
	// seed is an initial guess (free, input), normally the previous sweep
	// step's solution; the closed-form implementation ignores it.
	SolveLoop(ctx context.Context, loop Loop, seed [2]float64) (phiFree, phiInput float64, err error)
}

type closedForm struct{}

// NewClosedFormSolver returns the exact tangent half-angle solver. The loop's
// calibrated Branch picks the assembly mode.
func NewClosedFormSolver() Solver {
	return closedForm{}
}

func (closedForm) SolveLoop(_ context.Context, loop Loop, _ [2]float64) (float64, float64, error) {
	return loop.SolveClosedForm()
}

// solveLoop runs one loop solve, retrying once from the reference seed when
// an iterative solver fails to converge from the sweep seed.
func solveLoop(
	ctx context.Context,
	solver Solver,
	logger logging.Logger,
	loop Loop,
	seed, refSeed [2]float64,
) (float64, float64, error) {
	phiFree, phiInput, err := solver.SolveLoop(ctx, loop, seed)
	if IsConvergenceFailure(err) && seed != refSeed {
		logger.Debugw("loop solve did not converge; retrying from reference seed",
			"loop", loop.Name, "input", loop.Input)
		phiFree, phiInput, err = solver.SolveLoop(ctx, loop, refSeed)
	}
	return phiFree, phiInput, err
}
