package kinematics

import (
	"fmt"

	"github.com/pkg/errors"
)

// InfeasibleError indicates the closed-form closure discriminant went
// negative: the physical linkage cannot reach the requested pose. It names
// the loop and the driving-input value that triggered it.
type InfeasibleError struct {
	Loop  string
	Input float64
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("loop %q cannot close at driving input %g: no real solution", e.Loop, e.Input)
}

// ConvergenceError indicates the iterative solver did not converge within its
// iteration cap. It is distinct from InfeasibleError: a convergence failure
// may be a bad initial guess rather than true infeasibility.
type ConvergenceError struct {
	Loop     string
	Input    float64
	Residual float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("loop %q did not converge at driving input %g (residual %g)", e.Loop, e.Input, e.Residual)
}

// markDrivingInput stamps the chain's driving shock length into a loop
// error. Downstream loops are driven by a propagated angle, so their own
// Input field holds a fixed link length; the caller-facing error must name
// the shock length that triggered the failure instead.
func markDrivingInput(err error, shockLength float64) error {
	var infeasible *InfeasibleError
	if errors.As(err, &infeasible) {
		infeasible.Input = shockLength
	}
	var convergence *ConvergenceError
	if errors.As(err, &convergence) {
		convergence.Input = shockLength
	}
	return err
}

// IsInfeasible returns whether err is an InfeasibleError.
func IsInfeasible(err error) bool {
	var infeasible *InfeasibleError
	return errors.As(err, &infeasible)
}

// IsConvergenceFailure returns whether err is a ConvergenceError.
func IsConvergenceFailure(err error) bool {
	var convergence *ConvergenceError
	return errors.As(err, &convergence)
}
