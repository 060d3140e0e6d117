package kinematics

import (
	"context"
	"math"
	"sync"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/CharlesShamburger/FSAE-VD/logging"
	"github.com/CharlesShamburger/FSAE-VD/utils"
)

const (
	// defaultMaxEval bounds worst-case latency of one loop solve.
	defaultMaxEval = 100
	// nloptStopVal is the squared-residual value at which optimization stops.
	nloptStopVal = 1e-18
	// residualAccept is the largest squared closure residual, relative to the
	// loop's scale, accepted as converged.
	residualAccept = 1e-12
)

// nloptSolver minimizes the squared closure residual over the two unknown
// angles. It is the general fallback for loop shapes that do not fit the
// closed form's link-role template; it needs a seed and can fail to converge.
type nloptSolver struct {
	maxEval int
	logger  logging.Logger
}

// NewNloptSolver returns an iterative loop solver backed by SLSQP gradient
// descent.
func NewNloptSolver(logger logging.Logger) Solver {
	return &nloptSolver{maxEval: defaultMaxEval, logger: logger}
}

type optimizeReturn struct {
	solution []float64
	score    float64
	err      error
}

func (s *nloptSolver) SolveLoop(ctx context.Context, loop Loop, seed [2]float64) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, 2)
	if err != nil {
		return 0, 0, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	rkx, rky := loop.resultant()

	// x is (phiFree, phiInput). The gradient of the squared residual is
	// analytic, so no finite differencing is needed.
	minFunc := func(x, gradient []float64) float64 {
		ex := rkx + loop.Free*math.Cos(x[0]) + loop.Input*math.Cos(x[1])
		ey := rky + loop.Free*math.Sin(x[0]) + loop.Input*math.Sin(x[1])
		if len(gradient) > 0 {
			gradient[0] = 2 * loop.Free * (ey*math.Cos(x[0]) - ex*math.Sin(x[0]))
			gradient[1] = 2 * loop.Input * (ey*math.Cos(x[1]) - ex*math.Sin(x[1]))
		}
		return ex*ex + ey*ey
	}

	err = multierr.Combine(
		opt.SetMinObjective(minFunc),
		opt.SetLowerBounds([]float64{seed[0] - math.Pi, seed[1] - math.Pi}),
		opt.SetUpperBounds([]float64{seed[0] + math.Pi, seed[1] + math.Pi}),
		opt.SetStopVal(nloptStopVal),
		opt.SetFtolAbs(nloptStopVal),
		opt.SetXtolAbs1(1e-12),
		opt.SetMaxEval(s.maxEval),
	)
	if err != nil {
		return 0, 0, errors.Wrap(err, "nlopt setup error")
	}

	solveChan := make(chan *optimizeReturn, 1)
	var activeSolvers sync.WaitGroup
	activeSolvers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer activeSolvers.Done()
		solution, score, optErr := opt.Optimize([]float64{seed[0], seed[1]})
		solveChan <- &optimizeReturn{solution, score, optErr}
	})

	var solution []float64
	var score float64
	select {
	case <-ctx.Done():
		err = multierr.Combine(opt.ForceStop(), ctx.Err())
		activeSolvers.Wait()
		return 0, 0, err
	case result := <-solveChan:
		solution = result.solution
		score = result.score
		if result.err != nil && solution == nil {
			return 0, 0, errors.Wrapf(result.err, "nlopt failed on loop %q", loop.Name)
		}
	}

	scale := math.Max(1, rkx*rkx+rky*rky)
	if solution == nil || score > residualAccept*scale {
		return 0, 0, &ConvergenceError{Loop: loop.Name, Input: loop.Input, Residual: score}
	}
	return utils.WrapAngle(solution[0]), utils.WrapAngle(solution[1]), nil
}
