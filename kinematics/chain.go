package kinematics

import (
	"context"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
)

// Pose is the solved state of one topology at one shock length: the solved
// link angles plus the reconstructed outboard pivots and wheel center. Poses
// are immutable and hold no reference to the geometry that produced them.
// RockerAngle and PushrodAngle are NaN for the basic topology, which has no
// rocker.
type Pose struct {
	ShockLength  float64
	RockerAngle  float64
	ShockAngle   float64
	PushrodAngle float64
	LCAAngle     float64
	UCAAngle     float64
	UprightAngle float64
	UCAOutboard  geometry.Point
	LCAOutboard  geometry.Point
	WheelCenter  geometry.Point
}

// Chain solves a suspension topology's full pose from a driving shock length,
// propagating each loop's solved angle into the next. A failure in any loop
// aborts the chain for that input; no stale angles are carried downstream.
type Chain interface {
	// Name identifies the topology instance in logs and errors.
	Name() string

	// ReferenceShockLength is the shock length of the static geometry.
	ReferenceShockLength() float64

	// ReferencePose is the pose solved at the reference shock length.
	ReferencePose() Pose

	// SolvePose solves the pose at the given shock length, seeding any
	// iterative solver from the reference pose.
	SolvePose(ctx context.Context, shockLength float64) (Pose, error)

	// SolvePoseFrom is SolvePose seeded from a previously solved pose,
	// normally the adjacent sweep step. Seeding from the previous step makes
	// iterative solves robust but strictly orders adjacent steps; callers
	// wanting to parallelize a sweep must seed every step from the reference
	// pose instead.
	SolvePoseFrom(ctx context.Context, shockLength float64, seed Pose) (Pose, error)
}

type chainOptions struct {
	solver Solver
}

// Option configures a chain at construction.
type Option func(*chainOptions)

// WithSolver selects the loop solver implementation. The default is the
// closed form; NewNloptSolver gives the iterative fallback.
func WithSolver(solver Solver) Option {
	return func(o *chainOptions) {
		o.solver = solver
	}
}

func applyOptions(opts []Option) chainOptions {
	options := chainOptions{solver: NewClosedFormSolver()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
