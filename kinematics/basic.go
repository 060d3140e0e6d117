package kinematics

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
	"github.com/CharlesShamburger/FSAE-VD/logging"
)

// BasicPoints are the planar pivots of a basic (direct-acting) corner. The
// shock runs from a chassis mount (the PushRodIN column) straight down to an
// attachment on the lower arm (the PushRodOUT column).
type BasicPoints struct {
	UCAIn       geometry.Point
	LCAIn       geometry.Point
	ShockTop    geometry.Point
	UCAOut      geometry.Point
	LCAOut      geometry.Point
	ShockBottom geometry.Point
	WheelCenter geometry.Point
}

// BasicGeometry is the immutable reference geometry of a basic corner. With
// no rocker, the shock and pushrod loops collapse into a single loop that
// rotates the lower arm directly; the control-arm/upright loop then completes
// the pose.
type BasicGeometry struct {
	name   string
	corner cornerGeometry

	shock        geometry.Link // shock bottom -> shock top; the driving link
	lcaShockArm  geometry.Link // LCA_IN -> shock bottom, rigid with the arm
	chassisShock geometry.Link // shock top -> LCA_IN closure link

	// armOffset carries the lower arm's angle as a rigid offset from the
	// shock attachment arm.
	armOffset float64

	shockBranch Branch

	ref    Pose
	solver Solver
	logger logging.Logger
}

// NewBasicGeometry derives a basic corner's reference geometry from named 3D
// mounts.
func NewBasicGeometry(ms *geometry.MountSet, logger logging.Logger, opts ...Option) (*BasicGeometry, error) {
	if err := ms.ValidateNames(geometry.BasicMountNames); err != nil {
		return nil, err
	}
	if err := ms.CheckUnitConsistency(); err != nil {
		return nil, err
	}

	var pts BasicPoints
	var err error
	if pts.UCAIn, err = ms.EffectivePivot(geometry.UCAFrontIn, geometry.UCARearIn); err != nil {
		return nil, err
	}
	if pts.LCAIn, err = ms.EffectivePivot(geometry.LCAFrontIn, geometry.LCARearIn); err != nil {
		return nil, err
	}
	for name, dst := range map[string]*geometry.Point{
		geometry.PushRodIn:   &pts.ShockTop,
		geometry.UCAOut:      &pts.UCAOut,
		geometry.LCAOut:      &pts.LCAOut,
		geometry.PushRodOut:  &pts.ShockBottom,
		geometry.WheelCenter: &pts.WheelCenter,
	} {
		if *dst, err = ms.Planar(name); err != nil {
			return nil, err
		}
	}
	return NewBasicGeometryFromPoints(ms.Name(), pts, logger, opts...)
}

// NewBasicGeometryFromPoints derives the reference geometry directly from
// planar pivots.
func NewBasicGeometryFromPoints(
	name string,
	pts BasicPoints,
	logger logging.Logger,
	opts ...Option,
) (*BasicGeometry, error) {
	options := applyOptions(opts)
	corner, err := newCornerGeometry(pts.UCAIn, pts.UCAOut, pts.LCAIn, pts.LCAOut, pts.WheelCenter)
	if err != nil {
		return nil, err
	}
	g := &BasicGeometry{
		name:   name,
		corner: corner,
		solver: options.solver,
		logger: logger,
	}

	if g.shock, err = geometry.LinkBetween(pts.ShockBottom, pts.ShockTop); err != nil {
		return nil, errors.Wrap(err, "shock")
	}
	if g.lcaShockArm, err = geometry.LinkBetween(pts.LCAIn, pts.ShockBottom); err != nil {
		return nil, errors.Wrap(err, "shock attachment arm")
	}
	if g.chassisShock, err = geometry.LinkBetween(pts.ShockTop, pts.LCAIn); err != nil {
		return nil, errors.Wrap(err, "shock mount to LCA pivot")
	}
	g.armOffset = g.corner.lca.Angle - g.lcaShockArm.Angle

	if g.shockBranch, err = g.shockLoop(g.shock.Length).
		CalibrateBranch(g.lcaShockArm.Angle, g.shock.Angle); err != nil {
		return nil, err
	}

	g.ref = Pose{
		ShockLength:  g.shock.Length,
		RockerAngle:  math.NaN(),
		ShockAngle:   g.shock.Angle,
		PushrodAngle: math.NaN(),
		LCAAngle:     g.corner.lca.Angle,
		UCAAngle:     g.corner.uca.Angle,
		UprightAngle: g.corner.upright.Angle,
	}
	solved, err := g.SolvePoseFrom(context.Background(), g.shock.Length, g.ref)
	if err != nil {
		return nil, errors.Wrap(err, "reference pose does not solve")
	}
	g.ref = solved

	wcTol := 1e-4 * (1 + g.corner.refWheelCenter.Norm())
	if !solved.WheelCenter.AlmostEqual(g.corner.refWheelCenter, wcTol) {
		g.logger.Warnw("solved reference wheel center deviates from geometry",
			"topology", name,
			"solved", solved.WheelCenter,
			"reference", g.corner.refWheelCenter)
	}
	return g, nil
}

// Name returns the topology instance name.
func (g *BasicGeometry) Name() string {
	return g.name
}

// ReferenceShockLength is the shock length of the static geometry.
func (g *BasicGeometry) ReferenceShockLength() float64 {
	return g.shock.Length
}

// ReferencePose is the pose solved at the reference shock length.
func (g *BasicGeometry) ReferencePose() Pose {
	return g.ref
}

// shockLoop closes LCA_IN -> shock bottom -> shock top -> LCA_IN with the
// shock at the given length.
func (g *BasicGeometry) shockLoop(shockLength float64) Loop {
	return Loop{
		Name:   "shock-arm",
		Known1: g.chassisShock,
		Free:   g.lcaShockArm.Length,
		Input:  shockLength,
		Branch: g.shockBranch,
	}
}

// SolvePose solves the pose at the given shock length, seeded from the
// reference pose.
func (g *BasicGeometry) SolvePose(ctx context.Context, shockLength float64) (Pose, error) {
	return g.SolvePoseFrom(ctx, shockLength, g.ref)
}

// SolvePoseFrom solves the collapsed shock loop and then the
// control-arm/upright loop.
func (g *BasicGeometry) SolvePoseFrom(ctx context.Context, shockLength float64, seed Pose) (Pose, error) {
	thArm, thShock, err := solveLoop(ctx, g.solver, g.logger, g.shockLoop(shockLength),
		[2]float64{seed.LCAAngle - g.armOffset, seed.ShockAngle},
		[2]float64{g.ref.LCAAngle - g.armOffset, g.ref.ShockAngle})
	if err != nil {
		return Pose{}, markDrivingInput(err, shockLength)
	}

	thLCA := thArm + g.armOffset
	thUCA, thUpright, err := solveLoop(ctx, g.solver, g.logger, g.corner.armLoop(thLCA),
		[2]float64{seed.UCAAngle, seed.UprightAngle},
		[2]float64{g.ref.UCAAngle, g.ref.UprightAngle})
	if err != nil {
		return Pose{}, markDrivingInput(err, shockLength)
	}

	ucaOut, lcaOut, wheelCenter := g.corner.resolve(thUCA, thUpright)
	return Pose{
		ShockLength:  shockLength,
		RockerAngle:  math.NaN(),
		ShockAngle:   thShock,
		PushrodAngle: math.NaN(),
		LCAAngle:     thLCA,
		UCAAngle:     thUCA,
		UprightAngle: thUpright,
		UCAOutboard:  ucaOut,
		LCAOutboard:  lcaOut,
		WheelCenter:  wheelCenter,
	}, nil
}

var _ Chain = (*BasicGeometry)(nil)
