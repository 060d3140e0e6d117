package kinematics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
	"github.com/CharlesShamburger/FSAE-VD/logging"
)

// PushrodPoints are the planar pivots of a pushrod corner after the dual
// chassis mounts have been collapsed to effective pivots.
type PushrodPoints struct {
	UCAIn       geometry.Point
	LCAIn       geometry.Point
	PushrodIn   geometry.Point
	UCAOut      geometry.Point
	LCAOut      geometry.Point
	PushrodOut  geometry.Point
	CamHinge    geometry.Point
	ShockOut    geometry.Point
	ShockIn     geometry.Point
	WheelCenter geometry.Point
}

// PushrodGeometry is the immutable reference geometry of a pushrod-actuated
// corner: pushrod up to a bell-crank (rocker) that compresses the shock,
// decoupled from the wheel by the rocker loop. Its pose is solved from three
// sequential loops: shock/rocker, pushrod/rocker, control-arm/upright.
type PushrodGeometry struct {
	name   string
	corner cornerGeometry

	shock          geometry.Link // Shock_IN -> Shock_OUT; the driving link
	rockerShockArm geometry.Link // Shock_OUT -> Cam_Hinge
	hingeToLCAIn   geometry.Link // Cam_Hinge -> LCA_IN closure link
	lcaInToShockIn geometry.Link // LCA_IN -> Shock_IN closure link
	lcaInToHinge   geometry.Link // LCA_IN -> Cam_Hinge closure link
	rockerPushArm  geometry.Link // Cam_Hinge -> PushRodIN
	pushrod        geometry.Link // PushRodIN -> PushRodOUT
	pushToLCAIn    geometry.Link // PushRodOUT -> LCA_IN

	// camOffset is the fixed angle between the rocker's two arms: the rocker
	// is one rigid body, so the pushrod arm's angle is the solved shock arm
	// angle plus this constant, never independently solved. Stored signed to
	// avoid the mirror-image ambiguity of an arccos form.
	camOffset float64
	// lcaOffset carries the lower arm's angle as a rigid offset from the
	// pushrod-attachment closure link, since PushRodOUT rides on the arm.
	lcaOffset float64

	shockBranch Branch
	pushBranch  Branch

	ref    Pose
	solver Solver
	logger logging.Logger
}

// NewPushrodGeometry derives a pushrod corner's reference geometry from named
// 3D mounts, collapsing the dual UCA/LCA chassis bushings to effective
// pivots.
func NewPushrodGeometry(ms *geometry.MountSet, logger logging.Logger, opts ...Option) (*PushrodGeometry, error) {
	if err := ms.ValidateNames(geometry.PushrodMountNames); err != nil {
		return nil, err
	}
	if err := ms.CheckUnitConsistency(); err != nil {
		return nil, err
	}

	var pts PushrodPoints
	var err error
	if pts.UCAIn, err = ms.EffectivePivot(geometry.UCAFrontIn, geometry.UCARearIn); err != nil {
		return nil, err
	}
	if pts.LCAIn, err = ms.EffectivePivot(geometry.LCAFrontIn, geometry.LCARearIn); err != nil {
		return nil, err
	}
	for name, dst := range map[string]*geometry.Point{
		geometry.PushRodIn:   &pts.PushrodIn,
		geometry.UCAOut:      &pts.UCAOut,
		geometry.LCAOut:      &pts.LCAOut,
		geometry.PushRodOut:  &pts.PushrodOut,
		geometry.CamHinge:    &pts.CamHinge,
		geometry.ShockOut:    &pts.ShockOut,
		geometry.ShockIn:     &pts.ShockIn,
		geometry.WheelCenter: &pts.WheelCenter,
	} {
		if *dst, err = ms.Planar(name); err != nil {
			return nil, err
		}
	}
	return NewPushrodGeometryFromPoints(ms.Name(), pts, logger, opts...)
}

// NewPushrodGeometryFromPoints derives the reference geometry directly from
// planar pivots. Every link length and angle is computed here, the branch of
// each loop is calibrated against the reference pose, and the reference pose
// itself is solved and pinned.
func NewPushrodGeometryFromPoints(
	name string,
	pts PushrodPoints,
	logger logging.Logger,
	opts ...Option,
) (*PushrodGeometry, error) {
	options := applyOptions(opts)
	corner, err := newCornerGeometry(pts.UCAIn, pts.UCAOut, pts.LCAIn, pts.LCAOut, pts.WheelCenter)
	if err != nil {
		return nil, err
	}
	g := &PushrodGeometry{
		name:   name,
		corner: corner,
		solver: options.solver,
		logger: logger,
	}

	for _, link := range []struct {
		dst    *geometry.Link
		p1, p2 geometry.Point
		what   string
	}{
		{&g.shock, pts.ShockIn, pts.ShockOut, "shock"},
		{&g.rockerShockArm, pts.ShockOut, pts.CamHinge, "rocker shock arm"},
		{&g.hingeToLCAIn, pts.CamHinge, pts.LCAIn, "hinge to LCA pivot"},
		{&g.lcaInToShockIn, pts.LCAIn, pts.ShockIn, "LCA pivot to shock mount"},
		{&g.lcaInToHinge, pts.LCAIn, pts.CamHinge, "LCA pivot to hinge"},
		{&g.rockerPushArm, pts.CamHinge, pts.PushrodIn, "rocker pushrod arm"},
		{&g.pushrod, pts.PushrodIn, pts.PushrodOut, "pushrod"},
		{&g.pushToLCAIn, pts.PushrodOut, pts.LCAIn, "pushrod attachment to LCA pivot"},
	} {
		if *link.dst, err = geometry.LinkBetween(link.p1, link.p2); err != nil {
			return nil, errors.Wrap(err, link.what)
		}
	}

	if g.shockBranch, err = g.shockLoop(g.shock.Length).
		CalibrateBranch(g.rockerShockArm.Angle, g.shock.Angle); err != nil {
		return nil, err
	}
	shockLoop := g.shockLoop(g.shock.Length)
	shockLoop.Branch = g.shockBranch
	thRockerRef, _, err := shockLoop.SolveClosedForm()
	if err != nil {
		return nil, errors.Wrap(err, "reference shock loop")
	}
	g.camOffset = g.rockerPushArm.Angle - thRockerRef

	if g.pushBranch, err = g.pushLoop(g.rockerPushArm.Angle).
		CalibrateBranch(g.pushrod.Angle, g.pushToLCAIn.Angle); err != nil {
		return nil, err
	}
	g.lcaOffset = g.corner.lca.Angle - g.pushToLCAIn.Angle

	g.ref = Pose{
		ShockLength:  g.shock.Length,
		RockerAngle:  g.rockerShockArm.Angle,
		ShockAngle:   g.shock.Angle,
		PushrodAngle: g.pushrod.Angle,
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
func (g *PushrodGeometry) Name() string {
	return g.name
}

// ReferenceShockLength is the shock length of the static geometry.
func (g *PushrodGeometry) ReferenceShockLength() float64 {
	return g.shock.Length
}

// ReferencePose is the pose solved at the reference shock length.
func (g *PushrodGeometry) ReferencePose() Pose {
	return g.ref
}

// shockLoop closes Shock_IN -> Shock_OUT -> Cam_Hinge -> LCA_IN -> Shock_IN
// with the shock at the given length. The two closure links are fixed since
// their mounts never move.
func (g *PushrodGeometry) shockLoop(shockLength float64) Loop {
	return Loop{
		Name:   "shock-rocker",
		Known1: g.hingeToLCAIn,
		Known2: g.lcaInToShockIn,
		Free:   g.rockerShockArm.Length,
		Input:  shockLength,
		Branch: g.shockBranch,
	}
}

// pushLoop closes LCA_IN -> Cam_Hinge -> PushRodIN -> PushRodOUT -> LCA_IN
// with the rocker's pushrod arm at the given angle.
func (g *PushrodGeometry) pushLoop(thCam2 float64) Loop {
	return Loop{
		Name:   "pushrod-rocker",
		Known1: g.lcaInToHinge,
		Known2: geometry.Link{Length: g.rockerPushArm.Length, Angle: thCam2},
		Free:   g.pushrod.Length,
		Input:  g.pushToLCAIn.Length,
		Branch: g.pushBranch,
	}
}

// SolvePose solves the pose at the given shock length, seeded from the
// reference pose.
func (g *PushrodGeometry) SolvePose(ctx context.Context, shockLength float64) (Pose, error) {
	return g.SolvePoseFrom(ctx, shockLength, g.ref)
}

// SolvePoseFrom solves the three loops in sequence, propagating each solved
// angle into the next loop.
func (g *PushrodGeometry) SolvePoseFrom(ctx context.Context, shockLength float64, seed Pose) (Pose, error) {
	thRocker, thShock, err := solveLoop(ctx, g.solver, g.logger, g.shockLoop(shockLength),
		[2]float64{seed.RockerAngle, seed.ShockAngle},
		[2]float64{g.ref.RockerAngle, g.ref.ShockAngle})
	if err != nil {
		return Pose{}, markDrivingInput(err, shockLength)
	}

	thCam2 := thRocker + g.camOffset
	thPushrod, thPushToLCA, err := solveLoop(ctx, g.solver, g.logger, g.pushLoop(thCam2),
		[2]float64{seed.PushrodAngle, seed.LCAAngle - g.lcaOffset},
		[2]float64{g.ref.PushrodAngle, g.ref.LCAAngle - g.lcaOffset})
	if err != nil {
		return Pose{}, markDrivingInput(err, shockLength)
	}

	thLCA := thPushToLCA + g.lcaOffset
	thUCA, thUpright, err := solveLoop(ctx, g.solver, g.logger, g.corner.armLoop(thLCA),
		[2]float64{seed.UCAAngle, seed.UprightAngle},
		[2]float64{g.ref.UCAAngle, g.ref.UprightAngle})
	if err != nil {
		return Pose{}, markDrivingInput(err, shockLength)
	}

	ucaOut, lcaOut, wheelCenter := g.corner.resolve(thUCA, thUpright)
	return Pose{
		ShockLength:  shockLength,
		RockerAngle:  thRocker,
		ShockAngle:   thShock,
		PushrodAngle: thPushrod,
		LCAAngle:     thLCA,
		UCAAngle:     thUCA,
		UprightAngle: thUpright,
		UCAOutboard:  ucaOut,
		LCAOutboard:  lcaOut,
		WheelCenter:  wheelCenter,
	}, nil
}

var _ Chain = (*PushrodGeometry)(nil)
