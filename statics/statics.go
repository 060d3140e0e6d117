// Package statics computes static axial loads in the suspension members of
// one corner from an external load at the tire. It consumes the same 3D
// mount coordinates as the kinematic model but none of its results: the
// force balance is a linear system over the reference geometry.
package statics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
)

// Corner is the 3D geometry the force balance needs. The tie rod is not part
// of the kinematic mount sets; absent mounts default to fixed offsets from
// the wheel center matching the sample car.
type Corner struct {
	UCAFront    r3.Vector
	UCARear     r3.Vector
	LCAFront    r3.Vector
	LCARear     r3.Vector
	PushrodIn   r3.Vector
	UCAOut      r3.Vector
	LCAOut      r3.Vector
	PushrodOut  r3.Vector
	WheelCenter r3.Vector
	TieIn       r3.Vector
	TieOut      r3.Vector
}

// CornerFromMounts builds a Corner from a validated mount set, deriving the
// tie rod ends as offsets from the wheel center.
func CornerFromMounts(ms *geometry.MountSet) (Corner, error) {
	var c Corner
	for name, dst := range map[string]*r3.Vector{
		geometry.UCAFrontIn:  &c.UCAFront,
		geometry.UCARearIn:   &c.UCARear,
		geometry.LCAFrontIn:  &c.LCAFront,
		geometry.LCARearIn:   &c.LCARear,
		geometry.PushRodIn:   &c.PushrodIn,
		geometry.UCAOut:      &c.UCAOut,
		geometry.LCAOut:      &c.LCAOut,
		geometry.PushRodOut:  &c.PushrodOut,
		geometry.WheelCenter: &c.WheelCenter,
	} {
		v, err := ms.Mount(name)
		if err != nil {
			return Corner{}, err
		}
		*dst = v
	}
	c.TieIn = c.WheelCenter.Add(r3.Vector{X: 4, Y: -14, Z: -2.4})
	c.TieOut = c.WheelCenter.Add(r3.Vector{X: 4, Y: -3.625, Z: -0.625})
	return c, nil
}

// MemberForces are the axial loads in each member, positive in tension.
type MemberForces struct {
	TieRod   float64
	LCAFront float64
	LCARear  float64
	UCAFront float64
	UCARear  float64
	Pushrod  float64
}

// SolveMemberForces balances the external force applied at the contact patch
// (with the given moment arm to the wheel center) against the six members'
// axial loads: three force equations and three moment equations about the
// wheel center. A singular matrix means the member directions cannot react
// the load.
func SolveMemberForces(c Corner, external, momentArm r3.Vector) (MemberForces, error) {
	members := []struct {
		dir    r3.Vector
		pickup r3.Vector
	}{
		{c.TieOut.Sub(c.TieIn), c.TieOut},
		{c.LCAOut.Sub(c.LCAFront), c.LCAOut},
		{c.LCAOut.Sub(c.LCARear), c.LCAOut},
		{c.UCAOut.Sub(c.UCAFront), c.UCAOut},
		{c.UCAOut.Sub(c.UCARear), c.UCAOut},
		{c.PushrodOut.Sub(c.PushrodIn), c.PushrodOut},
	}

	a := mat.NewDense(6, 6, nil)
	for col, m := range members {
		norm := m.dir.Norm()
		if norm == 0 {
			return MemberForces{}, errors.Errorf("member %d has coincident end points", col)
		}
		unit := m.dir.Mul(1 / norm)
		arm := m.pickup.Sub(c.WheelCenter)
		moment := arm.Cross(unit)
		a.Set(0, col, unit.X)
		a.Set(1, col, unit.Y)
		a.Set(2, col, unit.Z)
		a.Set(3, col, moment.X)
		a.Set(4, col, moment.Y)
		a.Set(5, col, moment.Z)
	}

	externalMoment := momentArm.Cross(external)
	b := mat.NewVecDense(6, []float64{
		external.X, external.Y, external.Z,
		externalMoment.X, externalMoment.Y, externalMoment.Z,
	})

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return MemberForces{}, errors.Wrap(err, "force balance is singular")
	}
	return MemberForces{
		TieRod:   x.AtVec(0),
		LCAFront: x.AtVec(1),
		LCARear:  x.AtVec(2),
		UCAFront: x.AtVec(3),
		UCARear:  x.AtVec(4),
		Pushrod:  x.AtVec(5),
	}, nil
}
