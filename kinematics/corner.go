package kinematics

import (
	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
)

// cornerGeometry is the control-arm/upright loop shared by both topology
// variants: chassis cross link and upper control arm fixed, lower control arm
// angle supplied by the upstream loop (or directly by the shock for the basic
// variant).
type cornerGeometry struct {
	ucaIn geometry.Point

	uca     geometry.Link // UCA_IN -> UCA_OUT
	upright geometry.Link // UCA_OUT -> LCA_OUT
	lca     geometry.Link // LCA_OUT -> LCA_IN
	chassis geometry.Link // LCA_IN -> UCA_IN

	// wcLink carries the wheel center as a rigid offset from LCA_OUT; its
	// angle rotates with the upright, offset by wcOffset.
	wcLink   geometry.Link
	wcOffset float64

	armBranch Branch

	refWheelCenter geometry.Point
}

func newCornerGeometry(ucaIn, ucaOut, lcaIn, lcaOut, wheelCenter geometry.Point) (cornerGeometry, error) {
	corner := cornerGeometry{ucaIn: ucaIn, refWheelCenter: wheelCenter}

	var err error
	if corner.uca, err = geometry.LinkBetween(ucaIn, ucaOut); err != nil {
		return cornerGeometry{}, errors.Wrap(err, "upper control arm")
	}
	if corner.upright, err = geometry.LinkBetween(ucaOut, lcaOut); err != nil {
		return cornerGeometry{}, errors.Wrap(err, "upright")
	}
	if corner.lca, err = geometry.LinkBetween(lcaOut, lcaIn); err != nil {
		return cornerGeometry{}, errors.Wrap(err, "lower control arm")
	}
	if corner.chassis, err = geometry.LinkBetween(lcaIn, ucaIn); err != nil {
		return cornerGeometry{}, errors.Wrap(err, "chassis cross link")
	}
	if corner.wcLink, err = geometry.LinkBetween(lcaOut, wheelCenter); err != nil {
		return cornerGeometry{}, errors.Wrap(err, "wheel center offset")
	}
	corner.wcOffset = corner.wcLink.Angle - corner.upright.Angle

	branch, err := corner.armLoop(corner.lca.Angle).CalibrateBranch(corner.uca.Angle, corner.upright.Angle)
	if err != nil {
		return cornerGeometry{}, err
	}
	corner.armBranch = branch
	return corner, nil
}

// armLoop closes UCA_IN -> UCA_OUT -> LCA_OUT -> LCA_IN -> UCA_IN with the
// lower arm at the given angle.
func (c *cornerGeometry) armLoop(thLCA float64) Loop {
	return Loop{
		Name:   "control-arm",
		Known1: c.chassis,
		Known2: geometry.Link{Length: c.lca.Length, Angle: thLCA},
		Free:   c.uca.Length,
		Input:  c.upright.Length,
		Branch: c.armBranch,
	}
}

// resolve reconstructs the outboard pivots and wheel center from the solved
// upper-arm and upright angles.
func (c *cornerGeometry) resolve(thUCA, thUpright float64) (ucaOut, lcaOut, wheelCenter geometry.Point) {
	ucaOut = c.uca.EndAt(c.ucaIn, thUCA)
	lcaOut = c.upright.EndAt(ucaOut, thUpright)
	wheelCenter = c.wcLink.EndAt(lcaOut, thUpright+c.wcOffset)
	return ucaOut, lcaOut, wheelCenter
}
