// Package rollcenter locates the front-view instant center and roll center
// of a double-wishbone corner. Both are closed-form line intersections over
// the reference geometry; the kinematic solver is not involved.
package rollcenter

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
	"github.com/CharlesShamburger/FSAE-VD/utils"
)

// parallelEps is the intersection denominator below which two projected
// control-arm lines are treated as parallel.
const parallelEps = 1e-6

// ParallelArmsError indicates the projected control arms do not intersect in
// the given view, so no instant center exists there.
type ParallelArmsError struct {
	View string
}

func (e *ParallelArmsError) Error() string {
	return fmt.Sprintf("control arms are parallel in the %s view; no instant center", e.View)
}

// Analysis holds the vehicle-level constants the roll-center construction
// needs beyond the corner geometry.
type Analysis struct {
	// TrackWidth is the distance between the left and right contact patches,
	// in the mount set's units.
	TrackWidth float64
}

// Result is a roll-center calculation for one corner.
type Result struct {
	// Height is the roll center's height above ground at the centerline.
	Height float64
	// InstantCenterFront is the front-view (Y-Z) instant center.
	InstantCenterFront r3.Vector
	// InstantCenterSide is the side-view (X-Z) instant center; nil when the
	// arms are parallel in side view.
	InstantCenterSide *r3.Vector
	// SwingArmLength is the distance from the front-view instant center to
	// the contact patch.
	SwingArmLength float64
	// RollAxisAngleDeg is the angle of the line from the contact patch to
	// the side-view instant center; zero when that center does not exist.
	RollAxisAngleDeg float64
}

// Calculate locates the instant centers and roll center for a corner. Both
// topology variants share the control-arm points this needs.
func (a Analysis) Calculate(ms *geometry.MountSet) (*Result, error) {
	if err := ms.ValidateNames([]string{
		geometry.UCAFrontIn, geometry.UCARearIn, geometry.LCAFrontIn, geometry.LCARearIn,
		geometry.UCAOut, geometry.LCAOut,
	}); err != nil {
		return nil, err
	}
	if a.TrackWidth <= 0 {
		return nil, errors.Errorf("track width must be positive, got %g", a.TrackWidth)
	}

	ucaFront, _ := ms.Mount(geometry.UCAFrontIn)
	ucaRear, _ := ms.Mount(geometry.UCARearIn)
	lcaFront, _ := ms.Mount(geometry.LCAFrontIn)
	lcaRear, _ := ms.Mount(geometry.LCARearIn)
	ucaOut, _ := ms.Mount(geometry.UCAOut)
	lcaOut, _ := ms.Mount(geometry.LCAOut)

	ucaIn := geometry.Midpoint(ucaFront, ucaRear)
	lcaIn := geometry.Midpoint(lcaFront, lcaRear)

	// Front view: project onto Y-Z.
	icYZ, err := lineIntersection(
		ucaIn.Y, ucaIn.Z, ucaOut.Y, ucaOut.Z,
		lcaIn.Y, lcaIn.Z, lcaOut.Y, lcaOut.Z,
	)
	if err != nil {
		return nil, &ParallelArmsError{View: "front"}
	}
	avgX := (ucaIn.X + lcaIn.X + ucaOut.X + lcaOut.X) / 4
	icFront := r3.Vector{X: avgX, Y: icYZ[0], Z: icYZ[1]}

	// The contact patch sits at half track on the analyzed side, at ground
	// level; the roll center is where the patch-to-instant-center line
	// crosses the centerline.
	patchY := a.TrackWidth / 2
	var height float64
	if math.Abs(icFront.Y-patchY) < parallelEps {
		height = icFront.Z
	} else {
		t := -patchY / (icFront.Y - patchY)
		height = t * icFront.Z
	}
	swingArm := math.Hypot(icFront.Y-patchY, icFront.Z)

	result := &Result{
		Height:             height,
		InstantCenterFront: icFront,
		SwingArmLength:     swingArm,
	}

	// Side view: project onto X-Z. Parallel arms here are common (parallel
	// anti-dive geometry) and only zero out the roll axis angle.
	if icXZ, err := lineIntersection(
		ucaIn.X, ucaIn.Z, ucaOut.X, ucaOut.Z,
		lcaIn.X, lcaIn.Z, lcaOut.X, lcaOut.Z,
	); err == nil {
		avgY := (ucaIn.Y + lcaIn.Y + ucaOut.Y + lcaOut.Y) / 4
		icSide := r3.Vector{X: icXZ[0], Y: avgY, Z: icXZ[1]}
		result.InstantCenterSide = &icSide
		result.RollAxisAngleDeg = utils.RadToDeg(math.Atan2(icSide.Z, icSide.X))
	}
	return result, nil
}

// lineIntersection returns where the infinite lines through (x1,y1)-(x2,y2)
// and (x3,y3)-(x4,y4) cross.
func lineIntersection(x1, y1, x2, y2, x3, y3, x4, y4 float64) ([2]float64, error) {
	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < parallelEps {
		return [2]float64{}, errors.New("parallel lines")
	}
	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	return [2]float64{x1 + t*(x2-x1), y1 + t*(y2-y1)}, nil
}
