// Package kinematics solves the loop-closure equations of planar suspension
// linkages. A topology's reference geometry is derived once from its mount
// points; poses are then solved per driving-input value, either in closed
// form or iteratively.
package kinematics

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CharlesShamburger/FSAE-VD/geometry"
	"github.com/CharlesShamburger/FSAE-VD/utils"
)

// Branch selects which of the two algebraic roots of the closure quadratic to
// keep. The two roots are the "elbow up" and "elbow down" assembly modes of
// the linkage; the branch is fixed per loop from the reference geometry and
// held for a whole sweep.
type Branch int

// The two assembly modes.
const (
	BranchPositive = Branch(1)
	BranchNegative = Branch(-1)
)

const (
	// discClampTol absorbs floating-point noise when the discriminant sits
	// right at the closure boundary.
	discClampTol = 1e-9
	// branchCalibrationTol is how closely the calibrated branch must
	// reproduce the reference angles.
	branchCalibrationTol = 1e-6
)

// Loop is one planar vector loop with two fully known vectors, two known link
// lengths, and those links' two unknown angles:
//
//	known1 + known2 + free*e^(i*phiFree) + input*e^(i*phiInput) = 0
//
// Input is the driving link: its length is externally varied and its angle is
// what the closure quadratic solves first. Known2 may be the zero link for
// loops closed by a single fixed vector.
type Loop struct {
	Name   string
	Known1 geometry.Link
	Known2 geometry.Link
	Free   float64
	Input  float64
	Branch Branch
}

// resultant sums the two known vectors.
func (l Loop) resultant() (float64, float64) {
	rkx := l.Known1.Length*math.Cos(l.Known1.Angle) + l.Known2.Length*math.Cos(l.Known2.Angle)
	rky := l.Known1.Length*math.Sin(l.Known1.Angle) + l.Known2.Length*math.Sin(l.Known2.Angle)
	return rkx, rky
}

// Closure returns the two components of the loop sum at the given unknown
// angles. Both are zero at a solution.
func (l Loop) Closure(phiFree, phiInput float64) (float64, float64) {
	rkx, rky := l.resultant()
	ex := rkx + l.Free*math.Cos(phiFree) + l.Input*math.Cos(phiInput)
	ey := rky + l.Free*math.Sin(phiFree) + l.Input*math.Sin(phiInput)
	return ex, ey
}

// SolveClosedForm solves the loop exactly via the tangent half-angle
// substitution, which reduces the closure condition to a quadratic in
// tan(phiInput/2). A negative discriminant means the driving input is
// kinematically infeasible and is reported as an InfeasibleError.
func (l Loop) SolveClosedForm() (phiFree, phiInput float64, err error) {
	rkx, rky := l.resultant()
	rk2 := rkx*rkx + rky*rky

	a := l.Free*l.Free - l.Input*l.Input - rk2 + 2*l.Input*rkx
	b := -4 * l.Input * rky
	c := l.Free*l.Free - l.Input*l.Input - rk2 - 2*l.Input*rkx

	disc := b*b - 4*a*c
	if disc < 0 {
		if disc < -discClampTol*math.Max(b*b, math.Abs(4*a*c)) {
			return 0, 0, &InfeasibleError{Loop: l.Name, Input: l.Input}
		}
		disc = 0
	}

	branch := l.Branch
	if branch == 0 {
		branch = BranchPositive
	}

	var t float64
	scale := math.Max(math.Abs(b), math.Abs(c))
	switch {
	case math.Abs(a) > 1e-12*math.Max(scale, 1):
		t = (-b + float64(branch)*math.Sqrt(disc)) / (2 * a)
	case math.Abs(b) > 1e-12*math.Max(math.Abs(c), 1):
		// The quadratic degenerates to a single linear root.
		t = -c / b
	default:
		return 0, 0, &InfeasibleError{Loop: l.Name, Input: l.Input}
	}

	phiInput = 2 * math.Atan(t)
	phiFree = math.Atan2(
		(-l.Input*math.Sin(phiInput)-rky)/l.Free,
		(-l.Input*math.Cos(phiInput)-rkx)/l.Free,
	)
	return phiFree, phiInput, nil
}

// CalibrateBranch solves the loop with both branches and returns the one that
// reproduces the known reference angles. Switching branches mid-sweep is a
// discontinuous linkage flip, so the result is fixed on the loop for all
// subsequent solves.
func (l Loop) CalibrateBranch(refFree, refInput float64) (Branch, error) {
	best := Branch(0)
	bestDiff := math.Inf(1)
	for _, branch := range []Branch{BranchPositive, BranchNegative} {
		candidate := l
		candidate.Branch = branch
		phiFree, phiInput, err := candidate.SolveClosedForm()
		if err != nil {
			continue
		}
		diff := utils.AngleDiff(phiFree, refFree) + utils.AngleDiff(phiInput, refInput)
		if diff < bestDiff {
			bestDiff = diff
			best = branch
		}
	}
	if best == 0 {
		return 0, errors.Errorf("loop %q does not close at its reference geometry", l.Name)
	}
	if bestDiff > branchCalibrationTol {
		return 0, errors.Errorf(
			"loop %q: neither solution branch reproduces the reference angles (off by %g rad)", l.Name, bestDiff)
	}
	return best, nil
}
