package geometry

import (
	"fmt"
	"math"
)

// degenerateEps is the length below which two mount points are considered
// coincident.
const degenerateEps = 1e-12

// Link is a rigid connection between two planar points, reduced to its length
// and its angle from the Y axis, measured via atan2 in (-pi, pi]. Links are
// immutable once derived from reference geometry.
type Link struct {
	Length float64
	Angle  float64
}

// DegenerateLinkError indicates two coincident mount points were given to the
// geometry extractor. It is fatal to the owning topology's reference geometry
// and is reported at construction, never deferred to first use.
type DegenerateLinkError struct {
	At Point
}

func (e *DegenerateLinkError) Error() string {
	return fmt.Sprintf("degenerate link: mount points coincide at (y=%g, z=%g)", e.At.Y, e.At.Z)
}

// LinkBetween derives the link from p1 to p2. The length is the Euclidean
// distance and the angle is atan2(dz, dy). Coincident points yield a
// DegenerateLinkError rather than a silent zero-length link.
func LinkBetween(p1, p2 Point) (Link, error) {
	dy := p2.Y - p1.Y
	dz := p2.Z - p1.Z
	length := math.Hypot(dy, dz)
	if length < degenerateEps {
		return Link{}, &DegenerateLinkError{At: p1}
	}
	return Link{Length: length, Angle: math.Atan2(dz, dy)}, nil
}

// End returns the far end of the link when anchored at from.
func (l Link) End(from Point) Point {
	return Point{from.Y + l.Length*math.Cos(l.Angle), from.Z + l.Length*math.Sin(l.Angle)}
}

// EndAt returns the far end of the link when anchored at from and rotated to
// the given angle, ignoring the link's reference angle.
func (l Link) EndAt(from Point, angle float64) Point {
	return Point{from.Y + l.Length*math.Cos(angle), from.Z + l.Length*math.Sin(angle)}
}
