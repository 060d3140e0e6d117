// Package geometry models suspension mounting points and the rigid links
// between them. Mount coordinates are 3D (X longitudinal, Y lateral,
// Z vertical); the kinematic model works in the planar Y-Z front view
// obtained by dropping X.
package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Point is a planar front-view coordinate: Y is lateral, Z is vertical.
// Units follow whatever the owning mount set declares.
type Point struct {
	Y float64
	Z float64
}

// Add returns the vector sum of two points.
func (p Point) Add(o Point) Point {
	return Point{p.Y + o.Y, p.Z + o.Z}
}

// Sub returns the vector from o to p.
func (p Point) Sub(o Point) Point {
	return Point{p.Y - o.Y, p.Z - o.Z}
}

// Norm returns the distance from the origin.
func (p Point) Norm() float64 {
	return math.Hypot(p.Y, p.Z)
}

// AlmostEqual returns whether two points are within epsilon of each other in
// both coordinates.
func (p Point) AlmostEqual(o Point, epsilon float64) bool {
	return math.Abs(p.Y-o.Y) <= epsilon && math.Abs(p.Z-o.Z) <= epsilon
}

// Project drops the longitudinal axis of a 3D mount coordinate, yielding its
// front-view projection.
func Project(v r3.Vector) Point {
	return Point{Y: v.Y, Z: v.Z}
}

// Midpoint returns the unweighted mean of two 3D mount coordinates. Dual
// chassis bushings of an A-arm collapse to this single effective pivot; the
// model deliberately trades the front/rear mounts' independence for a planar
// linkage.
func Midpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Mul(0.5)
}
