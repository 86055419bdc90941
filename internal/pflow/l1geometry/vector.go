package l1geometry

import (
	"fmt"
	"math"
)

// Vector is an immutable 3-component Cartesian vector. Units are millimetres
// throughout the particle-flow packages.
type Vector struct {
	X, Y, Z float64
}

// V creates a new Vector.
func V(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// NewVectorFromSpherical builds a vector from radius r, azimuth phi and
// polar angle theta (radians).
func NewVectorFromSpherical(r, phi, theta float64) Vector {
	sinTheta := math.Sin(theta)
	return Vector{
		X: r * sinTheta * math.Cos(phi),
		Y: r * sinTheta * math.Sin(phi),
		Z: r * math.Cos(theta),
	}
}

// Add returns the vector sum a + b.
func (a Vector) Add(b Vector) Vector {
	return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vector) Sub(b Vector) Vector {
	return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns the scalar product a * s.
func (a Vector) Scale(s float64) Vector {
	return Vector{a.X * s, a.Y * s, a.Z * s}
}

// Dot returns the dot product a · b.
func (a Vector) Dot(b Vector) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vector) Cross(b Vector) Vector {
	return Vector{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// MagnitudeSquared returns |a|².
func (a Vector) MagnitudeSquared() float64 {
	return a.Dot(a)
}

// Magnitude returns |a|.
func (a Vector) Magnitude() float64 {
	return math.Sqrt(a.MagnitudeSquared())
}

// IsZero reports whether all components are exactly zero.
func (a Vector) IsZero() bool {
	return a.X == 0 && a.Y == 0 && a.Z == 0
}

// Unit returns the unit vector along a. The zero vector has no direction.
func (a Vector) Unit() (Vector, error) {
	mag := a.Magnitude()
	if mag == 0 {
		return Vector{}, fmt.Errorf("unit vector of zero vector: %w", ErrInvalidParameter)
	}
	return a.Scale(1 / mag), nil
}

// CosOpeningAngle returns the cosine of the angle between a and b, clamped
// to [-1, 1]. Zero vectors give an error.
func (a Vector) CosOpeningAngle(b Vector) (float64, error) {
	magProduct := a.Magnitude() * b.Magnitude()
	if magProduct == 0 {
		return 0, fmt.Errorf("opening angle with zero vector: %w", ErrInvalidParameter)
	}
	cosAngle := a.Dot(b) / magProduct
	return math.Max(-1, math.Min(1, cosAngle)), nil
}

// OpeningAngle returns the angle between a and b in radians.
func (a Vector) OpeningAngle(b Vector) (float64, error) {
	cosAngle, err := a.CosOpeningAngle(b)
	if err != nil {
		return 0, err
	}
	return math.Acos(cosAngle), nil
}

// Spherical returns the radius, azimuth phi and polar angle theta of a.
func (a Vector) Spherical() (r, phi, theta float64) {
	r = a.Magnitude()
	if r == 0 {
		return 0, 0, 0
	}
	return r, math.Atan2(a.Y, a.X), math.Acos(a.Z / r)
}

// String implements fmt.Stringer.
func (a Vector) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", a.X, a.Y, a.Z)
}
