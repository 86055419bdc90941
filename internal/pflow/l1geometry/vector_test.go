package l1geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_Algebra(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, -5, 6)

	assert.Equal(t, V(5, -3, 9), a.Add(b))
	assert.Equal(t, V(-3, 7, -3), a.Sub(b))
	assert.Equal(t, V(2, 4, 6), a.Scale(2))
	assert.Equal(t, 12.0, a.Dot(b))
	assert.Equal(t, V(27, 6, -13), a.Cross(b))
	assert.Equal(t, 14.0, a.MagnitudeSquared())
	assert.InDelta(t, math.Sqrt(14), a.Magnitude(), 1e-12)

	// a × b is perpendicular to both operands.
	assert.InDelta(t, 0, a.Cross(b).Dot(a), 1e-12)
	assert.InDelta(t, 0, a.Cross(b).Dot(b), 1e-12)
}

func TestVector_Unit(t *testing.T) {
	u, err := V(0, 3, 4).Unit()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, u.Magnitude(), 1e-12)
	assert.InDelta(t, 0.6, u.Y, 1e-12)

	_, err = Vector{}.Unit()
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestVector_OpeningAngle(t *testing.T) {
	cosAngle, err := V(1, 0, 0).CosOpeningAngle(V(0, 1, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0, cosAngle, 1e-12)

	angle, err := V(1, 0, 0).OpeningAngle(V(-2, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, angle, 1e-12)

	_, err = V(1, 0, 0).CosOpeningAngle(Vector{})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestVector_SphericalRoundTrip(t *testing.T) {
	v := V(3, -4, 12)
	r, phi, theta := v.Spherical()
	assert.InDelta(t, 13.0, r, 1e-12)

	back := NewVectorFromSpherical(r, phi, theta)
	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Y, back.Y, 1e-9)
	assert.InDelta(t, v.Z, back.Z, 1e-9)

	r, phi, theta = Vector{}.Spherical()
	assert.Zero(t, r)
	assert.Zero(t, phi)
	assert.Zero(t, theta)
}
