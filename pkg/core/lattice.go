package core

import (
	"errors"
	"math"
)

// ErrSingularLattice is returned when lattice vectors are linearly dependent.
var ErrSingularLattice = errors.New("lattice vectors are linearly dependent")

// Lattice is a periodic cell given by three row vectors in Angstrom.
type Lattice struct {
	Matrix [3][3]float64
}

// NewLattice creates a lattice from its row vectors a, b and c.
func NewLattice(a, b, c [3]float64) Lattice {
	return Lattice{Matrix: [3][3]float64{a, b, c}}
}

// CubicLattice returns a cubic cell with edge length a.
func CubicLattice(a float64) Lattice {
	return NewLattice([3]float64{a, 0, 0}, [3]float64{0, a, 0}, [3]float64{0, 0, a})
}

// Determinant returns the signed volume of the cell.
func (l Lattice) Determinant() float64 {
	m := l.Matrix
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Volume returns the cell volume in cubic Angstrom.
func (l Lattice) Volume() float64 {
	return math.Abs(l.Determinant())
}

// Lengths returns |a|, |b| and |c|.
func (l Lattice) Lengths() [3]float64 {
	var out [3]float64
	for i, v := range l.Matrix {
		out[i] = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return out
}

// Cartesian converts fractional coordinates to Cartesian coordinates.
func (l Lattice) Cartesian(frac [3]float64) [3]float64 {
	var out [3]float64
	for i := range 3 {
		for j := range 3 {
			out[j] += frac[i] * l.Matrix[i][j]
		}
	}
	return out
}

// Fractional converts Cartesian coordinates to fractional coordinates.
func (l Lattice) Fractional(cart [3]float64) ([3]float64, error) {
	inv, err := l.inverse()
	if err != nil {
		return [3]float64{}, err
	}
	var out [3]float64
	for i := range 3 {
		for j := range 3 {
			out[j] += cart[i] * inv[i][j]
		}
	}
	return out, nil
}

func (l Lattice) inverse() ([3][3]float64, error) {
	det := l.Determinant()
	if math.Abs(det) < 1e-12 {
		return [3][3]float64{}, ErrSingularLattice
	}
	m := l.Matrix
	return [3][3]float64{
		{
			(m[1][1]*m[2][2] - m[1][2]*m[2][1]) / det,
			(m[0][2]*m[2][1] - m[0][1]*m[2][2]) / det,
			(m[0][1]*m[1][2] - m[0][2]*m[1][1]) / det,
		},
		{
			(m[1][2]*m[2][0] - m[1][0]*m[2][2]) / det,
			(m[0][0]*m[2][2] - m[0][2]*m[2][0]) / det,
			(m[0][2]*m[1][0] - m[0][0]*m[1][2]) / det,
		},
		{
			(m[1][0]*m[2][1] - m[1][1]*m[2][0]) / det,
			(m[0][1]*m[2][0] - m[0][0]*m[2][1]) / det,
			(m[0][0]*m[1][1] - m[0][1]*m[1][0]) / det,
		},
	}, nil
}
