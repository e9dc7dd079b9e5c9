package frames

import "math"

// Mat3 is a 3x3 rotation matrix, row-major.
type Mat3 [3][3]float64

// Identity3 is the identity rotation.
var Identity3 = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Apply rotates v by m.
func (m Mat3) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Transpose returns m's transpose, which for an orthonormal rotation matrix
// is also its inverse.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// Mul returns m * n (apply n first, then m).
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += m[i][k] * n[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

// rotX returns the rotation matrix for a right-handed rotation about the
// X axis by angle radians.
func rotX(angle float64) Mat3 {
	s, c := math.Sincos(angle)
	return Mat3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

// rotZ returns the rotation matrix for a right-handed rotation about the
// Z axis by angle radians.
func rotZ(angle float64) Mat3 {
	s, c := math.Sincos(angle)
	return Mat3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale3(s float64, v [3]float64) [3]float64 {
	return [3]float64{s * v[0], s * v[1], s * v[2]}
}

func add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}
