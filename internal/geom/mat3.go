package geom

import "math"

// Mat3 is a rotation basis stored row-major.
type Mat3 [9]float64

// Basis builds the matrix whose columns are x, y and z.
func Basis(x, y, z Vec3) Mat3 {
	return Mat3{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	}
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{1, 0, 0, 0, c, -s, 0, s, c}
}

func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, 0, s, 0, 1, 0, -s, 0, c}
}

func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, -s, 0, s, c, 0, 0, 0, 1}
}

// EulerXYZ composes intrinsic X then Y then Z rotations (Rx·Ry·Rz).
func EulerXYZ(e Vec3) Mat3 {
	return Mat3Mul(Mat3Mul(RotX(e.X), RotY(e.Y)), RotZ(e.Z))
}

// ToEulerXYZ is the inverse of EulerXYZ. Near gimbal lock Z is folded into X.
func (m Mat3) ToEulerXYZ() Vec3 {
	m13 := clamp(m[2], -1, 1)
	y := math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		return Vec3{
			X: math.Atan2(-m[5], m[8]),
			Y: y,
			Z: math.Atan2(-m[1], m[0]),
		}
	}
	return Vec3{X: math.Atan2(m[7], m[4]), Y: y}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
