package geom

import "math"

// Quat is a rotation quaternion. The zero value is not a valid rotation;
// use Identity.
type Quat struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
	W float64 `yaml:"w"`
}

// Identity returns the identity rotation.
func Identity() Quat {
	return Quat{W: 1}
}

// AngleAxis returns a rotation of deg degrees around axis.
func AngleAxis(deg float64, axis Vec3) Quat {
	axis = Normalize(axis)
	s, c := math.Sincos(Radians(deg) / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// EulerQuat returns the rotation for Euler angles in degrees: a rotation of
// z around Forward, then x around Right, then y around Up.
func EulerQuat(x, y, z float64) Quat {
	return AngleAxis(y, Up).Mul(AngleAxis(x, Right)).Mul(AngleAxis(z, Forward))
}

// Mul returns the rotation q applied after r.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y + q.Y*r.W + q.Z*r.X - q.X*r.Z,
		Z: q.W*r.Z + q.Z*r.W + q.X*r.Y - q.Y*r.X,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Dot returns the 4D dot product of q and r.
func (q Quat) Dot(r Quat) float64 {
	return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W
}

// Inverse returns the inverse rotation. q must be unit length.
func (q Quat) Inverse() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Normalize returns q scaled to unit length, or Identity for a zero quaternion.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.Dot(q))
	if l < epsilon {
		return Identity()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).MulScalar(2)
	return v.Add(t.MulScalar(q.W)).Add(u.Cross(t))
}

// Slerp spherically interpolates between a and b along the shortest arc.
func Slerp(a, b Quat, t float64) Quat {
	d := a.Dot(b)
	if d < 0 {
		b = Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
		d = -d
	}
	if d > 0.9995 {
		return Quat{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
			Z: a.Z + (b.Z-a.Z)*t,
			W: a.W + (b.W-a.W)*t,
		}.Normalize()
	}
	theta := math.Acos(d)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quat{
		X: a.X*wa + b.X*wb,
		Y: a.Y*wa + b.Y*wb,
		Z: a.Z*wa + b.Z*wb,
		W: a.W*wa + b.W*wb,
	}
}

// LookRotation returns the rotation that maps Forward onto forward and Up
// as close as possible onto up. When up is parallel to forward an arbitrary
// perpendicular is used as the secondary axis.
func LookRotation(forward, up Vec3) Quat {
	z := Normalize(forward)
	if z == Zero {
		return Identity()
	}
	x := Normalize(up.Cross(z))
	if x == Zero {
		alt := Forward
		if math.Abs(z.Z) > 0.9 {
			alt = Right
		}
		x = Normalize(alt.Cross(z))
	}
	y := z.Cross(x)
	return fromBasis(x, y, z)
}

// fromBasis converts the orthonormal basis (columns x, y, z) to a quaternion.
func fromBasis(x, y, z Vec3) Quat {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q Quat
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{W: 0.25 / s, X: (m21 - m12) * s, Y: (m02 - m20) * s, Z: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quat{W: (m21 - m12) / s, X: 0.25 * s, Y: (m01 + m10) / s, Z: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quat{W: (m02 - m20) / s, X: (m01 + m10) / s, Y: 0.25 * s, Z: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quat{W: (m10 - m01) / s, X: (m02 + m20) / s, Y: (m12 + m21) / s, Z: 0.25 * s}
	}
	return q.Normalize()
}
