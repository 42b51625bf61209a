// Package geom provides the vector, rotation and angle primitives shared by
// the spline core. Vectors are the sdfx vector types so generated geometry
// can be handed to the sdfx render backend without conversion.
//
// The coordinate convention is Y-up: Forward is +Z, Up is +Y, Right is +X.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a 3D float64 vector.
type Vec3 = v3.Vec

// Vec2 is a 2D float64 vector, used for planar offsets and scales.
type Vec2 = v2.Vec

// Basis vectors.
var (
	Zero    = Vec3{}
	One     = Vec3{X: 1, Y: 1, Z: 1}
	Forward = Vec3{Z: 1}
	Back    = Vec3{Z: -1}
	Up      = Vec3{Y: 1}
	Down    = Vec3{Y: -1}
	Right   = Vec3{X: 1}
	Left    = Vec3{X: -1}
)

// epsilon below which a vector is treated as zero length.
const epsilon = 1e-12

// V returns the vector (x, y, z).
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged rather than producing NaNs.
func Normalize(v Vec3) Vec3 {
	l := v.Length()
	if l < epsilon {
		return Zero
	}
	return v.MulScalar(1 / l)
}

// Neg returns -v.
func Neg(v Vec3) Vec3 {
	return v.MulScalar(-1)
}

// Scale multiplies v and s component-wise.
func Scale(v, s Vec3) Vec3 {
	return Vec3{X: v.X * s.X, Y: v.Y * s.Y, Z: v.Z * s.Z}
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Length()
}

// ProjectOnPlane removes the component of v along the plane normal n.
func ProjectOnPlane(v, n Vec3) Vec3 {
	nn := n.Dot(n)
	if nn < epsilon {
		return v
	}
	return v.Sub(n.MulScalar(v.Dot(n) / nn))
}

// Angle returns the unsigned angle between a and b in degrees. It is 0 when
// either vector has zero length.
func Angle(a, b Vec3) float64 {
	denom := math.Sqrt(a.Dot(a) * b.Dot(b))
	if denom < epsilon {
		return 0
	}
	c := a.Dot(b) / denom
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

// ClampNonNegative replaces negative components of v with zero.
func ClampNonNegative(v Vec3) Vec3 {
	return Vec3{X: math.Max(v.X, 0), Y: math.Max(v.Y, 0), Z: math.Max(v.Z, 0)}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
