package geom

import "math"

// Euler holds intuitive orientation angles in degrees.
type Euler struct {
	Pitch float64 `yaml:"pitch"` // around Right (X)
	Yaw   float64 `yaml:"yaw"`   // around Up (Y)
	Roll  float64 `yaml:"roll"`  // around Forward (Z)
}

// Vec returns the angles as (pitch, yaw, roll).
func (e Euler) Vec() Vec3 {
	return Vec3{X: e.Pitch, Y: e.Yaw, Z: e.Roll}
}

// Quat returns the rotation described by e.
func (e Euler) Quat() Quat {
	return EulerQuat(e.Pitch, e.Yaw, e.Roll)
}

// Mask zeroes every angle whose axis is disabled. The mask order is
// pitch, yaw, roll.
func (e Euler) Mask(enabled [3]bool) Euler {
	if !enabled[0] {
		e.Pitch = 0
	}
	if !enabled[1] {
		e.Yaw = 0
	}
	if !enabled[2] {
		e.Roll = 0
	}
	return e
}

// EulerAngles decomposes the orientation defined by a forward direction and
// an up reference into yaw, pitch and roll.
//
// Yaw comes from the horizontal projection of forward and pitch from its
// vertical component. Roll is the angle between up and the normal of the
// plane spanned by forward and the horizontal perpendicular; it is reported
// as 360 minus that angle when the perpendicular leans towards up, so roll
// stays continuous where yaw wraps.
func EulerAngles(up, forward Vec3) Euler {
	var e Euler
	e.Yaw = Degrees(math.Atan2(forward.X, forward.Z))

	xz := Vec3{X: forward.X, Z: forward.Z}
	e.Pitch = -Degrees(math.Atan2(forward.Y, xz.Length()))

	perpendicular := Up.Cross(xz)
	normal := forward.Cross(perpendicular)
	// perpendicular.Dot(up) > 0 is Angle(perpendicular, up) < 90 without the
	// rounding of acos at exactly 90 degrees.
	if perpendicular.Dot(up) > 0 {
		e.Roll = 360 - Angle(normal, up)
	} else {
		e.Roll = Angle(normal, up)
	}
	return e
}
