// Package bezier evaluates cubic Bézier curves in 3D.
//
// The functions are stateless. t is not clamped: values outside [0, 1]
// extrapolate the cubic polynomial.
package bezier

import "github.com/chazu/tangent/pkg/geom"

// Point returns the point at t on the cubic Bézier with control points
// p0, p1, p2 and p3.
func Point(p0, p1, p2, p3 geom.Vec3, t float64) geom.Vec3 {
	mt := 1 - t
	a := p0.MulScalar(mt * mt * mt)
	b := p1.MulScalar(3 * mt * mt * t)
	c := p2.MulScalar(3 * mt * t * t)
	d := p3.MulScalar(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

// Tangent returns the first derivative (velocity) at t. It is not normalized.
func Tangent(p0, p1, p2, p3 geom.Vec3, t float64) geom.Vec3 {
	mt := 1 - t
	a := p1.Sub(p0).MulScalar(3 * mt * mt)
	b := p2.Sub(p1).MulScalar(6 * mt * t)
	c := p3.Sub(p2).MulScalar(3 * t * t)
	return a.Add(b).Add(c)
}

// Cubic is a cubic Bézier segment.
type Cubic struct {
	P0, P1, P2, P3 geom.Vec3
}

// Eval returns the point at t.
func (c Cubic) Eval(t float64) geom.Vec3 {
	return Point(c.P0, c.P1, c.P2, c.P3, t)
}

// Tangent returns the first derivative at t.
func (c Cubic) Tangent(t float64) geom.Vec3 {
	return Tangent(c.P0, c.P1, c.P2, c.P3, t)
}

// Subdivide splits the cubic at t using de Casteljau's algorithm.
func (c Cubic) Subdivide(t float64) (Cubic, Cubic) {
	p01 := geom.Lerp(c.P0, c.P1, t)
	p12 := geom.Lerp(c.P1, c.P2, t)
	p23 := geom.Lerp(c.P2, c.P3, t)
	p012 := geom.Lerp(p01, p12, t)
	p123 := geom.Lerp(p12, p23, t)
	pm := geom.Lerp(p012, p123, t)
	return Cubic{c.P0, p01, p012, pm}, Cubic{pm, p123, p23, c.P3}
}
