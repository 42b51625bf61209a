package spline

import (
	"fmt"
	"strings"

	"github.com/chazu/tangent/pkg/geom"
)

// Mode is the symmetry rule between a control point's two handles.
type Mode int

const (
	// Aligned handles lie on one line but keep independent magnitudes.
	Aligned Mode = iota
	// Mirrored handles are exact negations of each other.
	Mirrored
)

func (m Mode) String() string {
	switch m {
	case Aligned:
		return "aligned"
	case Mirrored:
		return "mirrored"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "aligned" or "mirrored" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "aligned":
		return Aligned, nil
	case "mirrored":
		return Mirrored, nil
	}
	return 0, fmt.Errorf("spline: unknown mode %q", s)
}

// MinHandleMagnitude is the shortest handle a control point will hold.
const MinHandleMagnitude = 0.01

// NoJunction is the junction id of a point that is not part of a junction.
const NoJunction = -1

// ControlPoint is one anchor of a spline with its two tangent handles.
// Handle 0 points back along the curve, handle 1 forward. Handles are stored
// relative to the anchor.
type ControlPoint struct {
	anchor   geom.Vec3
	handles  [2]geom.Vec3
	up       geom.Vec3
	mode     Mode
	junction int

	// version is bumped on every mutation so owning splines can tell when
	// their arc-length table is stale.
	version uint64
}

// NewControlPoint returns a Mirrored point at anchor whose handles extend
// half of forward in each direction. A zero forward is replaced by +Z.
func NewControlPoint(anchor, forward geom.Vec3) *ControlPoint {
	if forward.Length() < MinHandleMagnitude {
		forward = geom.Forward
	}
	return &ControlPoint{
		anchor:   anchor,
		handles:  [2]geom.Vec3{forward.MulScalar(-0.5), forward.MulScalar(0.5)},
		up:       geom.Up,
		mode:     Mirrored,
		junction: NoJunction,
	}
}

func (p *ControlPoint) touch() { p.version++ }

// Version returns a counter that changes whenever the point is mutated.
func (p *ControlPoint) Version() uint64 { return p.version }

func (p *ControlPoint) Anchor() geom.Vec3 { return p.anchor }

func (p *ControlPoint) SetAnchor(v geom.Vec3) {
	p.anchor = v
	p.touch()
}

// Handle returns the absolute position of handle i.
func (p *ControlPoint) Handle(i int) geom.Vec3 {
	return p.anchor.Add(p.handles[i])
}

// RelativeHandle returns handle i relative to the anchor.
func (p *ControlPoint) RelativeHandle(i int) geom.Vec3 {
	return p.handles[i]
}

// SetHandle moves handle i to the absolute position v.
func (p *ControlPoint) SetHandle(i int, v geom.Vec3) {
	p.SetRelativeHandle(i, v.Sub(p.anchor))
}

// SetRelativeHandle sets handle i relative to the anchor and re-derives the
// opposite handle from the point's mode.
func (p *ControlPoint) SetRelativeHandle(i int, v geom.Vec3) {
	h := clampHandle(v, p.handles[i], i)
	p.handles[i] = h
	o := 1 - i
	switch p.mode {
	case Aligned:
		p.handles[o] = geom.Normalize(geom.Neg(h)).MulScalar(p.handles[o].Length())
	case Mirrored:
		p.handles[o] = geom.Neg(h)
	}
	p.touch()
}

// HandleMagnitude returns the length of handle i.
func (p *ControlPoint) HandleMagnitude(i int) float64 {
	return p.handles[i].Length()
}

// SetHandleMagnitude rescales handle i to m, at least MinHandleMagnitude.
// A Mirrored point keeps both handles at the same magnitude.
func (p *ControlPoint) SetHandleMagnitude(i int, m float64) {
	if m < MinHandleMagnitude {
		m = MinHandleMagnitude
	}
	p.handles[i] = geom.Normalize(p.handles[i]).MulScalar(m)
	if p.mode == Mirrored {
		p.handles[1-i] = geom.Neg(p.handles[i])
	}
	p.touch()
}

func (p *ControlPoint) Mode() Mode { return p.mode }

// SetMode changes the symmetry rule and immediately re-derives handle 0
// from handle 1.
func (p *ControlPoint) SetMode(m Mode) {
	p.mode = m
	p.SetRelativeHandle(1, p.handles[1])
}

// Up returns the stored up reference vector.
func (p *ControlPoint) Up() geom.Vec3 { return p.up }

// Rotation looks along handle 1 with the up reference as secondary axis.
func (p *ControlPoint) Rotation() geom.Quat {
	return geom.LookRotation(p.handles[1], p.up)
}

// EulerAngles decomposes the orientation into pitch, yaw and roll.
func (p *ControlPoint) EulerAngles() geom.Euler {
	return geom.EulerAngles(p.up, p.handles[1])
}

// SetRotation regenerates both handles and the up vector from q, keeping the
// handle magnitudes.
func (p *ControlPoint) SetRotation(q geom.Quat) {
	p.handles[0] = q.Rotate(geom.Back).MulScalar(p.handles[0].Length())
	p.handles[1] = q.Rotate(geom.Forward).MulScalar(p.handles[1].Length())
	p.up = q.Rotate(geom.Up)
	p.touch()
}

// Scale multiplies both handles component-wise by s.
func (p *ControlPoint) Scale(s geom.Vec3) {
	for i := range p.handles {
		p.handles[i] = clampHandle(geom.Scale(p.handles[i], s), p.handles[i], i)
	}
	p.touch()
}

func (p *ControlPoint) Junction() int { return p.junction }

// SetJunction tags the point with a junction id. Membership bookkeeping is
// the network's job; this only stores the tag.
func (p *ControlPoint) SetJunction(id int) {
	p.junction = id
	p.touch()
}

// Clone returns an independent copy of p.
func (p *ControlPoint) Clone() *ControlPoint {
	c := *p
	c.version = 0
	return &c
}

// PointState is the serializable layout of a control point.
type PointState struct {
	Anchor   geom.Vec3
	Handles  [2]geom.Vec3
	Up       geom.Vec3
	Mode     Mode
	Junction int
}

// State returns every attribute of p.
func (p *ControlPoint) State() PointState {
	return PointState{
		Anchor:   p.anchor,
		Handles:  p.handles,
		Up:       p.up,
		Mode:     p.mode,
		Junction: p.junction,
	}
}

// FromState rebuilds a control point from a saved state without
// re-deriving handles, so a save/load round trip is exact.
func FromState(s PointState) *ControlPoint {
	return &ControlPoint{
		anchor:   s.Anchor,
		handles:  s.Handles,
		up:       s.Up,
		mode:     s.Mode,
		junction: s.Junction,
	}
}

// clampHandle returns v lengthened to MinHandleMagnitude when it is shorter.
// A zero v takes the direction of prev, or the default direction of handle i.
func clampHandle(v, prev geom.Vec3, i int) geom.Vec3 {
	if v.Length() >= MinHandleMagnitude {
		return v
	}
	dir := geom.Normalize(v)
	if dir == geom.Zero {
		dir = geom.Normalize(prev)
	}
	if dir == geom.Zero {
		dir = geom.Forward
		if i == 0 {
			dir = geom.Back
		}
	}
	return dir.MulScalar(MinHandleMagnitude)
}
