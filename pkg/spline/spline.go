// Package spline models piecewise cubic Bézier curves with orientation.
//
// A Spline is an ordered chain of ControlPoints; segment i runs from point i
// to point i+1 using the outgoing handle of the first and the incoming handle
// of the second. Sampling goes through an arc-length table so positions are
// spaced by distance travelled rather than by raw Bézier parameter. The
// table is rebuilt lazily on the next read after any point changes.
package spline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/tangent/pkg/bezier"
	"github.com/chazu/tangent/pkg/geom"
)

// TableResolution is the number of arc-length samples per segment.
const TableResolution = 100

var (
	ErrTooFewPoints    = errors.New("spline: a spline needs at least two control points")
	ErrIndexOutOfRange = errors.New("spline: control point index out of range")
)

// Spline is an ordered sequence of control points. The zero value is not
// usable; create splines with New or FromPoints.
type Spline struct {
	Name string

	points   []*ControlPoint
	settings string
	active   []bool

	table  []float64
	stamps []uint64
	dirty  bool
}

// New returns a two-point spline starting at anchor, with the second point
// one unit further along forward.
func New(anchor, forward geom.Vec3) *Spline {
	dir := geom.Normalize(forward)
	if dir == geom.Zero {
		dir = geom.Forward
	}
	return &Spline{
		points: []*ControlPoint{
			NewControlPoint(anchor, dir),
			NewControlPoint(anchor.Add(dir), dir),
		},
		dirty: true,
	}
}

// FromPoints returns a spline that owns the given points.
func FromPoints(points ...*ControlPoint) (*Spline, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("spline: from %d points: %w", len(points), ErrTooFewPoints)
	}
	s := &Spline{points: append([]*ControlPoint(nil), points...), dirty: true}
	return s, nil
}

// Len returns the number of control points.
func (s *Spline) Len() int { return len(s.points) }

// SegmentCount returns the number of Bézier segments.
func (s *Spline) SegmentCount() int {
	if len(s.points) < 2 {
		return 0
	}
	return len(s.points) - 1
}

// Point returns control point i, or nil when i is out of range.
func (s *Spline) Point(i int) *ControlPoint {
	if i < 0 || i >= len(s.points) {
		return nil
	}
	return s.points[i]
}

// Points returns the control points in order. The slice is a copy; the
// points are shared.
func (s *Spline) Points() []*ControlPoint {
	return append([]*ControlPoint(nil), s.points...)
}

// IndexOf returns the index of p in s, or -1.
func (s *Spline) IndexOf(p *ControlPoint) int {
	for i, q := range s.points {
		if q == p {
			return i
		}
	}
	return -1
}

// AddControlPoint appends a point one unit beyond the last anchor along its
// outgoing handle. The new handles continue that tangent at half its
// magnitude.
func (s *Spline) AddControlPoint() *ControlPoint {
	last := s.points[len(s.points)-1]
	h := last.RelativeHandle(1)
	p := NewControlPoint(last.Anchor().Add(geom.Normalize(h)), h)
	p.up = last.up
	s.points = append(s.points, p)
	s.dirty = true
	return p
}

// startForward is the forward length of a point inserted at the start.
const startForward = 5

// InsertControlPoint inserts a point so that it becomes index i.
//
// At 0 the point goes one unit before the first anchor along its incoming
// handle, with handles of length startForward/2. Otherwise segment i-1 is split at its parametric midpoint: the new
// point sits on the curve, both neighbours switch to Aligned and their
// handles facing the new point are halved, which keeps the curve shape.
// Inserting at Len appends.
func (s *Spline) InsertControlPoint(i int) (*ControlPoint, error) {
	n := len(s.points)
	switch {
	case i < 0 || i > n:
		return nil, fmt.Errorf("spline: insert at %d of %d: %w", i, n, ErrIndexOutOfRange)
	case i == n:
		return s.AddControlPoint(), nil
	case i == 0:
		first := s.points[0]
		p := NewControlPoint(
			first.Anchor().Add(geom.Normalize(first.RelativeHandle(0))),
			geom.Normalize(first.RelativeHandle(1)).MulScalar(startForward),
		)
		p.up = first.up
		s.points = append([]*ControlPoint{p}, s.points...)
		s.dirty = true
		return p, nil
	}

	prev, next := s.points[i-1], s.points[i]
	_, right := s.segment(i - 1).Subdivide(0.5)
	up := s.segmentUp(i-1, 0.5)
	mid := right.P0
	p := NewControlPoint(mid, right.P1.Sub(mid).MulScalar(2))
	p.up = up

	prev.SetMode(Aligned)
	prev.SetRelativeHandle(1, prev.RelativeHandle(1).MulScalar(0.5))
	next.SetMode(Aligned)
	next.SetRelativeHandle(0, next.RelativeHandle(0).MulScalar(0.5))

	s.points = append(s.points, nil)
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = p
	s.dirty = true
	return p, nil
}

// RemoveControlPoint removes point i. Junction cleanup is the network's
// responsibility and must happen first. A spline left with one point is not
// a valid standing state; its owner is expected to remove it.
func (s *Spline) RemoveControlPoint(i int) error {
	if i < 0 || i >= len(s.points) {
		return fmt.Errorf("spline: remove %d of %d: %w", i, len(s.points), ErrIndexOutOfRange)
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	s.dirty = true
	return nil
}

// Segment returns segment i as a cubic.
func (s *Spline) Segment(i int) (bezier.Cubic, error) {
	if i < 0 || i >= s.SegmentCount() {
		return bezier.Cubic{}, fmt.Errorf("spline: segment %d of %d: %w", i, s.SegmentCount(), ErrIndexOutOfRange)
	}
	return s.segment(i), nil
}

func (s *Spline) segment(i int) bezier.Cubic {
	a, b := s.points[i], s.points[i+1]
	return bezier.Cubic{P0: a.Anchor(), P1: a.Handle(1), P2: b.Handle(0), P3: b.Anchor()}
}

// stale reports whether the arc-length table no longer matches the points.
func (s *Spline) stale() bool {
	if s.dirty || len(s.stamps) != len(s.points) {
		return true
	}
	for i, p := range s.points {
		if p.version != s.stamps[i] {
			return true
		}
	}
	return false
}

// Rebuild recomputes the arc-length table if any point changed since the
// last build. Readers call it implicitly.
func (s *Spline) Rebuild() {
	if !s.stale() {
		return
	}
	s.table = s.table[:0]
	s.stamps = s.stamps[:0]
	for _, p := range s.points {
		s.stamps = append(s.stamps, p.version)
	}
	s.dirty = false
	if len(s.points) < 2 {
		s.table = append(s.table, 0)
		return
	}

	s.table = append(s.table, 0)
	total := 0.0
	last := s.points[0].Anchor()
	for i := 0; i < len(s.points)-1; i++ {
		c := s.segment(i)
		for j := 1; j <= TableResolution; j++ {
			pos := c.Eval(float64(j) / TableResolution)
			total += geom.Distance(last, pos)
			s.table = append(s.table, total)
			last = pos
		}
	}
}

// ArcLength returns the total length of the curve.
func (s *Spline) ArcLength() float64 {
	s.Rebuild()
	return s.table[len(s.table)-1]
}

// Param maps an arc-length distance to the Bézier parameter u in
// [0, SegmentCount]; the integer part of u is the segment. Distances beyond
// either end clamp to that end.
func (s *Spline) Param(d float64) float64 {
	s.Rebuild()
	if len(s.points) < 2 || d <= 0 {
		return 0
	}
	i := sort.Search(len(s.table), func(i int) bool { return s.table[i] > d })
	if i == len(s.table) {
		return float64(len(s.points) - 1)
	}
	frac := (d - s.table[i-1]) / (s.table[i] - s.table[i-1])
	return (float64(i-1) + frac) / TableResolution
}

// locate splits a parameter into a segment index and a local t.
func (s *Spline) locate(u float64) (int, float64) {
	seg := int(math.Floor(u))
	t := u - float64(seg)
	if seg >= len(s.points)-1 {
		seg, t = len(s.points)-2, 1
	}
	if seg < 0 {
		seg, t = 0, 0
	}
	return seg, t
}

func (s *Spline) segmentUp(seg int, t float64) geom.Vec3 {
	dir := s.segment(seg).Tangent(t)
	q := geom.Slerp(s.points[seg].Rotation(), s.points[seg+1].Rotation(), t)
	return geom.ProjectOnPlane(q.Rotate(geom.Up), dir)
}

// PointAtDistance returns the position d units along the curve.
func (s *Spline) PointAtDistance(d float64) geom.Vec3 {
	if len(s.points) < 2 {
		return s.firstAnchor()
	}
	seg, t := s.locate(s.Param(d))
	return s.segment(seg).Eval(t)
}

// DirectionAtDistance returns the unit tangent d units along the curve.
func (s *Spline) DirectionAtDistance(d float64) geom.Vec3 {
	if len(s.points) < 2 {
		return geom.Forward
	}
	seg, t := s.locate(s.Param(d))
	return geom.Normalize(s.segment(seg).Tangent(t))
}

// UpAtDistance returns the up vector d units along the curve: the twist of
// the surrounding control points, interpolated spherically and projected
// perpendicular to the direction. It is not normalized.
func (s *Spline) UpAtDistance(d float64) geom.Vec3 {
	if len(s.points) < 2 {
		return geom.Up
	}
	seg, t := s.locate(s.Param(d))
	return s.segmentUp(seg, t)
}

// PointAt returns the position at fraction f of the arc length.
func (s *Spline) PointAt(f float64) geom.Vec3 {
	return s.PointAtDistance(f * s.ArcLength())
}

// DirectionAt returns the unit tangent at fraction f of the arc length.
func (s *Spline) DirectionAt(f float64) geom.Vec3 {
	return s.DirectionAtDistance(f * s.ArcLength())
}

// UpAt returns the up vector at fraction f of the arc length.
func (s *Spline) UpAt(f float64) geom.Vec3 {
	return s.UpAtDistance(f * s.ArcLength())
}

// Frame is an orthonormal local frame on the curve.
type Frame struct {
	Position geom.Vec3
	Forward  geom.Vec3
	Up       geom.Vec3
	Right    geom.Vec3
}

// FrameAtDistance returns the local frame d units along the curve, with
// Right = Forward × Up.
func (s *Spline) FrameAtDistance(d float64) Frame {
	f := Frame{
		Position: s.PointAtDistance(d),
		Forward:  s.DirectionAtDistance(d),
		Up:       geom.Normalize(s.UpAtDistance(d)),
	}
	f.Right = geom.Normalize(f.Forward.Cross(f.Up))
	return f
}

func (s *Spline) firstAnchor() geom.Vec3 {
	if len(s.points) == 0 {
		return geom.Zero
	}
	return s.points[0].Anchor()
}

// Settings returns the name of the generation settings assigned to s, or "".
func (s *Spline) Settings() string { return s.settings }

// SetSettings assigns generation settings by name and resets the per-asset
// active flags to all true for assets slots.
func (s *Spline) SetSettings(name string, assets int) {
	s.settings = name
	s.active = make([]bool, assets)
	for i := range s.active {
		s.active[i] = true
	}
}

// IsActive reports whether asset slot i is enabled. Slots without a flag
// are enabled.
func (s *Spline) IsActive(i int) bool {
	if i < 0 || i >= len(s.active) {
		return true
	}
	return s.active[i]
}

// SetActive enables or disables asset slot i.
func (s *Spline) SetActive(i int, on bool) {
	if i < 0 {
		return
	}
	for len(s.active) <= i {
		s.active = append(s.active, true)
	}
	s.active[i] = on
}

// ActiveFlags returns a copy of the per-asset flags.
func (s *Spline) ActiveFlags() []bool {
	return append([]bool(nil), s.active...)
}

// RestoreSettings sets the settings name and active flags verbatim, as
// read from a saved document.
func (s *Spline) RestoreSettings(name string, active []bool) {
	s.settings = name
	s.active = append([]bool(nil), active...)
}
