// Package network owns a set of splines and the junctions between them.
//
// A junction is a group of control points, possibly on different splines,
// that share one anchor position. Membership is the junction id stored on
// each point; the network keeps the members of each id in join order so
// neighbours can be walked. Groups never reference each other, so the
// structure is a partition of points, not a graph with cycles.
package network

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/spline"
)

var (
	ErrJunctionConflict = errors.New("network: both points already belong to different junctions")
	ErrUnknownSpline    = errors.New("network: unknown spline")
	ErrUnknownPoint     = errors.New("network: unknown control point")
	ErrSamePoint        = errors.New("network: cannot connect a point to itself")
)

// PointRef addresses control point Index of spline Spline.
type PointRef struct {
	Spline int
	Index  int
}

func (r PointRef) String() string {
	return fmt.Sprintf("%d:%d", r.Spline, r.Index)
}

// Network is the owning container of splines and their junctions.
// It is not safe for concurrent use.
type Network struct {
	splines      []*spline.Spline
	groups       map[int][]*spline.ControlPoint
	nextJunction int
	log          *slog.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithLogger sets the logger used to report rejected edits.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) { n.log = l }
}

// New returns an empty network.
func New(opts ...Option) *Network {
	n := &Network{
		groups: make(map[int][]*spline.ControlPoint),
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Len returns the number of splines.
func (n *Network) Len() int { return len(n.splines) }

// Spline returns spline i, or nil.
func (n *Network) Spline(i int) *spline.Spline {
	if i < 0 || i >= len(n.splines) {
		return nil
	}
	return n.splines[i]
}

// Splines returns the splines in order.
func (n *Network) Splines() []*spline.Spline {
	return append([]*spline.Spline(nil), n.splines...)
}

func defaultName(i int) string {
	return fmt.Sprintf("Spline_%02d", i)
}

// AddSpline creates a two-point spline at anchor heading along forward and
// returns its index.
func (n *Network) AddSpline(anchor, forward geom.Vec3) int {
	s := spline.New(anchor, forward)
	s.Name = defaultName(len(n.splines))
	n.splines = append(n.splines, s)
	return len(n.splines) - 1
}

// Attach adds an existing spline. Junction ids already on its points are
// kept; call Reindex once every spline is attached.
func (n *Network) Attach(s *spline.Spline) (int, error) {
	if s.Len() < 2 {
		return 0, fmt.Errorf("network: attach %q: %w", s.Name, spline.ErrTooFewPoints)
	}
	if s.Name == "" {
		s.Name = defaultName(len(n.splines))
	}
	n.splines = append(n.splines, s)
	return len(n.splines) - 1, nil
}

// Point resolves a reference.
func (n *Network) Point(r PointRef) (*spline.ControlPoint, error) {
	s := n.Spline(r.Spline)
	if s == nil {
		return nil, fmt.Errorf("network: spline %d: %w", r.Spline, ErrUnknownSpline)
	}
	p := s.Point(r.Index)
	if p == nil {
		return nil, fmt.Errorf("network: point %s: %w", r, ErrUnknownPoint)
	}
	return p, nil
}

// Locate returns the reference of p.
func (n *Network) Locate(p *spline.ControlPoint) (PointRef, bool) {
	for si, s := range n.splines {
		if i := s.IndexOf(p); i >= 0 {
			return PointRef{Spline: si, Index: i}, true
		}
	}
	return PointRef{}, false
}

// Connect joins a and b into one junction.
//
// If neither point is in a junction a new one is created; if one is, the
// other joins it. The joining point's anchor snaps to the junction's anchor.
// Two points in different junctions are never merged: the edit is logged
// and rejected with ErrJunctionConflict, leaving both junctions unchanged.
// Connecting two points of the same junction is a no-op.
func (n *Network) Connect(a, b PointRef) error {
	pa, err := n.Point(a)
	if err != nil {
		return err
	}
	pb, err := n.Point(b)
	if err != nil {
		return err
	}
	if pa == pb {
		return fmt.Errorf("network: connect %s: %w", a, ErrSamePoint)
	}

	ja, jb := pa.Junction(), pb.Junction()
	switch {
	case ja >= 0 && jb >= 0:
		if ja == jb {
			return nil
		}
		n.log.Warn("network: cannot connect two junctions", "a", a, "b", b, "junction_a", ja, "junction_b", jb)
		return fmt.Errorf("network: connect %s and %s: %w", a, b, ErrJunctionConflict)
	case ja >= 0:
		n.join(ja, pb)
	case jb >= 0:
		n.join(jb, pa)
	default:
		id := n.nextJunction
		n.nextJunction++
		pa.SetJunction(id)
		n.groups[id] = []*spline.ControlPoint{pa}
		n.join(id, pb)
	}
	return nil
}

func (n *Network) join(id int, p *spline.ControlPoint) {
	members := n.groups[id]
	p.SetAnchor(members[0].Anchor())
	p.SetJunction(id)
	n.groups[id] = append(members, p)
}

// members returns the junction members of p, or p alone.
func (n *Network) members(p *spline.ControlPoint) []*spline.ControlPoint {
	if id := p.Junction(); id >= 0 {
		if g := n.groups[id]; len(g) > 0 {
			return g
		}
	}
	return []*spline.ControlPoint{p}
}

// SetAnchor moves the anchor of r, and of every point sharing its junction.
func (n *Network) SetAnchor(r PointRef, pos geom.Vec3) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	for _, m := range n.members(p) {
		m.SetAnchor(pos)
	}
	return nil
}

// Neighbor returns the junction member offset steps from r in join order.
// When r has no junction, or the offset falls outside it, r itself is
// returned.
func (n *Network) Neighbor(r PointRef, offset int) (PointRef, error) {
	p, err := n.Point(r)
	if err != nil {
		return r, err
	}
	g := n.members(p)
	at := indexOf(g, p) + offset
	if at < 0 || at >= len(g) {
		return r, nil
	}
	if ref, ok := n.Locate(g[at]); ok {
		return ref, nil
	}
	return r, nil
}

// Members returns the points of junction id in join order.
func (n *Network) Members(id int) []PointRef {
	var refs []PointRef
	for _, p := range n.groups[id] {
		if ref, ok := n.Locate(p); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// GroupSize returns the number of points in junction id.
func (n *Network) GroupSize(id int) int {
	return len(n.groups[id])
}

// IndexInGroup returns the position of r within its junction, or -1.
func (n *Network) IndexInGroup(r PointRef) int {
	p, err := n.Point(r)
	if err != nil || p.Junction() < 0 {
		return -1
	}
	return indexOf(n.groups[p.Junction()], p)
}

// Junctions returns the ids of all junctions in ascending order.
func (n *Network) Junctions() []int {
	ids := make([]int, 0, len(n.groups))
	for id := range n.groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RotateGroup applies the rotation q to the handles and up vectors of r and
// every point sharing its junction. Anchors do not move.
func (n *Network) RotateGroup(r PointRef, q geom.Quat) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	for _, m := range n.members(p) {
		m.SetRotation(q.Mul(m.Rotation()))
	}
	return nil
}

// SetGroupRotation gives r the absolute orientation q and carries the rest
// of its junction along rigidly.
func (n *Network) SetGroupRotation(r PointRef, q geom.Quat) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	return n.RotateGroup(r, q.Mul(p.Rotation().Inverse()))
}

// ScaleGroup scales the handles of r and every point sharing its junction
// component-wise. Negative components are clamped to zero.
func (n *Network) ScaleGroup(r PointRef, scale geom.Vec3) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	scale = geom.ClampNonNegative(scale)
	for _, m := range n.members(p) {
		m.Scale(scale)
	}
	return nil
}

// Disconnect removes r from its junction. A junction left with a single
// member is dissolved.
func (n *Network) Disconnect(r PointRef) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	n.disconnect(p)
	return nil
}

func (n *Network) disconnect(p *spline.ControlPoint) {
	id := p.Junction()
	if id < 0 {
		return
	}
	g := n.groups[id]
	if i := indexOf(g, p); i >= 0 {
		g = append(g[:i:i], g[i+1:]...)
	}
	p.SetJunction(spline.NoJunction)
	switch len(g) {
	case 0:
		delete(n.groups, id)
	case 1:
		g[0].SetJunction(spline.NoJunction)
		delete(n.groups, id)
	default:
		n.groups[id] = g
	}
}

// RemovePoint disconnects r and removes it from its spline. A spline left
// with a single point loses that point too and is removed from the network.
func (n *Network) RemovePoint(r PointRef) error {
	p, err := n.Point(r)
	if err != nil {
		return err
	}
	n.disconnect(p)
	s := n.splines[r.Spline]
	if err := s.RemoveControlPoint(r.Index); err != nil {
		return fmt.Errorf("network: remove %s: %w", r, err)
	}
	if s.Len() == 1 {
		n.disconnect(s.Point(0))
		if err := s.RemoveControlPoint(0); err != nil {
			return fmt.Errorf("network: remove %s: %w", r, err)
		}
	}
	if s.Len() == 0 {
		n.splines = append(n.splines[:r.Spline], n.splines[r.Spline+1:]...)
	}
	return nil
}

// RemoveSpline removes spline i and all of its junction memberships.
func (n *Network) RemoveSpline(i int) error {
	s := n.Spline(i)
	if s == nil {
		return fmt.Errorf("network: remove spline %d: %w", i, ErrUnknownSpline)
	}
	for _, p := range s.Points() {
		n.disconnect(p)
	}
	n.splines = append(n.splines[:i], n.splines[i+1:]...)
	return nil
}

// Branch starts a new spline at r, heading along r's outgoing handle, and
// connects its first point to r. It returns the new spline's index.
func (n *Network) Branch(r PointRef) (int, error) {
	p, err := n.Point(r)
	if err != nil {
		return 0, err
	}
	i := n.AddSpline(p.Anchor(), p.RelativeHandle(1))
	if err := n.Connect(r, PointRef{Spline: i, Index: 0}); err != nil {
		n.splines = n.splines[:i]
		return 0, err
	}
	return i, nil
}

// Rebuild brings every spline's arc-length table up to date. Call it once
// after a batch of junction edits rather than per member.
func (n *Network) Rebuild() {
	for _, s := range n.splines {
		s.Rebuild()
	}
}

// Reindex rebuilds junction groups from the ids stored on the points, as
// after loading a saved network. Members are ordered by spline then point
// index; ids with a single point are dissolved.
func (n *Network) Reindex() {
	n.groups = make(map[int][]*spline.ControlPoint)
	n.nextJunction = 0
	for _, s := range n.splines {
		for _, p := range s.Points() {
			if id := p.Junction(); id >= 0 {
				n.groups[id] = append(n.groups[id], p)
			}
		}
	}
	for id, g := range n.groups {
		if len(g) < 2 {
			g[0].SetJunction(spline.NoJunction)
			delete(n.groups, id)
			continue
		}
		if id >= n.nextJunction {
			n.nextJunction = id + 1
		}
		anchor := g[0].Anchor()
		for _, p := range g[1:] {
			if p.Anchor() != anchor {
				p.SetAnchor(anchor)
			}
		}
	}
}

func indexOf(g []*spline.ControlPoint, p *spline.ControlPoint) int {
	for i, q := range g {
		if q == p {
			return i
		}
	}
	return -1
}
