// Package placement computes transforms for instancing external objects
// along splines. It only produces data; creating, moving and destroying the
// instances is the caller's job (see Reconcile).
package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/kernel"
	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/settings"
	"github.com/chazu/tangent/pkg/spline"
)

var ErrInvalidTemplate = errors.New("placement: invalid placement template")

// endTolerance keeps float noise in the arc length from adding a placement
// at the end bound.
const endTolerance = 1e-6

// minStep is the smallest fraction of the spacing a global-distance
// correction may advance by.
const minStep = 0.5

// Placement is the transform of one instance.
type Placement struct {
	Position geom.Vec3 `yaml:"position"`
	Rotation geom.Quat `yaml:"rotation"`
	Scale    geom.Vec3 `yaml:"scale"`
	// Distance is the arc length at which the instance was sampled.
	Distance float64 `yaml:"distance"`
}

// Place walks s from t.Offset to ArcLength-t.Offset in steps of t.Spacing
// and returns one transform per step.
//
// Under GlobalDistance every step after the first is corrected once so that
// the straight-line distance to the previous instance, rather than the arc
// length between them, matches the spacing. A correction that would advance
// less than half the spacing is skipped and the plain step is taken.
func Place(s *spline.Spline, t settings.PlacementTemplate) ([]Placement, error) {
	if !(t.Spacing > 0) {
		return nil, fmt.Errorf("placement: spacing %g: %w", t.Spacing, ErrInvalidTemplate)
	}
	if t.Type != settings.ArcDistance && t.Type != settings.GlobalDistance {
		return nil, fmt.Errorf("placement: offset type %q: %w", t.Type, ErrInvalidTemplate)
	}
	if s.Len() < 2 {
		return nil, fmt.Errorf("placement: %q: %w", s.Name, spline.ErrTooFewPoints)
	}

	end := s.ArcLength() - t.Offset - endTolerance
	extra := t.RotationQuat()

	var out []Placement
	for d := t.Offset; d < end; d += t.Spacing {
		p := sample(s, t, d)
		if t.Type == settings.GlobalDistance && len(out) > 0 {
			prev := out[len(out)-1]
			// Outside a tight bend the chord can be far longer than the
			// spacing. Such corrections would stall the walk.
			if c := d + t.Spacing - geom.Distance(prev.Position, p.Position); c >= prev.Distance+minStep*t.Spacing {
				d = c
				if d >= end {
					break
				}
				p = sample(s, t, d)
			}
		}
		p.Rotation = p.Rotation.Mul(extra)
		out = append(out, p)
	}
	return out, nil
}

// sample returns the placement at distance d, with only the curve-derived
// rotation applied.
func sample(s *spline.Spline, t settings.PlacementTemplate, d float64) Placement {
	f := s.FrameAtDistance(d)
	pos := f.Position.
		Add(f.Right.MulScalar(t.Position.X)).
		Add(f.Up.MulScalar(t.Position.Y))
	rot := geom.EulerAngles(f.Up, f.Forward).Mask(t.Constraints).Quat()
	return Placement{
		Position: pos,
		Rotation: rot,
		Scale:    t.Scale,
		Distance: d,
	}
}

// Set is the placements of one placer slot on one spline.
type Set struct {
	Spline     string      `yaml:"spline"`
	Name       string      `yaml:"name"` // "NN-name", NN is the asset slot
	Object     string      `yaml:"object"`
	Placements []Placement `yaml:"placements"`
}

// PlaceAll runs every active placer of every spline that has settings.
// Placers without an object are skipped.
func PlaceAll(net *network.Network, lib *settings.Library) ([]Set, error) {
	if net == nil {
		return nil, nil
	}

	var sets []Set
	for _, s := range net.Splines() {
		if s.Settings() == "" {
			continue
		}
		set, err := lib.Get(s.Settings())
		if err != nil {
			return nil, fmt.Errorf("placement: spline %q: %w", s.Name, err)
		}
		for j, tmpl := range set.Placers {
			slot := len(set.Meshes) + j
			if !s.IsActive(slot) || tmpl.Object == "" {
				continue
			}
			ps, err := Place(s, tmpl)
			if err != nil {
				return nil, fmt.Errorf("placement: spline %q slot %d: %w", s.Name, slot, err)
			}
			sets = append(sets, Set{
				Spline:     s.Name,
				Name:       set.SlotName(slot),
				Object:     tmpl.Object,
				Placements: ps,
			})
		}
	}
	return sets, nil
}

// Reconcile returns how many instances must be created and how many
// destroyed to go from existing instances to want.
func Reconcile(existing, want int) (create, destroy int) {
	if want > existing {
		return want - existing, 0
	}
	return 0, existing - want
}

// Proxies instances shape at every placement of set and merges the copies
// into one mesh named "<spline>/<slot>".
func Proxies(shape *kernel.Mesh, set Set) *kernel.Mesh {
	parts := make([]*kernel.Mesh, 0, len(set.Placements))
	for _, p := range set.Placements {
		parts = append(parts, shape.Transformed(p.Position, p.Rotation, p.Scale))
	}
	return kernel.Merge(set.Spline+"/"+set.Name, parts...)
}

// Spacings returns the straight-line distances between consecutive
// placements.
func Spacings(ps []Placement) []float64 {
	if len(ps) < 2 {
		return nil
	}
	out := make([]float64, len(ps)-1)
	for i := 1; i < len(ps); i++ {
		out[i-1] = geom.Distance(ps[i-1].Position, ps[i].Position)
	}
	return out
}

// MaxDeviation returns the largest absolute difference between any spacing
// and want.
func MaxDeviation(spacings []float64, want float64) float64 {
	var m float64
	for _, s := range spacings {
		m = math.Max(m, math.Abs(s-want))
	}
	return m
}
