// Package settings holds the templates that parameterize mesh generation and
// object placement, grouped into named Settings bundles.
//
// Templates are plain values; a generation pass reads them and never keeps
// them. Settings are loaded from YAML and referenced from splines by name.
package settings

import (
	"errors"
	"fmt"

	"github.com/chazu/tangent/pkg/geom"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("settings: not found")

// MeshTemplate configures an extruded tube along a spline.
type MeshTemplate struct {
	Name        string    `yaml:"name,omitempty"`
	Length      float64   `yaml:"length"` // arc length between rings
	Sides       int       `yaml:"sides"`
	SmoothEdges bool      `yaml:"smoothEdges"`
	Rotation    float64   `yaml:"rotation"` // degrees added to every ring angle
	Scale       geom.Vec2 `yaml:"scale"`
	Offset      geom.Vec2 `yaml:"offset"`
	Cap         bool      `yaml:"cap"`
}

// DefaultMeshTemplate returns the template used for missing fields.
func DefaultMeshTemplate() MeshTemplate {
	return MeshTemplate{
		Length: 0.1,
		Sides:  3,
		Scale:  geom.Vec2{X: 1, Y: 1},
		Cap:    true,
	}
}

func (m *MeshTemplate) UnmarshalYAML(n *yaml.Node) error {
	type raw MeshTemplate
	r := raw(DefaultMeshTemplate())
	if err := n.Decode(&r); err != nil {
		return err
	}
	*m = MeshTemplate(r)
	return nil
}

// OffsetType selects how placement spacing is measured.
type OffsetType string

const (
	// ArcDistance spaces instances by distance along the curve.
	ArcDistance OffsetType = "arc-distance"
	// GlobalDistance spaces instances by straight-line distance.
	GlobalDistance OffsetType = "global-distance"
)

// PlacementTemplate configures instancing of an external object along a
// spline.
type PlacementTemplate struct {
	Name     string     `yaml:"name,omitempty"`
	Object   string     `yaml:"object"`   // identity of the instanced object
	Position geom.Vec2  `yaml:"position"` // offset along right (X) and up (Y)
	Spacing  float64    `yaml:"distance"`
	Offset   float64    `yaml:"offset"` // distance kept free at both ends
	Type     OffsetType `yaml:"type"`
	Rotation geom.Vec3  `yaml:"rotation"` // Euler degrees (pitch, yaw, roll)
	Scale    geom.Vec3  `yaml:"scale"`
	// Constraints enables the curve-derived pitch, yaw and roll.
	Constraints [3]bool `yaml:"constraints,flow"`
}

// DefaultPlacementTemplate returns the template used for missing fields.
func DefaultPlacementTemplate() PlacementTemplate {
	return PlacementTemplate{
		Spacing:     0.1,
		Type:        ArcDistance,
		Scale:       geom.One,
		Constraints: [3]bool{true, true, true},
	}
}

func (p *PlacementTemplate) UnmarshalYAML(n *yaml.Node) error {
	type raw PlacementTemplate
	r := raw(DefaultPlacementTemplate())
	if err := n.Decode(&r); err != nil {
		return err
	}
	*p = PlacementTemplate(r)
	return nil
}

// RotationQuat returns the template's explicit rotation.
func (p PlacementTemplate) RotationQuat() geom.Quat {
	return geom.EulerQuat(p.Rotation.X, p.Rotation.Y, p.Rotation.Z)
}

// Settings is a named bundle of generated meshes and object placers. Asset
// slot i addresses Meshes[i] when i < len(Meshes) and Placers after that.
type Settings struct {
	Name    string              `yaml:"name"`
	Meshes  []MeshTemplate      `yaml:"generated,omitempty"`
	Placers []PlacementTemplate `yaml:"placers,omitempty"`
}

// AssetCount returns the number of asset slots.
func (s *Settings) AssetCount() int {
	return len(s.Meshes) + len(s.Placers)
}

// AssetName returns the display name of asset slot i, or "" when out of
// range. Unnamed meshes are "Generated Mesh NN"; unnamed placers take the
// name of their object.
func (s *Settings) AssetName(i int) string {
	switch {
	case i < 0:
		return ""
	case i < len(s.Meshes):
		if n := s.Meshes[i].Name; n != "" {
			return n
		}
		return fmt.Sprintf("Generated Mesh %02d", i)
	case i < s.AssetCount():
		p := s.Placers[i-len(s.Meshes)]
		if p.Name != "" {
			return p.Name
		}
		return p.Object
	}
	return ""
}

// AssetNames returns the names of every slot in order.
func (s *Settings) AssetNames() []string {
	names := make([]string, s.AssetCount())
	for i := range names {
		names[i] = s.AssetName(i)
	}
	return names
}

// SlotName returns the zero-padded slot label "NN-name" used to name
// generated content.
func (s *Settings) SlotName(i int) string {
	return fmt.Sprintf("%02d-%s", i, s.AssetName(i))
}
