// Package store saves and loads spline networks as YAML documents. Every
// control point attribute is written verbatim, so a save/load round trip
// reproduces the network exactly.
//
// Join order is not stored. Junction members of a loaded network are ordered
// by spline, then point index, so Network.Neighbor may walk them differently
// than before saving.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/network"
	"github.com/chazu/tangent/pkg/spline"
	"gopkg.in/yaml.v3"
)

// Version is the document format written by Encode.
const Version = 1

var ErrVersion = errors.New("store: unsupported document version")

// Document is the on-disk layout of a network.
type Document struct {
	Version int      `yaml:"version"`
	Splines []Spline `yaml:"splines"`
}

type Spline struct {
	Name     string  `yaml:"name"`
	Settings string  `yaml:"settings,omitempty"`
	Active   []bool  `yaml:"active,omitempty,flow"`
	Points   []Point `yaml:"points"`
}

type Point struct {
	Anchor   geom.Vec3    `yaml:"anchor,flow"`
	Handles  [2]geom.Vec3 `yaml:"handles,flow"`
	Up       geom.Vec3    `yaml:"up,flow"`
	Mode     string       `yaml:"mode"`
	Junction int          `yaml:"junction"`
}

// FromNetwork captures n as a document.
func FromNetwork(n *network.Network) *Document {
	d := &Document{Version: Version}
	for _, s := range n.Splines() {
		sd := Spline{
			Name:     s.Name,
			Settings: s.Settings(),
			Active:   s.ActiveFlags(),
		}
		for _, p := range s.Points() {
			st := p.State()
			sd.Points = append(sd.Points, Point{
				Anchor:   st.Anchor,
				Handles:  st.Handles,
				Up:       st.Up,
				Mode:     st.Mode.String(),
				Junction: st.Junction,
			})
		}
		d.Splines = append(d.Splines, sd)
	}
	return d
}

// Network rebuilds the network described by d. Junction groups are
// recovered from the ids stored on the points.
func (d *Document) Network(opts ...network.Option) (*network.Network, error) {
	if d.Version != Version {
		return nil, fmt.Errorf("store: version %d: %w", d.Version, ErrVersion)
	}
	n := network.New(opts...)
	for i, sd := range d.Splines {
		points := make([]*spline.ControlPoint, 0, len(sd.Points))
		for j, pd := range sd.Points {
			mode, err := spline.ParseMode(pd.Mode)
			if err != nil {
				return nil, fmt.Errorf("store: spline %d point %d: %w", i, j, err)
			}
			points = append(points, spline.FromState(spline.PointState{
				Anchor:   pd.Anchor,
				Handles:  pd.Handles,
				Up:       pd.Up,
				Mode:     mode,
				Junction: pd.Junction,
			}))
		}
		s, err := spline.FromPoints(points...)
		if err != nil {
			return nil, fmt.Errorf("store: spline %d (%q): %w", i, sd.Name, err)
		}
		s.Name = sd.Name
		s.RestoreSettings(sd.Settings, sd.Active)
		if _, err := n.Attach(s); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
	}
	n.Reindex()
	return n, nil
}

// Encode writes n to w as YAML.
func Encode(w io.Writer, n *network.Network) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromNetwork(n)); err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	return enc.Close()
}

// Decode reads a network document from r.
func Decode(r io.Reader, opts ...network.Option) (*network.Network, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("store: parse: %w", err)
	}
	return d.Network(opts...)
}

// SaveFile writes n to path.
func SaveFile(path string, n *network.Network) error {
	var buf bytes.Buffer
	if err := Encode(&buf, n); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a network document from path.
func LoadFile(path string, opts ...network.Option) (*network.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	n, err := Decode(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
