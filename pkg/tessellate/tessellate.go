// Package tessellate extrudes polygonal tubes along splines. One mesh is
// produced per active mesh template of each spline's settings.
package tessellate

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

var (
	ErrInvalidTemplate = errors.New("tessellate: invalid mesh template")
	ErrSplineTooShort  = errors.New("tessellate: spline shorter than one segment")
)

// ringTolerance keeps float noise in the arc length from adding a ring.
const ringTolerance = 1e-6

// RingCount returns the number of rings sampled along a curve of length l
// with rings every segment units.
func RingCount(l, segment float64) int {
	return int(math.Ceil(l/segment-ringTolerance)) + 1
}

// Extrude builds a tube around s from template m.
//
// Rings are sampled every m.Length units of arc length, the last one clamped
// to the end of the curve. Vertex (ring r, side j) is at index j*rings + r.
// Without smooth edges every side column is stored twice so neighbouring
// faces get separate normals. Caps add one copy of the first and of the last
// ring, fanned from their first vertex.
func Extrude(s *spline.Spline, m settings.MeshTemplate) (*kernel.Mesh, error) {
	if m.Sides < 3 {
		return nil, fmt.Errorf("tessellate: %d sides: %w", m.Sides, ErrInvalidTemplate)
	}
	if m.Length <= 0 || math.IsNaN(m.Length) {
		return nil, fmt.Errorf("tessellate: segment length %g: %w", m.Length, ErrInvalidTemplate)
	}
	if s.Len() < 2 {
		return nil, fmt.Errorf("tessellate: %q: %w", s.Name, spline.ErrTooFewPoints)
	}
	l := s.ArcLength()
	if l < m.Length {
		return nil, fmt.Errorf("tessellate: %q is %g long, segment %g: %w", s.Name, l, m.Length, ErrSplineTooShort)
	}

	sides := m.Sides
	rings := RingCount(l, m.Length)
	columns := sides
	if !m.SmoothEdges {
		columns = 2 * sides
	}
	capVerts := 0
	if m.Cap {
		capVerts = 2 * sides
	}

	mesh := &kernel.Mesh{
		Vertices: make([]float32, (rings*columns+capVerts)*3),
		PartName: s.Name,
	}

	step := 360 / float64(sides)
	for r := 0; r < rings; r++ {
		f := s.FrameAtDistance(math.Min(float64(r)*m.Length, l))
		for j := 0; j < sides; j++ {
			sin, cos := math.Sincos(geom.Radians(step*float64(j) + m.Rotation))
			v := f.Position.
				Add(f.Right.MulScalar(sin*m.Scale.X + m.Offset.X)).
				Add(f.Up.MulScalar(cos*m.Scale.Y + m.Offset.Y))
			mesh.SetVertex(j*rings+r, v)
			if !m.SmoothEdges {
				mesh.SetVertex((sides+j)*rings+r, v)
			}
		}
	}

	vs := rings * columns
	if m.Cap {
		for j := 0; j < sides; j++ {
			mesh.SetVertex(vs+j, mesh.Vertex(j*rings))
			mesh.SetVertex(vs+sides+j, mesh.Vertex((j+1)*rings-1))
		}
	}

	mesh.Indices = make([]uint32, 0, (rings-1)*sides*6+2*(sides-2)*3)
	for r := 0; r < rings-1; r++ {
		for j := 0; j < sides; j++ {
			off := 1
			if j == sides-1 {
				off = 1 - sides
			}
			if !m.SmoothEdges {
				off += sides
			}
			a := uint32(j*rings + r)
			b := uint32((j+off)*rings + r)
			mesh.AddTriangle(a+1, a, b)
			mesh.AddTriangle(a+1, b, b+1)
		}
	}
	if m.Cap {
		start, end := uint32(vs), uint32(vs+sides)
		for k := uint32(0); k < uint32(sides-2); k++ {
			mesh.AddTriangle(start+1+k, start, start+2+k)
		}
		for k := uint32(0); k < uint32(sides-2); k++ {
			mesh.AddTriangle(end, end+1+k, end+2+k)
		}
	}

	mesh.RecalculateNormals()
	return mesh, nil
}

// Tessellate extrudes every active mesh template of every spline that has
// settings, in spline order. Meshes are named "<spline>/<NN>-<template>".
// The network is only read.
func Tessellate(net *network.Network, lib *settings.Library) ([]*kernel.Mesh, error) {
	if net == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, s := range net.Splines() {
		if s.Settings() == "" {
			continue
		}
		set, err := lib.Get(s.Settings())
		if err != nil {
			return nil, fmt.Errorf("tessellate: spline %q: %w", s.Name, err)
		}
		for i, tmpl := range set.Meshes {
			if !s.IsActive(i) {
				continue
			}
			mesh, err := Extrude(s, tmpl)
			if err != nil {
				return nil, fmt.Errorf("tessellate: spline %q slot %d: %w", s.Name, i, err)
			}
			mesh.PartName = s.Name + "/" + set.SlotName(i)
			meshes = append(meshes, mesh)
		}
	}
	return meshes, nil
}
