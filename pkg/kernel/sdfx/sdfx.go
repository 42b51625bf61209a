// Package sdfx implements the kernel interfaces using the
// github.com/deadsy/sdfx SDF-based CAD library: stand-in solids are meshed
// with marching cubes and meshes are written as binary STL.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/tangent/pkg/geom"
	"github.com/chazu/tangent/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Exporter = (*Backend)(nil)
	_ kernel.Shaper   = (*Backend)(nil)
)

// defaultMeshCells controls marching cubes resolution for stand-in solids.
const defaultMeshCells = 32

var ErrNoTriangles = errors.New("sdfx: nothing to export")

// Backend meshes stand-in solids and exports STL files.
type Backend struct {
	// Cells is the marching cubes resolution along the longest axis.
	Cells int
}

// New returns a Backend with the default resolution.
func New() *Backend {
	return &Backend{Cells: defaultMeshCells}
}

// Box returns a box mesh of the given size centered on the origin.
func (b *Backend) Box(size geom.Vec3) (*kernel.Mesh, error) {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %v: %w", size, err)
	}
	return b.toMesh(s), nil
}

// Cylinder returns a cylinder mesh along Y centered on the origin.
func (b *Backend) Cylinder(height, radius float64) (*kernel.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder h=%g r=%g: %w", height, radius, err)
	}
	// sdfx cylinders run along Z.
	return b.toMesh(sdf.Transform3D(s, sdf.RotateX(math.Pi/2))), nil
}

// toMesh converts a solid to a triangle mesh using marching cubes.
func (b *Backend) toMesh(s sdf.SDF3) *kernel.Mesh {
	cells := b.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for _, tri := range triangles {
		// Face normal per corner; marching cubes output shares no vertices.
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			i := m.AddVertex(tri[j])
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, i)
		}
	}
	return m
}

// Triangles flattens indexed meshes into sdfx triangles.
func Triangles(meshes ...*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		for t := 0; t+2 < len(m.Indices); t += 3 {
			tri := sdf.Triangle3{
				vec(m, m.Indices[t]),
				vec(m, m.Indices[t+1]),
				vec(m, m.Indices[t+2]),
			}
			out = append(out, &tri)
		}
	}
	return out
}

func vec(m *kernel.Mesh, i uint32) v3.Vec {
	return m.Vertex(int(i))
}

// Export writes every mesh into one binary STL file at path.
func (b *Backend) Export(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes...)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: export %s: %w", path, ErrNoTriangles)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: export %s: %w", path, err)
	}
	return nil
}
