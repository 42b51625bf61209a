package kernel

import (
	"math"

	"github.com/chazu/tangent/pkg/geom"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // spline and asset slot this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) geom.Vec3 {
	return geom.V(float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2]))
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) geom.Vec3 {
	return geom.V(float64(m.Normals[3*i]), float64(m.Normals[3*i+1]), float64(m.Normals[3*i+2]))
}

// AddVertex appends v and returns its index.
func (m *Mesh) AddVertex(v geom.Vec3) uint32 {
	m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	return uint32(m.VertexCount() - 1)
}

// AddTriangle appends a triangle by vertex index.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// SetVertex overwrites vertex i.
func (m *Mesh) SetVertex(i int, v geom.Vec3) {
	m.Vertices[3*i] = float32(v.X)
	m.Vertices[3*i+1] = float32(v.Y)
	m.Vertices[3*i+2] = float32(v.Z)
}

// RecalculateNormals sets each vertex normal to the normalized sum of the
// face normals of the triangles using it. Vertices shared between faces
// shade smoothly; duplicated vertices keep their faces' normals.
func (m *Mesh) RecalculateNormals() {
	acc := make([]geom.Vec3, m.VertexCount())
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		pa, pb, pc := m.Vertex(int(a)), m.Vertex(int(b)), m.Vertex(int(c))
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	m.Normals = make([]float32, 0, len(m.Vertices))
	for _, n := range acc {
		n = geom.Normalize(n)
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max geom.Vec3) {
	if m.IsEmpty() {
		return geom.Zero, geom.Zero
	}
	inf := math.Inf(1)
	min = geom.V(inf, inf, inf)
	max = geom.V(-inf, -inf, -inf)
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		min = geom.V(math.Min(min.X, v.X), math.Min(min.Y, v.Y), math.Min(min.Z, v.Z))
		max = geom.V(math.Max(max.X, v.X), math.Max(max.Y, v.Y), math.Max(max.Z, v.Z))
	}
	return min, max
}

// Transformed returns a copy of m scaled, then rotated, then moved to pos.
// Normals are recomputed.
func (m *Mesh) Transformed(pos geom.Vec3, rot geom.Quat, scale geom.Vec3) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: m.PartName,
	}
	for i := 0; i < m.VertexCount(); i++ {
		out.SetVertex(i, pos.Add(rot.Rotate(geom.Scale(m.Vertex(i), scale))))
	}
	out.RecalculateNormals()
	return out
}

// Merge concatenates meshes into one, offsetting indices.
func Merge(name string, meshes ...*Mesh) *Mesh {
	out := &Mesh{PartName: name}
	for _, m := range meshes {
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, m.Vertices...)
		if len(m.Normals) == len(m.Vertices) {
			out.Normals = append(out.Normals, m.Normals...)
		} else {
			out.Normals = append(out.Normals, make([]float32, len(m.Vertices))...)
		}
		for _, i := range m.Indices {
			out.Indices = append(out.Indices, base+i)
		}
	}
	return out
}
