// Package kernel defines the geometry buffers exchanged between the
// generators and the output backends. Generators produce Meshes; backends
// (sdfx) write them to files and build stand-in shapes for placed objects.
// The interfaces let backends be swapped without touching the generators.
package kernel

import "github.com/chazu/tangent/pkg/geom"

// Exporter writes meshes to a file.
type Exporter interface {
	Export(path string, meshes []*Mesh) error
}

// Shaper builds closed meshes for simple solids. They stand in for
// externally instanced objects when previewing placements.
type Shaper interface {
	// Box returns a box of the given size centered on the origin.
	Box(size geom.Vec3) (*Mesh, error)
	// Cylinder returns a cylinder along Y centered on the origin.
	Cylinder(height, radius float64) (*Mesh, error)
}
