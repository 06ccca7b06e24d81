// Package sdfx hands kernel meshes to the github.com/deadsy/sdfx renderers.
package sdfx

import (
	"errors"

	"github.com/chazu/aerogeom/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// ErrEmptyMesh is returned when there is nothing to write.
var ErrEmptyMesh = errors.New("sdfx: mesh has no triangles")

// Triangles converts m into sdfx triangles, one per mesh triangle, keeping
// the winding.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	n := m.TriangleCount()
	tris := make([]*sdf.Triangle3, 0, n)
	for i := 0; i < n; i++ {
		a, b, c := m.Triangle(i)
		tris = append(tris, &sdf.Triangle3{a.Vec(), b.Vec(), c.Vec()})
	}
	return tris
}

// SaveSTL writes m to path as binary STL. Facet normals are recomputed by
// the renderer from the winding.
func SaveSTL(path string, m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return ErrEmptyMesh
	}
	return render.SaveSTL(path, Triangles(m))
}
