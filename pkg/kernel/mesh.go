package kernel

import "github.com/chazu/aerogeom/pkg/geom"

// Cell records where a triangle came from. Eta and Xsi are the segment
// parameters at the triangle's parametric centroid.
type Cell struct {
	ComponentUID string  `json:"componentUID"`
	SegmentUID   string  `json:"segmentUID"`
	SegmentIndex int     `json:"segmentIndex"`
	Eta          float64 `json:"eta"`
	Xsi          float64 `json:"xsi"`
	OnTop        bool    `json:"onTop"`
	Mirrored     bool    `json:"mirrored"`
}

// Mesh is an indexed triangle mesh with one Cell per triangle.
// Vertices and Normals hold 3 floats per vertex, Indices 3 per triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float64 `json:"normals"`  // [nx0,ny0,nz0, ...], filled by ComputeNormals
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Cells    []Cell    `json:"cells"`
	PartName string    `json:"partName"` // component UID
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
	return len(m.Indices) == 0
}

// AddVertex appends p and returns its index.
func (m *Mesh) AddVertex(p geom.Point) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	return i
}

// AddTriangle appends triangle (a, b, c) tagged with cell.
func (m *Mesh) AddTriangle(a, b, c uint32, cell Cell) {
	m.Indices = append(m.Indices, a, b, c)
	m.Cells = append(m.Cells, cell)
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) geom.Point {
	return geom.P(m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2])
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c geom.Point) {
	return m.Vertex(m.Indices[3*i]), m.Vertex(m.Indices[3*i+1]), m.Vertex(m.Indices[3*i+2])
}

// Area sums the triangle areas.
func (m *Mesh) Area() float64 {
	var area float64
	for i := 0; i < m.TriangleCount(); i++ {
		area += geom.TriangleArea(m.Triangle(i))
	}
	return area
}

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() Box {
	b := EmptyBox()
	for i := 0; i < m.VertexCount(); i++ {
		b.Extend(m.Vertex(uint32(i)))
	}
	return b
}

// Append adds the triangles of o to m, renumbering its vertices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = nil // stale; recompute with ComputeNormals
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
	m.Cells = append(m.Cells, o.Cells...)
}

// Mirrored returns a copy of m reflected by t. The winding is reversed so
// the reflected normals still point outward, and every cell is marked as
// mirrored.
func (m *Mesh) Mirrored(t geom.Transform) *Mesh {
	out := &Mesh{
		Vertices: make([]float64, 0, len(m.Vertices)),
		Indices:  make([]uint32, 0, len(m.Indices)),
		Cells:    make([]Cell, len(m.Cells)),
		PartName: m.PartName,
	}
	for i := 0; i < m.VertexCount(); i++ {
		out.AddVertex(t.Apply(m.Vertex(uint32(i))))
	}
	for i := 0; i < len(m.Indices); i += 3 {
		out.Indices = append(out.Indices, m.Indices[i], m.Indices[i+2], m.Indices[i+1])
	}
	for i, c := range m.Cells {
		c.Mirrored = true
		out.Cells[i] = c
	}
	return out
}

// ComputeNormals fills Normals with area-weighted vertex normals. Vertices
// touched only by degenerate triangles get a zero normal.
func (m *Mesh) ComputeNormals() {
	acc := make([]geom.Point, m.VertexCount())
	for i := 0; i < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		a, b, c := m.Vertex(ia), m.Vertex(ib), m.Vertex(ic)
		n := b.Sub(a).Cross(c.Sub(a))
		acc[ia] = acc[ia].Add(n)
		acc[ib] = acc[ib].Add(n)
		acc[ic] = acc[ic].Add(n)
	}
	m.Normals = make([]float64, 0, len(m.Vertices))
	for _, n := range acc {
		u, err := n.Normalize()
		if err != nil {
			u = geom.Point{}
		}
		m.Normals = append(m.Normals, u.X, u.Y, u.Z)
	}
}
