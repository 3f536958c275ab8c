package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"framechain/src/render"
)

// Mesh is a Shape expanded once, ready to hand to the renderer.
type Mesh struct {
	name   string
	points []mgl32.Vec3
	topo   render.Topology
}

var _ render.Geometry = (*Mesh)(nil)

// NewMesh expands s.
func NewMesh(s Shape) *Mesh {
	return &Mesh{name: s.Name(), points: s.Points(), topo: s.Topology()}
}

func (m *Mesh) Name() string              { return m.name }
func (m *Mesh) Points() []mgl32.Vec3      { return m.points }
func (m *Mesh) VertexCount() uint32       { return uint32(len(m.points)) }
func (m *Mesh) Topology() render.Topology { return m.topo }

// Bounds returns the corners of the axis aligned box around the points.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.points) == 0 {
		return lo, hi
	}
	lo, hi = m.points[0], m.points[0]
	for _, p := range m.points[1:] {
		for i := range p {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}
