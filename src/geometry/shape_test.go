package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framechain/src/render"
)

func TestVertexCounts(t *testing.T) {
	for _, tc := range []struct {
		shape Shape
		want  uint32
	}{
		{Triangle{}, 3},
		{Quad{Size: 2}, 6},
		{Cube{Size: 1}, 36},
		// 2 pole bands of 4 triangles, 1 middle band of 4 quads
		{Sphere{Radius: 1, Stacks: 3, Slices: 4}, 3*4 + 3*4 + 6*4},
		{Sphere{Radius: 1}, 3*3 + 3*3},
	} {
		m := NewMesh(tc.shape)
		assert.Equal(t, tc.want, m.VertexCount(), tc.shape.Name())
		assert.Zero(t, m.VertexCount()%3, tc.shape.Name())
		assert.Equal(t, render.TopologyTriangleList, m.Topology())
	}
}

func TestBounds(t *testing.T) {
	lo, hi := NewMesh(Cube{Size: 2}).Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, hi)

	lo, hi = NewMesh(Quad{}).Bounds()
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, 0}, lo)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0}, hi)
}

func TestSpherePointsOnSurface(t *testing.T) {
	for _, p := range (Sphere{Radius: 2, Stacks: 8, Slices: 8}).Points() {
		assert.InDelta(t, 2, p.Len(), 1e-5)
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"cube", "quad", "sphere", "triangle"}, Names())
	for _, name := range Names() {
		s, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
		assert.NotEmpty(t, s.Points())
	}

	_, err := Lookup("torus")
	assert.ErrorContains(t, err, `unknown shape "torus"`)
}
