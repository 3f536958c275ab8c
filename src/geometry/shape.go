// Package geometry provides the shapes the renderer can draw.
package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"framechain/src/render"
)

// Shape is a fixed mesh expanded to a flat list of points.
type Shape interface {
	Name() string
	Points() []mgl32.Vec3
	Topology() render.Topology
}

// Triangle is the single triangle the default shaders hard-code.
type Triangle struct{}

func (Triangle) Name() string { return "triangle" }

func (Triangle) Points() []mgl32.Vec3 {
	return []mgl32.Vec3{
		{0, -0.5, 0},
		{0.5, 0.5, 0},
		{-0.5, 0.5, 0},
	}
}

func (Triangle) Topology() render.Topology { return render.TopologyTriangleList }

// Quad is an axis aligned square in the z=0 plane, drawn as two triangles.
type Quad struct {
	Size float32
}

func (Quad) Name() string { return "quad" }

func (q Quad) Points() []mgl32.Vec3 {
	h := half(q.Size)
	a, b := mgl32.Vec3{-h, -h, 0}, mgl32.Vec3{h, -h, 0}
	c, d := mgl32.Vec3{h, h, 0}, mgl32.Vec3{-h, h, 0}
	return []mgl32.Vec3{a, b, c, c, d, a}
}

func (Quad) Topology() render.Topology { return render.TopologyTriangleList }

// Cube is centered on the origin, twelve triangles over six faces.
type Cube struct {
	Size float32
}

func (Cube) Name() string { return "cube" }

func (c Cube) Points() []mgl32.Vec3 {
	h := half(c.Size)
	corner := func(i int) mgl32.Vec3 {
		v := mgl32.Vec3{-h, -h, -h}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				v[axis] = h
			}
		}
		return v
	}
	faces := [6][4]int{
		{0, 1, 3, 2}, // -z
		{4, 6, 7, 5}, // +z
		{0, 4, 5, 1}, // -y
		{2, 3, 7, 6}, // +y
		{0, 2, 6, 4}, // -x
		{1, 5, 7, 3}, // +x
	}
	points := make([]mgl32.Vec3, 0, 36)
	for _, f := range faces {
		a, b, c, d := corner(f[0]), corner(f[1]), corner(f[2]), corner(f[3])
		points = append(points, a, b, c, c, d, a)
	}
	return points
}

func (Cube) Topology() render.Topology { return render.TopologyTriangleList }

// Sphere is a UV sphere. Each of its Stacks bands has Slices quads; the
// bands touching the poles collapse to one triangle per slice.
type Sphere struct {
	Radius float32
	Stacks int
	Slices int
}

func (Sphere) Name() string { return "sphere" }

func (s Sphere) Points() []mgl32.Vec3 {
	stacks, slices := max(s.Stacks, 2), max(s.Slices, 3)
	at := func(i, j int) mgl32.Vec3 {
		theta := math.Pi * float64(i) / float64(stacks)
		phi := 2 * math.Pi * float64(j) / float64(slices)
		return mgl32.Vec3{
			float32(math.Sin(theta) * math.Cos(phi)),
			float32(math.Cos(theta)),
			float32(math.Sin(theta) * math.Sin(phi)),
		}.Mul(s.Radius)
	}

	var points []mgl32.Vec3
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a, b := at(i, j), at(i+1, j)
			c, d := at(i+1, j+1), at(i, j+1)
			if i != 0 {
				points = append(points, a, b, d)
			}
			if i != stacks-1 {
				points = append(points, b, c, d)
			}
		}
	}
	return points
}

func (Sphere) Topology() render.Topology { return render.TopologyTriangleList }

func half(size float32) float32 {
	if size <= 0 {
		return 0.5
	}
	return size / 2
}

var shapes = map[string]Shape{
	"triangle": Triangle{},
	"quad":     Quad{Size: 1},
	"cube":     Cube{Size: 1},
	"sphere":   Sphere{Radius: 0.5, Stacks: 16, Slices: 32},
}

// Lookup returns the default shape called name.
func Lookup(name string) (Shape, error) {
	s, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("geometry: unknown shape %q (have %v)", name, Names())
	}
	return s, nil
}

// Names lists the shapes Lookup knows, sorted.
func Names() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
