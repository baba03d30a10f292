package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxLayout(t *testing.T) {
	box := Box()

	assert.Len(t, box.Positions, 24)
	assert.Len(t, box.Normals, 24)
	assert.Len(t, box.Indices, 36)
	assert.Equal(t, 12, box.TriangleCount())

	min, max := box.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, max)
}

func TestWindingMatchesNormals(t *testing.T) {
	for _, d := range []*Data{Box(), Plane()} {
		for i, tri := range d.Triangles(mgl32.Ident4()) {
			face := tri.V[1].Sub(tri.V[0]).Cross(tri.V[2].Sub(tri.V[0])).Normalize()
			assert.InDelta(t, 1, face.Dot(tri.Normals[0]), 1e-6, "%s triangle %d", d.Name, i)
		}
	}
}

func TestPlaneFacesUp(t *testing.T) {
	plane := Plane()
	require.Equal(t, 2, plane.TriangleCount())
	for _, n := range plane.Normals {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, n)
	}
	for _, p := range plane.Positions {
		assert.Zero(t, p.Y())
	}
}

func TestTrianglesApplyModel(t *testing.T) {
	model := mgl32.Translate3D(0, 1, 0).Mul4(mgl32.Scale3D(100, 100, 100))
	tris := Plane().Triangles(model)

	for _, tri := range tris {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 1, tri.V[k].Y(), 1e-6)
			assert.InDelta(t, 100, abs(tri.V[k].X()), 1e-4)
			assert.InDelta(t, 1, tri.Normals[k].Len(), 1e-6)
		}
	}
}

func TestInterleavedStride(t *testing.T) {
	box := Box()
	data := box.Interleaved()
	require.Len(t, data, len(box.Positions)*FloatsPerVertex)

	for i, p := range box.Positions {
		base := i * FloatsPerVertex
		assert.Equal(t, p, mgl32.Vec3{data[base], data[base+1], data[base+2]})
		assert.Equal(t, box.Normals[i], mgl32.Vec3{data[base+3], data[base+4], data[base+5]})
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestBoxEdgesAreDeduplicated(t *testing.T) {
	// 12 cube edges plus one diagonal per face.
	assert.Len(t, Box().Edges(), 18)
	assert.Len(t, Plane().Edges(), 5)
}

func TestWireframeTriangleCount(t *testing.T) {
	box := Box()
	w := Wireframe(box, 0.015)

	assert.Equal(t, 18*TrianglesPerEdge, w.TriangleCount())
	assert.Len(t, w.Normals, len(w.Positions))
	assert.Equal(t, "box-wireframe", w.Name)

	min, max := w.Bounds()
	assert.InDelta(t, -1.015, min.X(), 1e-3)
	assert.InDelta(t, 1.015, max.Y(), 1e-3)
}

func TestWireframeFacesOutward(t *testing.T) {
	w := Wireframe(Plane(), 0.1)
	for i, tri := range w.Triangles(mgl32.Ident4()) {
		face := tri.V[1].Sub(tri.V[0]).Cross(tri.V[2].Sub(tri.V[0])).Normalize()
		for k := 0; k < 3; k++ {
			assert.Greater(t, face.Dot(tri.Normals[k]), float32(0.5), "triangle %d vertex %d", i, k)
		}
	}
}

func TestFitRecentersAndScales(t *testing.T) {
	d := &Data{
		Positions: []mgl32.Vec3{{10, 0, 4}, {14, 2, 4}, {10, 1, 6}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}
	d.Fit()

	min, max := d.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -0.5, -0.5}, min)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0.5}, max)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, d.Normals[0], "uniform scale keeps normals")

	empty := &Data{}
	empty.Fit()
	assert.Empty(t, empty.Positions)
}
