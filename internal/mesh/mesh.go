// Package mesh builds the procedural geometry the demo scene is made of. It is
// plain CPU data; uploading and drawing is up to the device.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Data is an indexed triangle list with one normal per vertex. Triangles wind
// counter-clockwise when seen from the side the normal points to.
type Data struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// Triangle is a world-space triangle with its vertex normals.
type Triangle struct {
	V       [3]mgl32.Vec3
	Normals [3]mgl32.Vec3
}

// FloatsPerVertex is the stride of Interleaved in float32s: position then normal.
const FloatsPerVertex = 6

// Box returns an axis-aligned cube spanning [-1, 1] on every axis, with flat
// per-face normals.
func Box() *Data {
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	d := &Data{Name: "box"}
	for _, f := range faces {
		d.addQuad(f.normal, f.normal, f.u, f.v)
	}
	return d
}

// Plane returns the square [-1, 1] x [-1, 1] in the XZ plane at y = 0, facing +Y.
func Plane() *Data {
	d := &Data{Name: "plane"}
	d.addQuad(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1})
	return d
}

// addQuad appends the unit square centered at center spanning the u and v
// axes. u x v must point along normal for counter-clockwise winding.
func (d *Data) addQuad(center, normal, u, v mgl32.Vec3) {
	base := uint32(len(d.Positions))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {
		d.Positions = append(d.Positions, center.Add(u.Mul(c[0])).Add(v.Mul(c[1])))
		d.Normals = append(d.Normals, normal)
	}
	d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
}

// Interleaved packs position and normal per vertex for a single vertex buffer.
func (d *Data) Interleaved() []float32 {
	data := make([]float32, 0, len(d.Positions)*FloatsPerVertex)
	for i, p := range d.Positions {
		n := d.Normals[i]
		data = append(data, p.X(), p.Y(), p.Z(), n.X(), n.Y(), n.Z())
	}
	return data
}

func (d *Data) TriangleCount() int {
	return len(d.Indices) / 3
}

// Triangles transforms every triangle by model. Normals are transformed by the
// upper 3x3 of model and renormalized, which holds for uniform scaling.
func (d *Data) Triangles(model mgl32.Mat4) []Triangle {
	normalMatrix := model.Mat3()
	tris := make([]Triangle, 0, d.TriangleCount())
	for i := 0; i+2 < len(d.Indices); i += 3 {
		var t Triangle
		for k := 0; k < 3; k++ {
			idx := d.Indices[i+k]
			t.V[k] = mgl32.TransformCoordinate(d.Positions[idx], model)
			t.Normals[k] = normalMatrix.Mul3x1(d.Normals[idx]).Normalize()
		}
		tris = append(tris, t)
	}
	return tris
}

// Bounds returns the axis-aligned bounding box of the untransformed vertices.
func (d *Data) Bounds() (min, max mgl32.Vec3) {
	if len(d.Positions) == 0 {
		return
	}
	min, max = d.Positions[0], d.Positions[0]
	for _, p := range d.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// Fit recenters d on the origin and scales it uniformly so its largest
// extent spans [-1, 1], the same footprint as Box. Empty or single-point meshes
// are left alone.
func (d *Data) Fit() {
	min, max := d.Bounds()
	size := max.Sub(min)
	extent := size.X()
	if size.Y() > extent {
		extent = size.Y()
	}
	if size.Z() > extent {
		extent = size.Z()
	}
	if extent == 0 {
		return
	}
	center := min.Add(max).Mul(0.5)
	scale := 2 / extent
	for i, p := range d.Positions {
		d.Positions[i] = p.Sub(center).Mul(scale)
	}
}
