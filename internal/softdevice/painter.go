package softdevice

import (
	"math"

	"MirrorShade/internal/renderer"
	"MirrorShade/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Painter draws scene objects on a software device by casting one ray per
// pixel. It writes the G-buffer layout when the bound target has color
// attachments and depth only otherwise, so the same painter serves geometry
// and shadow passes.
type Painter struct {
	dev *Device
}

var _ scene.Painter = (*Painter)(nil)

func NewPainter(dev *Device) *Painter {
	return &Painter{dev: dev}
}

func (p *Painter) Paint(object *scene.Object, camera *renderer.Camera) {
	tris := object.Mesh.Triangles(object.ModelMatrix)
	material := object.Material
	cull := p.dev.State().Cull
	color := material.DiffuseColor.Mul(material.DiffuseIntensity).Vec4(1)

	p.dev.Fill(func(ndc mgl32.Vec2) (Fragment, bool) {
		ray := camera.RayFromNDC(ndc)
		nearest := float32(math.Inf(1))
		var normal mgl32.Vec3
		for _, tri := range tris {
			front := renderer.FrontFacing(ray, tri.V[0], tri.V[1], tri.V[2])
			if (cull == renderer.CullBack && !front) || (cull == renderer.CullFront && front) {
				continue
			}
			hit, t, bary := renderer.RayIntersectTriangle(ray, tri.V[0], tri.V[1], tri.V[2])
			if !hit || t >= nearest {
				continue
			}
			nearest = t
			normal = tri.Normals[0].Mul(1 - bary.X() - bary.Y()).
				Add(tri.Normals[1].Mul(bary.X())).
				Add(tri.Normals[2].Mul(bary.Y())).
				Normalize()
		}
		if math.IsInf(float64(nearest), 1) {
			return Fragment{}, false
		}
		point := ray.At(nearest)
		return Fragment{
			Colors: []mgl32.Vec4{
				point.Vec4(material.SpecularPower),
				normal.Vec4(material.SpecularIntensity),
				color,
			},
			Depth: camera.DepthOf(point),
		}, true
	})
}
