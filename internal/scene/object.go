// Package scene holds the objects of the demo scene and draws them through a
// device-specific Painter.
package scene

import (
	"MirrorShade/internal/mesh"
	"MirrorShade/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is what the geometry pass writes into the G-buffer for an object.
type Material struct {
	DiffuseColor      mgl32.Vec3 // Base color
	DiffuseIntensity  float32    // Multiplier of DiffuseColor
	SpecularIntensity float32    // Stored in normal.w
	SpecularPower     float32    // Phong exponent, stored in position.w
}

// DefaultMaterial is a plain white, mildly glossy surface.
var DefaultMaterial = Material{
	DiffuseColor:      mgl32.Vec3{1, 1, 1},
	DiffuseIntensity:  1,
	SpecularIntensity: 0.5,
	SpecularPower:     32,
}

// GroundMaterial is a dim, fairly glossy floor that lets the reflection read.
var GroundMaterial = Material{
	DiffuseColor:      mgl32.Vec3{1, 1, 1},
	DiffuseIntensity:  0.2,
	SpecularIntensity: 0.4,
	SpecularPower:     20,
}

// WireframeMaterial suits the thin tubes of mesh.Wireframe.
var WireframeMaterial = Material{
	DiffuseColor:      mgl32.Vec3{1, 1, 1},
	DiffuseIntensity:  0.8,
	SpecularIntensity: 0.2,
	SpecularPower:     5,
}

type Object struct {
	// HOT DATA - read by every pass
	ModelMatrix mgl32.Mat4
	Mesh        *mesh.Data
	Material    Material

	// COLD DATA - transform components, ModelMatrix is derived from them
	Name     string
	Position mgl32.Vec3
	Scale    mgl32.Vec3
	Rotation mgl32.Quat
}

func NewObject(name string, data *mesh.Data, material Material) *Object {
	o := &Object{
		Name:     name,
		Mesh:     data,
		Material: material,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
	o.updateModelMatrix()
	return o
}

func (o *Object) SetPosition(x, y, z float32) {
	o.Position = mgl32.Vec3{x, y, z}
	o.updateModelMatrix()
}

// SetScale scales uniformly; normals are transformed by the model matrix and
// stay correct only for uniform scale.
func (o *Object) SetScale(s float32) {
	o.Scale = mgl32.Vec3{s, s, s}
	o.updateModelMatrix()
}

// Rotate applies rotations in degrees around X, then Y, then Z.
func (o *Object) Rotate(angleX, angleY, angleZ float32) {
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	o.Rotation = o.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	o.updateModelMatrix()
}

// updateModelMatrix rebuilds ModelMatrix in TRS order: scale first, then
// rotate, then translate.
func (o *Object) updateModelMatrix() {
	scaleMatrix := mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	rotationMatrix := o.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2])
	o.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}

// Painter draws one object into whatever target the current pass has bound.
type Painter interface {
	Paint(object *Object, camera *renderer.Camera)
}

// Group is a renderer.Renderable drawing its objects in order.
type Group struct {
	Objects []*Object
	Painter Painter
}

func NewGroup(painter Painter, objects ...*Object) *Group {
	return &Group{Objects: objects, Painter: painter}
}

func (g *Group) Add(object *Object) {
	g.Objects = append(g.Objects, object)
}

func (g *Group) Render(camera *renderer.Camera) {
	for _, object := range g.Objects {
		g.Painter.Paint(object, camera)
	}
}

// Pick returns the object whose surface ray hits first, with the distance
// along the ray. ok is false when nothing is hit.
func (g *Group) Pick(ray renderer.Ray) (hit *Object, distance float32, ok bool) {
	for _, object := range g.Objects {
		for _, tri := range object.Mesh.Triangles(object.ModelMatrix) {
			found, t, _ := renderer.RayIntersectTriangle(ray, tri.V[0], tri.V[1], tri.V[2])
			if found && (!ok || t < distance) {
				hit, distance, ok = object, t, true
			}
		}
	}
	return hit, distance, ok
}
