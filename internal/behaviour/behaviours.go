package behaviour

import (
	"math"

	"MirrorShade/internal/renderer"
	"MirrorShade/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// LightOrbit circles a spot light around Center in the XZ plane, keeping its
// height, and keeps it aimed at Center.
type LightOrbit struct {
	Light  *renderer.SpotLight
	Center mgl32.Vec3
	Speed  float32 // radians per second

	radius float32
	angle  float32
}

func (o *LightOrbit) Start() {
	offset := o.Light.Position.Sub(o.Center)
	o.radius = mgl32.Vec2{offset.X(), offset.Z()}.Len()
	o.angle = float32(math.Atan2(float64(offset.Z()), float64(offset.X())))
}

func (o *LightOrbit) Update(deltaTime float64) {
	o.angle += o.Speed * float32(deltaTime)
	sin, cos := math.Sincos(float64(o.angle))
	o.Light.Position = mgl32.Vec3{
		o.Center.X() + o.radius*float32(cos),
		o.Light.Position.Y(),
		o.Center.Z() + o.radius*float32(sin),
	}
	o.Light.Direction = o.Center.Sub(o.Light.Position).Normalize()
	o.Light.SyncShadowCamera()
}

// Spin turns an object about its Y axis.
type Spin struct {
	Object *scene.Object
	Speed  float32 // degrees per second
}

func (s *Spin) Start() {}

func (s *Spin) Update(deltaTime float64) {
	s.Object.Rotate(0, s.Speed*float32(deltaTime), 0)
}
