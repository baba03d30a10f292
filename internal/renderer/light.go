package renderer

import (
	"fmt"
	"math"

	"MirrorShade/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Light is one of *AmbientLight or *SpotLight. The set is closed; consumers
// switch on the concrete type.
type Light interface {
	isLight()
}

type BaseLight struct {
	Color     mgl32.Vec3 // Light color
	Intensity float32    // Scalar multiplier of Color
}

type AmbientLight struct {
	BaseLight
}

func (*AmbientLight) isLight() {}

// Attenuation divides a spot light's contribution by
// Constant + Linear*d + Exponential*d*d at distance d.
type Attenuation struct {
	Constant    float32
	Linear      float32
	Exponential float32
}

const DefaultSpotCutoff float32 = 0.1 * math.Pi

type SpotLight struct {
	BaseLight
	Position    mgl32.Vec3  // World position
	Direction   mgl32.Vec3  // Cone axis
	CutoffAngle float32     // Half-angle of the cone in radians
	Attenuation Attenuation // Distance falloff

	shadow *ShadowCaster
}

func (*SpotLight) isLight() {}

func NewAmbientLight(intensity float32) *AmbientLight {
	return &AmbientLight{BaseLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: intensity}}
}

func NewSpotLight(position, direction mgl32.Vec3) *SpotLight {
	return &SpotLight{
		BaseLight:   BaseLight{Color: mgl32.Vec3{1, 1, 1}, Intensity: 0.5},
		Position:    position,
		Direction:   direction.Normalize(),
		CutoffAngle: DefaultSpotCutoff,
		Attenuation: Attenuation{Constant: 0.5, Linear: 0.05, Exponential: 0.005},
	}
}

// EnableShadows allocates a resolution x resolution depth map and derives the
// light's shadow camera. Enabling twice is an error; the existing shadow map
// is kept.
func (l *SpotLight) EnableShadows(dev Device, resolution int, far float32) error {
	const op = "EnableShadows"
	if l.shadow != nil {
		return &ResourceError{Op: op, Resource: "shadow map", Err: ErrShadowsEnabled}
	}
	if l.CutoffAngle <= 0 || l.CutoffAngle >= math.Pi/2 {
		return &ResourceError{Op: op, Resource: "shadow map", Err: fmt.Errorf("cutoff angle %v outside (0, pi/2)", l.CutoffAngle)}
	}
	caster, err := newShadowCaster(dev, resolution, far)
	if err != nil {
		return err
	}
	l.shadow = caster
	l.SyncShadowCamera()

	logger.Log.Info("Shadows enabled",
		zap.Int("resolution", resolution),
		zap.Float32("far", far),
		zap.String("target", caster.target.Label))
	return nil
}

// SyncShadowCamera re-derives the shadow camera from the light's current
// position, direction and cutoff. Call it after moving a shadowed light.
func (l *SpotLight) SyncShadowCamera() {
	if l.shadow == nil {
		return
	}
	l.shadow.aim(l.Position, l.Direction, l.CutoffAngle)
}

// Shadow returns the light's shadow caster, or nil without shadows.
func (l *SpotLight) Shadow() *ShadowCaster {
	return l.shadow
}

// ShadowCamera returns the camera the scene must be rendered from during the
// shadow pass.
func (l *SpotLight) ShadowCamera() (*Camera, bool) {
	if l.shadow == nil {
		return nil, false
	}
	return l.shadow.camera, true
}

// ShadowCastBegin binds the shadow map and clears its depth with color writes
// disabled.
func (l *SpotLight) ShadowCastBegin() error {
	if l.shadow == nil {
		return &StateError{Op: "ShadowCastBegin", Msg: "spot light", Err: ErrShadowsDisabled}
	}
	return l.shadow.begin()
}

func (l *SpotLight) ShadowCastEnd() {
	if l.shadow == nil {
		stateViolation("ShadowCastEnd", "spot light has no shadow map")
	}
	l.shadow.end()
}

// CastShadows runs the whole shadow pass for scene.
func (l *SpotLight) CastShadows(scene Renderable) error {
	if err := l.ShadowCastBegin(); err != nil {
		return err
	}
	scene.Render(l.shadow.camera)
	l.ShadowCastEnd()
	return nil
}

// Destroy releases the shadow map.
func (l *SpotLight) Destroy() {
	if l.shadow != nil {
		l.shadow.Destroy()
		l.shadow = nil
	}
}
