package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShadowCaster is a spot light's depth-only render target together with the
// perspective camera it is rendered from.
type ShadowCaster struct {
	dev        Device
	target     *RenderTarget
	camera     *Camera
	resolution int
	restore    func()
}

func newShadowCaster(dev Device, resolution int, far float32) (*ShadowCaster, error) {
	const op = "EnableShadows"
	if resolution <= 0 {
		return nil, &ResourceError{Op: op, Resource: "shadow map", Err: fmt.Errorf("invalid resolution %d", resolution)}
	}
	if far <= DefaultShadowNear {
		return nil, &ResourceError{Op: op, Resource: "shadow map", Err: fmt.Errorf("far plane %v must exceed near plane %v", far, DefaultShadowNear)}
	}
	target, err := NewRenderTarget(dev, "shadowmap", resolution, resolution, []AttachmentDesc{
		{Name: AttachmentDepth, Format: FormatDepth32F},
	})
	if err != nil {
		return nil, err
	}
	return &ShadowCaster{
		dev:        dev,
		target:     target,
		resolution: resolution,
		camera: &Camera{
			Up:          mgl32.Vec3{0, 1, 0},
			Near:        DefaultShadowNear,
			Far:         far,
			AspectRatio: 1,
		},
	}, nil
}

// aim points the shadow camera down the cone. The field of view covers the
// full cone and stays below pi.
func (s *ShadowCaster) aim(position, direction mgl32.Vec3, cutoff float32) {
	dir := direction.Normalize()
	up := mgl32.Vec3{0, 1, 0}
	if float32(math.Abs(float64(dir.Dot(up)))) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	fov := 2 * cutoff
	if limit := float32(math.Pi) - 0.01; fov > limit {
		fov = limit
	}
	s.camera.Position = position
	s.camera.Target = position.Add(dir)
	s.camera.Up = up
	s.camera.Fov = fov
	s.camera.UpdateProjection()
}

func (s *ShadowCaster) begin() error {
	if s.restore != nil {
		stateViolation("ShadowCastBegin", "shadow pass already in progress")
	}
	if err := s.target.Bind(); err != nil {
		return err
	}
	s.restore = PushState(s.dev, shadowPassState)
	s.dev.Clear(ClearDepth, mgl32.Vec4{})
	return nil
}

func (s *ShadowCaster) end() {
	if s.restore == nil {
		stateViolation("ShadowCastEnd", "no shadow pass in progress")
	}
	s.restore()
	s.restore = nil
}

func (s *ShadowCaster) Camera() *Camera {
	return s.camera
}

// ViewProjection maps world space into the shadow map's clip space.
func (s *ShadowCaster) ViewProjection() mgl32.Mat4 {
	return s.camera.GetViewProjection()
}

func (s *ShadowCaster) DepthTexture() Texture {
	tex, _ := s.target.Attachment(AttachmentDepth)
	return tex
}

func (s *ShadowCaster) Resolution() int {
	return s.resolution
}

func (s *ShadowCaster) Destroy() {
	if s.restore != nil {
		s.restore()
		s.restore = nil
	}
	s.target.Destroy()
}
