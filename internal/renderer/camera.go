// camera.go
package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	// HOT DATA - read by every pass
	Position   mgl32.Vec3 // Eye position in world space
	Target     mgl32.Vec3 // Point the camera looks at
	Up         mgl32.Vec3 // Up direction vector
	Projection mgl32.Mat4 // Projection matrix, rebuilt by UpdateProjection

	// COLD DATA - lens configuration and navigation
	Fov         float32 // Vertical field of view in radians
	Near        float32 // Near clipping plane
	Far         float32 // Far clipping plane
	AspectRatio float32 // Viewport width / height
	Sensitivity float32 // Radians of orbit per pixel of drag
	ZoomSpeed   float32 // Fraction of the eye distance covered per wheel step
	MinDistance float32 // Closest Zoom may bring the eye to the target

	mirrored     bool
	mirrorHeight float32
}

func NewPerspectiveCamera(position, target, up mgl32.Vec3, aspectRatio, fov, near, far float32) *Camera {
	camera := Camera{
		Position:    position,
		Target:      target,
		Up:          up,
		Fov:         fov,
		Near:        near,
		Far:         far,
		AspectRatio: aspectRatio,
		Sensitivity: 0.005,
		ZoomSpeed:   0.1,
		MinDistance: 1.0,
	}
	camera.UpdateProjection()
	return &camera
}

// Validate checks the lens invariants: 0 < near < far and 0 < fov < pi.
func (c *Camera) Validate() error {
	if c.Near <= 0 || c.Near >= c.Far {
		return fmt.Errorf("invalid clip planes near=%v far=%v", c.Near, c.Far)
	}
	if c.Fov <= 0 || c.Fov >= math.Pi {
		return fmt.Errorf("invalid field of view %v", c.Fov)
	}
	if c.AspectRatio <= 0 {
		return fmt.Errorf("invalid aspect ratio %v", c.AspectRatio)
	}
	return nil
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(c.Fov, c.AspectRatio, c.Near, c.Far)
}

// Setter methods that automatically update projection
func (c *Camera) SetNear(near float32) {
	c.Near = near
	c.UpdateProjection()
}

func (c *Camera) SetFar(far float32) {
	c.Far = far
	c.UpdateProjection()
}

func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

// Direction returns the normalized view direction.
func (c *Camera) Direction() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

func (c *Camera) GetInverseViewProjection() mgl32.Mat4 {
	return c.GetViewProjection().Inv()
}

// MirrorInXZPlane reflects the eye, the target and the up vector across the
// horizontal plane y = height. Applying it twice with the same height restores
// the camera; Mirrored reports the current parity.
//
// The projection is untouched, so the image rendered from a mirrored camera is
// the reflection flipped horizontally. The mirror composite undoes the flip.
func (c *Camera) MirrorInXZPlane(height float32) {
	c.Position[1] = 2*height - c.Position[1]
	c.Target[1] = 2*height - c.Target[1]
	c.Up[1] = -c.Up[1]
	c.mirrored = !c.mirrored
	c.mirrorHeight = height
}

func (c *Camera) Mirrored() bool {
	return c.mirrored
}

// MirrorHeight is the plane height of the last MirrorInXZPlane call.
func (c *Camera) MirrorHeight() float32 {
	return c.mirrorHeight
}

// Orbit rotates the eye around the target: dx turns around the world up axis,
// dy tilts towards or away from it. Tilting stops short of the poles.
func (c *Camera) Orbit(dx, dy float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}

	yaw := float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	pitch := float32(math.Asin(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))

	yaw -= dx * c.Sensitivity
	pitch += dy * c.Sensitivity
	const limit = math.Pi/2 - 0.01
	pitch = mgl32.Clamp(pitch, -limit, limit)

	cosPitch := float32(math.Cos(float64(pitch)))
	c.Position = c.Target.Add(mgl32.Vec3{
		radius * cosPitch * float32(math.Sin(float64(yaw))),
		radius * float32(math.Sin(float64(pitch))),
		radius * cosPitch * float32(math.Cos(float64(yaw))),
	})
}

// Zoom moves the eye along the view direction; positive delta moves closer.
func (c *Camera) Zoom(delta float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}
	next := radius * (1 - delta*c.ZoomSpeed)
	if next < c.MinDistance {
		next = c.MinDistance
	}
	if next > c.Far {
		next = c.Far
	}
	c.Position = c.Target.Add(offset.Mul(next / radius))
}
