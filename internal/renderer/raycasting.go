package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayFromNDC returns the world-space ray through a point in normalized device
// coordinates, starting on the near plane. It is the same unprojection the
// light pass uses to rebuild view rays.
func (c *Camera) RayFromNDC(ndc mgl32.Vec2) Ray {
	inv := c.GetInverseViewProjection()
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), -1}, inv)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), 1}, inv)
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// ScreenToRay converts a pixel position (origin top-left) to a world space ray
func (c *Camera) ScreenToRay(screenX, screenY float32, windowWidth, windowHeight int) Ray {
	ndcX := 2.0*screenX/float32(windowWidth) - 1.0
	ndcY := 1.0 - 2.0*screenY/float32(windowHeight)
	return c.RayFromNDC(mgl32.Vec2{ndcX, ndcY})
}

// DepthOf returns the window-space depth in [0, 1] of a world point as seen
// by the camera, matching the default depth range.
func (c *Camera) DepthOf(point mgl32.Vec3) float32 {
	clip := c.GetViewProjection().Mul4x1(point.Vec4(1))
	return clip.Z()/clip.W()*0.5 + 0.5
}

// RayIntersectTriangle tests if a ray intersects a triangle
// Returns: (intersected, distance, barycentric u and v)
// Uses Möller-Trumbore algorithm
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec2) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec2{} // Ray is parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec2{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec2{}
	}

	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t, mgl32.Vec2{u, v}
	}

	return false, 0, mgl32.Vec2{} // Line intersection but not ray intersection
}

// FrontFacing reports whether the triangle v0 v1 v2 winds counter-clockwise
// when seen along ray.
func FrontFacing(ray Ray, v0, v1, v2 mgl32.Vec3) bool {
	return v1.Sub(v0).Cross(v2.Sub(v0)).Dot(ray.Direction) < 0
}
