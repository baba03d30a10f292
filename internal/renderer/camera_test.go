package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera() *Camera {
	return NewPerspectiveCamera(mgl32.Vec3{3, 4, 8}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}, 4.0/3, mgl32.DegToRad(45), 0.1, 100)
}

func TestMirrorInXZPlaneReflectsEyeTargetAndUp(t *testing.T) {
	cam := newTestCamera()
	cam.MirrorInXZPlane(0)

	assert.Equal(t, mgl32.Vec3{3, -4, 8}, cam.Position)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, cam.Target)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, cam.Up)
	assert.True(t, cam.Mirrored())
}

func TestMirrorInXZPlaneTwiceRestores(t *testing.T) {
	cam := newTestCamera()
	before := *cam

	cam.MirrorInXZPlane(0)
	cam.MirrorInXZPlane(0)
	assert.Equal(t, before.Position, cam.Position, "exact at height 0")
	assert.Equal(t, before.Target, cam.Target)
	assert.Equal(t, before.Up, cam.Up)
	assert.False(t, cam.Mirrored())

	cam.MirrorInXZPlane(1.7)
	assert.InDelta(t, 2*1.7-4, cam.Position.Y(), 1e-5)
	cam.MirrorInXZPlane(1.7)
	assert.True(t, before.Position.ApproxEqualThreshold(cam.Position, 1e-5))
	assert.True(t, before.Target.ApproxEqualThreshold(cam.Target, 1e-5))
	assert.Equal(t, float32(1.7), cam.MirrorHeight())
}

func TestMirroredViewSeesPointsBelowThePlane(t *testing.T) {
	cam := newTestCamera()
	above := mgl32.Vec3{1, 2, 0}
	below := mgl32.Vec3{1, -2, 0}

	viewAbove := mgl32.TransformCoordinate(above, cam.GetViewMatrix())
	cam.MirrorInXZPlane(0)
	viewBelow := mgl32.TransformCoordinate(below, cam.GetViewMatrix())

	// Same depth, vertical position preserved, horizontal flipped by the
	// negated up vector.
	assert.InDelta(t, viewAbove.Z(), viewBelow.Z(), 1e-4)
	assert.InDelta(t, viewAbove.Y(), viewBelow.Y(), 1e-4)
	assert.InDelta(t, -viewAbove.X(), viewBelow.X(), 1e-4)
}

func TestCameraValidate(t *testing.T) {
	require.NoError(t, newTestCamera().Validate())

	for name, mutate := range map[string]func(c *Camera){
		"zero near":      func(c *Camera) { c.Near = 0 },
		"near past far":  func(c *Camera) { c.Near = 200 },
		"fov of pi":      func(c *Camera) { c.Fov = math.Pi },
		"zero fov":       func(c *Camera) { c.Fov = 0 },
		"negative ratio": func(c *Camera) { c.AspectRatio = -1 },
	} {
		cam := newTestCamera()
		mutate(cam)
		assert.Error(t, cam.Validate(), name)
	}
}

func TestSettersRebuildProjection(t *testing.T) {
	cam := newTestCamera()
	before := cam.GetProjectionMatrix()
	cam.SetFov(mgl32.DegToRad(60))
	assert.NotEqual(t, before, cam.GetProjectionMatrix())
	assert.Equal(t, mgl32.Perspective(cam.Fov, cam.AspectRatio, cam.Near, cam.Far), cam.GetProjectionMatrix())
}

func TestOrbitKeepsDistanceAndStopsShortOfPole(t *testing.T) {
	cam := newTestCamera()
	radius := cam.Position.Sub(cam.Target).Len()

	cam.Orbit(120, 0)
	assert.InDelta(t, radius, cam.Position.Sub(cam.Target).Len(), 1e-4)

	cam.Orbit(0, 1e6)
	offset := cam.Position.Sub(cam.Target)
	assert.Less(t, offset.Y(), radius)
	assert.Greater(t, mgl32.Vec2{offset.X(), offset.Z()}.Len(), float32(0))
}

func TestZoomClamps(t *testing.T) {
	cam := newTestCamera()
	cam.Zoom(100)
	assert.InDelta(t, cam.MinDistance, cam.Position.Sub(cam.Target).Len(), 1e-4)

	cam.Zoom(-1e6)
	assert.InDelta(t, cam.Far, cam.Position.Sub(cam.Target).Len(), 1e-2)
}

func TestRayFromNDCCenterFollowsViewDirection(t *testing.T) {
	cam := newTestCamera()
	ray := cam.RayFromNDC(mgl32.Vec2{0, 0})

	assert.True(t, ray.Direction.ApproxEqualThreshold(cam.Direction(), 1e-3), "got %v", ray.Direction)
	assert.InDelta(t, cam.Near, ray.Origin.Sub(cam.Position).Len(), 1e-3)

	center := cam.ScreenToRay(400, 300, 800, 600)
	assert.True(t, center.Direction.ApproxEqualThreshold(ray.Direction, 1e-4))
}

func TestDepthOfSpansNearToFar(t *testing.T) {
	cam := newTestCamera()
	dir := cam.Direction()

	assert.InDelta(t, 0, cam.DepthOf(cam.Position.Add(dir.Mul(cam.Near))), 1e-3)
	assert.InDelta(t, 1, cam.DepthOf(cam.Position.Add(dir.Mul(cam.Far))), 1e-3)

	nearer := cam.DepthOf(cam.Position.Add(dir.Mul(2)))
	farther := cam.DepthOf(cam.Position.Add(dir.Mul(20)))
	assert.Less(t, nearer, farther)
}

func TestRayIntersectTriangle(t *testing.T) {
	v0, v1, v2 := mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, -1}
	down := Ray{Origin: mgl32.Vec3{0, 5, 0}, Direction: mgl32.Vec3{0, -1, 0}}

	hit, dist, _ := RayIntersectTriangle(down, v0, v1, v2)
	require.True(t, hit)
	assert.InDelta(t, 5, dist, 1e-5)
	assert.True(t, FrontFacing(down, v0, v1, v2), "counter-clockwise seen from above")

	miss := Ray{Origin: mgl32.Vec3{5, 5, 0}, Direction: mgl32.Vec3{0, -1, 0}}
	hit, _, _ = RayIntersectTriangle(miss, v0, v1, v2)
	assert.False(t, hit)
}
