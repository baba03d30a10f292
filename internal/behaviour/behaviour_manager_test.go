package behaviour

import (
	"math"
	"testing"

	"MirrorShade/internal/mesh"
	"MirrorShade/internal/renderer"
	"MirrorShade/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type countingBehaviour struct {
	starts  int
	updates int
	elapsed float64
}

func (c *countingBehaviour) Start() { c.starts++ }

func (c *countingBehaviour) Update(deltaTime float64) {
	c.updates++
	c.elapsed += deltaTime
}

// near compares per component; mgl32's ApproxEqualThreshold tightens to
// epsilon squared when a component is zero.
func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-4 {
			return false
		}
	}
	return true
}

func TestStartRunsOnce(t *testing.T) {
	m := NewBehaviourManager()
	b := &countingBehaviour{}
	m.Add(b)

	m.UpdateAll(0.5)
	m.UpdateAll(0.25)

	if b.starts != 1 {
		t.Errorf("Expected Start once, got %d", b.starts)
	}
	if b.updates != 2 || b.elapsed != 0.75 {
		t.Errorf("Expected 2 updates over 0.75s, got %d over %v", b.updates, b.elapsed)
	}
}

func TestRemoveAndClear(t *testing.T) {
	m := NewBehaviourManager()
	a, b := &countingBehaviour{}, &countingBehaviour{}
	m.Add(a)
	m.Add(b)

	m.Remove(a)
	m.UpdateAll(1)
	if a.updates != 0 || b.updates != 1 {
		t.Errorf("Removed behaviour was updated: a=%d b=%d", a.updates, b.updates)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Expected empty manager after Clear, got %d", m.Len())
	}
}

func TestLightOrbitKeepsRadiusAndAim(t *testing.T) {
	light := renderer.NewSpotLight(mgl32.Vec3{5, 5, 0}, mgl32.Vec3{-1, -1, 0})
	orbit := &LightOrbit{Light: light, Speed: math.Pi / 2}
	m := NewBehaviourManager()
	m.Add(orbit)

	m.UpdateAll(1) // quarter turn

	pos := light.Position
	if !near(pos, mgl32.Vec3{0, 5, 5}) {
		t.Errorf("Expected light at (0,5,5), got %v", pos)
	}
	want := mgl32.Vec3{0, -5, -5}.Normalize()
	if !near(light.Direction, want) {
		t.Errorf("Expected direction %v, got %v", want, light.Direction)
	}
}

func TestSpinRotatesAboutY(t *testing.T) {
	obj := scene.NewObject("box", mesh.Box(), scene.DefaultMaterial)
	m := NewBehaviourManager()
	m.Add(&Spin{Object: obj, Speed: 90})

	m.UpdateAll(1)

	got := obj.ModelMatrix.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if !near(got, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Expected +X to map to -Z after 90 degrees, got %v", got)
	}
}
