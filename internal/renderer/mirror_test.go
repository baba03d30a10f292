package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T, dev *fakeDevice, config Config) *MirrorCompositor {
	t.Helper()
	m, err := NewMirrorCompositor(dev, Screen{Width: 800, Height: 600}, config)
	require.NoError(t, err)
	return m
}

func TestMirrorPipelineFollowsScale(t *testing.T) {
	config := DefaultConfig()
	config.MirrorScale = 0.5
	m := newTestMirror(t, newFakeDevice(), config)

	w, h := m.Pipeline().Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
}

func TestRenderReflectionUsesMirroredCamera(t *testing.T) {
	dev := newFakeDevice()
	config := DefaultConfig()
	config.MirrorHeight = 0.5
	m := newTestMirror(t, dev, config)
	cam := newTestCamera()
	before := *cam

	var seen mgl32.Vec3
	var mirrored bool
	scene := RenderFunc(func(c *Camera) {
		seen = c.Position
		mirrored = c.Mirrored()
	})
	require.NoError(t, m.RenderReflection(cam, scene, []Light{NewAmbientLight(0.2)}))

	assert.True(t, mirrored)
	assert.InDelta(t, 2*0.5-before.Position.Y(), seen.Y(), 1e-5)
	assert.False(t, cam.Mirrored())
	assert.True(t, before.Position.ApproxEqualThreshold(cam.Position, 1e-5))
	assert.Equal(t, PassIdle, m.Pipeline().State())
	assert.Equal(t, 1, dev.quads)
}

func TestRenderReflectionRestoresCameraOnPanic(t *testing.T) {
	m := newTestMirror(t, newFakeDevice(), DefaultConfig())
	cam := newTestCamera()
	before := cam.Position

	assert.Panics(t, func() {
		_ = m.RenderReflection(cam, RenderFunc(func(*Camera) { panic("scene failed") }), nil)
	})
	assert.False(t, cam.Mirrored())
	assert.Equal(t, before, cam.Position)
}

func TestRenderReflectionEndsPassOnError(t *testing.T) {
	dev := newFakeDevice()
	m := newTestMirror(t, dev, DefaultConfig())
	dev.rejectUniform = "lightIntensity"

	err := m.RenderReflection(newTestCamera(), RenderFunc(func(*Camera) {}), []Light{NewAmbientLight(0.2)})
	var shaderErr *ShaderError
	require.ErrorAs(t, err, &shaderErr)
	assert.Equal(t, PassIdle, m.Pipeline().State())
	assert.Equal(t, DefaultRenderState, dev.State())
}

func TestCompositeBeforeReflection(t *testing.T) {
	m := newTestMirror(t, newFakeDevice(), DefaultConfig())
	assert.True(t, errors.Is(m.Composite(), ErrNoLightPass))
}

func TestCompositeBlendsOverScreen(t *testing.T) {
	dev := newFakeDevice()
	config := DefaultConfig()
	config.MirrorReflectivity = 0.3
	m := newTestMirror(t, dev, config)
	require.NoError(t, m.RenderReflection(newTestCamera(), RenderFunc(func(*Camera) {}), nil))

	custom := RenderState{Blend: BlendAdditive, DepthTest: DepthTestNone, ColorWrite: true}
	dev.ApplyState(custom)
	dev.appliedStates = nil
	require.NoError(t, m.Composite())

	require.NotEmpty(t, dev.appliedStates)
	assert.Equal(t, compositeState, dev.appliedStates[0])
	assert.Equal(t, custom, dev.State(), "state before the composite is restored")
	assert.Equal(t, ScreenFramebuffer, dev.bound)
	assert.Equal(t, [2]int{800, 600}, dev.viewport)

	out, _ := m.Pipeline().LightPassColorTexture()
	assert.Equal(t, out, dev.units[UnitMirror])
	v, _ := dev.uniform(ProgramMirror, "reflectivity")
	assert.Equal(t, float32(0.3), v)
}

func TestMirrorCompositorReleasesOnProgramFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failProgram = ProgramMirror

	_, err := NewMirrorCompositor(dev, Screen{Width: 64, Height: 64}, DefaultConfig())
	require.Error(t, err)
	textures, framebuffers, programs := dev.live()
	assert.Zero(t, textures)
	assert.Zero(t, framebuffers)
	assert.Zero(t, programs)
}

func TestMirrorCompositorDestroy(t *testing.T) {
	dev := newFakeDevice()
	m := newTestMirror(t, dev, DefaultConfig())
	m.Destroy()
	m.Destroy()

	textures, framebuffers, programs := dev.live()
	assert.Zero(t, textures)
	assert.Zero(t, framebuffers)
	assert.Zero(t, programs)
}
