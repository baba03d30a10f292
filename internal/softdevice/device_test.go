package softdevice

import (
	"testing"

	"MirrorShade/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTarget(t *testing.T, d *Device, format renderer.TextureFormat, size int) (renderer.Framebuffer, renderer.Texture, renderer.Texture) {
	t.Helper()
	color, err := d.CreateTexture(renderer.TextureDesc{Label: "color", Width: size, Height: size, Format: format})
	require.NoError(t, err)
	depth, err := d.CreateTexture(renderer.TextureDesc{Label: "depth", Width: size, Height: size, Format: renderer.FormatDepth32F})
	require.NoError(t, err)
	fb, err := d.CreateFramebuffer("target", []renderer.Texture{color}, &depth)
	require.NoError(t, err)
	d.BindFramebuffer(fb, size, size)
	return fb, color, depth
}

func TestClearHonoursWriteMasks(t *testing.T) {
	d := New(4, 4)
	_, color, depth := newTarget(t, d, renderer.FormatRGBA32F, 4)

	d.Clear(renderer.ClearColor|renderer.ClearDepth, mgl32.Vec4{0.25, 0.5, 0.75, 1})
	px, ok := d.Pixel(color, 1, 1)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0.25, 0.5, 0.75, 1}, px)

	d.ApplyState(renderer.RenderState{DepthWrite: true})
	d.Fill(func(mgl32.Vec2) (Fragment, bool) { return Fragment{Depth: 0.3}, true })
	z, _ := d.Pixel(depth, 0, 0)
	require.Equal(t, float32(0.3), z.X())

	d.ApplyState(renderer.RenderState{ColorWrite: false, DepthWrite: false})
	d.Clear(renderer.ClearColor|renderer.ClearDepth, mgl32.Vec4{})
	px, _ = d.Pixel(color, 1, 1)
	assert.Equal(t, mgl32.Vec4{0.25, 0.5, 0.75, 1}, px, "masked color clear must not write")
	z, _ = d.Pixel(depth, 0, 0)
	assert.Equal(t, float32(0.3), z.X(), "masked depth clear must not write")
}

func TestFillDepthTest(t *testing.T) {
	d := New(2, 2)
	_, color, depth := newTarget(t, d, renderer.FormatRGBA32F, 2)
	d.ApplyState(renderer.DefaultRenderState)
	d.Clear(renderer.ClearColor|renderer.ClearDepth, mgl32.Vec4{})

	red := mgl32.Vec4{1, 0, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}
	d.Fill(func(mgl32.Vec2) (Fragment, bool) { return Fragment{Colors: []mgl32.Vec4{red}, Depth: 0.4}, true })
	d.Fill(func(mgl32.Vec2) (Fragment, bool) { return Fragment{Colors: []mgl32.Vec4{blue}, Depth: 0.6}, true })

	px, _ := d.Pixel(color, 0, 0)
	assert.Equal(t, red, px, "farther fragment fails LESS")
	z, _ := d.Pixel(depth, 0, 0)
	assert.Equal(t, float32(0.4), z.X())

	d.Fill(func(mgl32.Vec2) (Fragment, bool) { return Fragment{Colors: []mgl32.Vec4{blue}, Depth: 1.5}, true })
	px, _ = d.Pixel(color, 0, 0)
	assert.Equal(t, red, px, "fragments beyond the far plane are clipped")
	assert.Equal(t, 3, d.Stats().Fills)
}

func TestBlendModes(t *testing.T) {
	src := mgl32.Vec4{0.5, 0.5, 0.5, 0.25}
	dst := mgl32.Vec4{1, 0, 0, 1}

	assert.Equal(t, src, blend(renderer.BlendNone, src, dst))
	assert.Equal(t, mgl32.Vec4{1.5, 0.5, 0.5, 1.25}, blend(renderer.BlendAdditive, src, dst))

	got := blend(renderer.BlendAlpha, src, dst)
	assert.InDelta(t, 0.875, got.X(), 1e-6)
	assert.InDelta(t, 0.125, got.Y(), 1e-6)
}

func TestQuantizeRGBA8(t *testing.T) {
	got := quantize(renderer.FormatRGBA8, mgl32.Vec4{-1, 0.5, 2, 1})
	assert.Equal(t, mgl32.Vec4{0, 128.0 / 255, 1, 1}, got)
	assert.Equal(t, got, quantize(renderer.FormatRGBA8, got), "quantizing twice is stable")

	hdr := mgl32.Vec4{2, -1, 0.123, 1}
	assert.Equal(t, hdr, quantize(renderer.FormatRGBA16F, hdr))
}

func TestSetUniformChecksDeclarations(t *testing.T) {
	d := New(1, 1)
	prog, err := d.CreateProgram(renderer.AmbientProgramSource())
	require.NoError(t, err)

	assert.NoError(t, d.SetUniform(prog, "lightIntensity", float32(0.2)))
	assert.Error(t, d.SetUniform(prog, "lightIntensity", 0.2), "float64 is not a float uniform")
	assert.Error(t, d.SetUniform(prog, "lightPosition", mgl32.Vec3{}), "ambient has no lightPosition")
	assert.Error(t, d.SetUniform(prog+100, "lightIntensity", float32(1)))

	_, err = d.CreateProgram(renderer.ProgramSource{Name: "bloom"})
	assert.Error(t, err)
}

func TestFramebufferCompleteness(t *testing.T) {
	d := New(1, 1)
	small, _ := d.CreateTexture(renderer.TextureDesc{Width: 2, Height: 2, Format: renderer.FormatRGBA8})
	large, _ := d.CreateTexture(renderer.TextureDesc{Width: 4, Height: 4, Format: renderer.FormatRGBA8})
	depth, _ := d.CreateTexture(renderer.TextureDesc{Width: 2, Height: 2, Format: renderer.FormatDepth32F})

	_, err := d.CreateFramebuffer("mismatch", []renderer.Texture{small, large}, nil)
	assert.Error(t, err)
	_, err = d.CreateFramebuffer("depth-as-color", []renderer.Texture{depth}, nil)
	assert.Error(t, err)
	_, err = d.CreateFramebuffer("empty", nil, nil)
	assert.Error(t, err)

	_, err = d.CreateFramebuffer("ok", []renderer.Texture{small}, &depth)
	assert.NoError(t, err)
}

func TestMirrorKernelFlipsHorizontally(t *testing.T) {
	d := New(2, 1)
	src, err := d.CreateTexture(renderer.TextureDesc{Width: 2, Height: 1, Format: renderer.FormatRGBA32F})
	require.NoError(t, err)
	d.textures[src.ID].texels[0] = mgl32.Vec4{1, 0, 0, 1}
	d.textures[src.ID].texels[1] = mgl32.Vec4{0, 1, 0, 1}

	prog, err := d.CreateProgram(renderer.MirrorProgramSource())
	require.NoError(t, err)
	require.NoError(t, d.SetUniform(prog, "colorMap", int32(0)))
	require.NoError(t, d.SetUniform(prog, "reflectivity", float32(0.5)))

	dst, err := d.CreateTexture(renderer.TextureDesc{Width: 2, Height: 1, Format: renderer.FormatRGBA32F})
	require.NoError(t, err)
	fb, err := d.CreateFramebuffer("dst", []renderer.Texture{dst}, nil)
	require.NoError(t, err)
	d.BindFramebuffer(fb, 2, 1)
	d.ApplyState(renderer.RenderState{Blend: renderer.BlendNone, ColorWrite: true})
	d.BindTexture(0, src)
	d.UseProgram(prog)
	d.DrawFullScreenQuad()

	left, _ := d.Pixel(dst, 0, 0)
	right, _ := d.Pixel(dst, 1, 0)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 0.5}, left)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0.5}, right)
}
