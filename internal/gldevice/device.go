// Package gldevice implements renderer.Device on OpenGL 4.1 core. A Device
// must be created and used on the goroutine that owns the current context.
package gldevice

import (
	"fmt"

	"MirrorShade/internal/logger"
	"MirrorShade/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type program struct {
	id       uint32
	name     string
	uniforms *UniformCache
}

type Device struct {
	programs map[renderer.Program]*program
	quadVAO  uint32
	state    renderer.RenderState
	stats    *ResourceStats
}

var _ renderer.Device = (*Device)(nil)

// New loads the GL function pointers for the current context and puts the
// fixed-function state into renderer.DefaultRenderState.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("OpenGL initialization failed: %w", err)
	}
	d := &Device{
		programs: make(map[renderer.Program]*program),
		stats:    NewResourceStats(),
	}
	// The full-screen quad is generated from gl_VertexID; core profile still
	// requires a bound vertex array.
	gl.GenVertexArrays(1, &d.quadVAO)
	d.forceState(renderer.DefaultRenderState)

	logger.Log.Info("OpenGL device initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return d, nil
}

func (d *Device) Stats() *ResourceStats {
	return d.stats
}

// Destroy releases the device's own objects. Textures, framebuffers and
// programs belong to their creators.
func (d *Device) Destroy() {
	gl.DeleteVertexArrays(1, &d.quadVAO)
	d.stats.LogStats()
}

func (d *Device) CreateTexture(desc renderer.TextureDesc) (renderer.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return renderer.Texture{}, fmt.Errorf("texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	f, err := glFormat(desc.Format)
	if err != nil {
		return renderer.Texture{}, err
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, int32(desc.Width), int32(desc.Height), 0, f.format, f.xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return renderer.Texture{}, fmt.Errorf("texture %s: glTexImage2D failed with 0x%x", desc.Label, code)
	}

	d.stats.TextureCreated(id, desc)
	return renderer.Texture{ID: id, Width: desc.Width, Height: desc.Height, Format: desc.Format}, nil
}

func (d *Device) DeleteTexture(tex renderer.Texture) {
	if !tex.Valid() {
		return
	}
	id := tex.ID
	gl.DeleteTextures(1, &id)
	d.stats.TextureDeleted(id)
}

func (d *Device) CreateFramebuffer(label string, colors []renderer.Texture, depth *renderer.Texture) (renderer.Framebuffer, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	drawBuffers := make([]uint32, len(colors))
	for i, tex := range colors {
		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex.ID, 0)
		drawBuffers[i] = attachment
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		// Depth-only target
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}
	if depth != nil {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, depth.ID, 0)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("framebuffer %s incomplete: 0x%x", label, status)
	}

	d.stats.FramebufferCreated()
	logger.Log.Debug("Framebuffer created",
		zap.String("label", label),
		zap.Uint32("fbo", fbo),
		zap.Int("colorAttachments", len(colors)),
		zap.Bool("depth", depth != nil))
	return renderer.Framebuffer(fbo), nil
}

func (d *Device) DeleteFramebuffer(fb renderer.Framebuffer) {
	if fb == renderer.ScreenFramebuffer {
		return
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
	d.stats.FramebufferDeleted()
}

func (d *Device) BindFramebuffer(fb renderer.Framebuffer, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(mask renderer.ClearMask, color mgl32.Vec4) {
	var bits uint32
	if mask&renderer.ClearColor != 0 {
		gl.ClearColor(color.X(), color.Y(), color.Z(), color.W())
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&renderer.ClearDepth != 0 {
		gl.ClearDepth(1)
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

// ApplyState only touches the flags that differ from the current state.
func (d *Device) ApplyState(state renderer.RenderState) {
	if state == d.state {
		return
	}
	prev := d.state
	d.state = state

	if state.Blend != prev.Blend {
		applyBlend(state.Blend)
	}
	if state.DepthTest != prev.DepthTest {
		applyDepthTest(state.DepthTest)
	}
	if state.DepthWrite != prev.DepthWrite {
		gl.DepthMask(state.DepthWrite)
	}
	if state.Cull != prev.Cull {
		applyCull(state.Cull)
	}
	if state.ColorWrite != prev.ColorWrite {
		gl.ColorMask(state.ColorWrite, state.ColorWrite, state.ColorWrite, state.ColorWrite)
	}
}

func (d *Device) forceState(state renderer.RenderState) {
	d.state = state
	applyBlend(state.Blend)
	applyDepthTest(state.DepthTest)
	gl.DepthMask(state.DepthWrite)
	applyCull(state.Cull)
	gl.ColorMask(state.ColorWrite, state.ColorWrite, state.ColorWrite, state.ColorWrite)
}

func applyBlend(mode renderer.BlendMode) {
	switch mode {
	case renderer.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendEquation(gl.FUNC_ADD)
		gl.BlendFunc(gl.ONE, gl.ONE)
	case renderer.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendEquation(gl.FUNC_ADD)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func applyDepthTest(test renderer.DepthTest) {
	switch test {
	case renderer.DepthTestLess:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	case renderer.DepthTestLessEqual:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.Disable(gl.DEPTH_TEST)
	}
}

func applyCull(mode renderer.CullMode) {
	switch mode {
	case renderer.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case renderer.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

func (d *Device) State() renderer.RenderState {
	return d.state
}

func (d *Device) CreateProgram(src renderer.ProgramSource) (renderer.Program, error) {
	id, err := buildProgram(src)
	if err != nil {
		return 0, err
	}
	handle := renderer.Program(id)
	d.programs[handle] = &program{id: id, name: src.Name, uniforms: NewUniformCache(id)}
	d.stats.ProgramCreated()
	logger.Log.Debug("Shader program linked", zap.String("name", src.Name), zap.Uint32("program", id))
	return handle, nil
}

func (d *Device) DeleteProgram(handle renderer.Program) {
	p, ok := d.programs[handle]
	if !ok {
		return
	}
	gl.DeleteProgram(p.id)
	delete(d.programs, handle)
	d.stats.ProgramDeleted()
}

func (d *Device) UseProgram(handle renderer.Program) {
	gl.UseProgram(uint32(handle))
}

func (d *Device) SetUniform(handle renderer.Program, name string, value any) error {
	p, ok := d.programs[handle]
	if !ok {
		return fmt.Errorf("unknown program %d", handle)
	}
	return p.uniforms.Set(name, value)
}

func (d *Device) BindTexture(unit int, tex renderer.Texture) {
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	gl.BindTexture(gl.TEXTURE_2D, tex.ID)
}

func (d *Device) DrawFullScreenQuad() {
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

type texFormat struct {
	internal int32
	format   uint32
	xtype    uint32
	bytes    int // per texel
}

func glFormat(f renderer.TextureFormat) (texFormat, error) {
	switch f {
	case renderer.FormatRGBA8:
		return texFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, 4}, nil
	case renderer.FormatRGBA16F:
		return texFormat{gl.RGBA16F, gl.RGBA, gl.FLOAT, 8}, nil
	case renderer.FormatRGBA32F:
		return texFormat{gl.RGBA32F, gl.RGBA, gl.FLOAT, 16}, nil
	case renderer.FormatDepth32F:
		return texFormat{gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT, 4}, nil
	}
	return texFormat{}, fmt.Errorf("unsupported texture format %v", f)
}
