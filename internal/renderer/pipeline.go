package renderer

import (
	"fmt"
	"math"

	"MirrorShade/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type PassState int

type uniformValue struct {
	name  string
	value any
}

const (
	PassIdle PassState = iota
	PassGeometry
	PassLight
)

func (s PassState) String() string {
	switch s {
	case PassIdle:
		return "idle"
	case PassGeometry:
		return "geometry"
	case PassLight:
		return "light"
	}
	return fmt.Sprintf("PassState(%d)", int(s))
}

// DeferredPipeline renders a frame in two phases against its own G-buffer:
// a geometry pass that rasterizes the scene into the attachments, followed by
// a light pass that shades the whole viewport once per light with additive
// blending.
type DeferredPipeline struct {
	dev    Device
	config Config
	width  int
	height int

	gbuffer *RenderTarget
	output  *RenderTarget // nil when the light pass targets the screen

	ambientProgram Program
	spotProgram    Program

	state           PassState
	geometryWritten bool // a geometry pass ran since the last light pass
	lightPassRan    bool
	mirrored        bool // light passes expect a mirrored camera
	restoreState    func()
	destroyed       bool
}

// NewScreenPipeline creates a pipeline whose G-buffer matches the screen and
// whose light pass renders straight to the default framebuffer.
func NewScreenPipeline(dev Device, screen Screen, config Config) (*DeferredPipeline, error) {
	if err := screen.Validate(); err != nil {
		return nil, &ResourceError{Op: "NewScreenPipeline", Resource: "gbuffer", Err: err}
	}
	return NewPipeline(dev, screen.Width, screen.Height, false, config)
}

// NewPipeline creates a pipeline with a width x height G-buffer. With offscreen
// set, the light pass renders into an owned color texture that downstream
// passes read through LightPassColorTexture.
//
// A pipeline expects an unmirrored camera. One that renders a reflection must
// call SetMirrored(true) before its first light pass, or LightPassBegin panics
// with a *StateError when handed a camera mirrored by MirrorInXZPlane.
func NewPipeline(dev Device, width, height int, offscreen bool, config Config) (*DeferredPipeline, error) {
	const op = "NewPipeline"
	p := &DeferredPipeline{
		dev:    dev,
		config: config,
		width:  width,
		height: height,
	}

	var cleanup Unwind
	gbuffer, err := NewRenderTarget(dev, "gbuffer", width, height, GBufferLayout)
	if err != nil {
		return nil, err
	}
	p.gbuffer = gbuffer
	cleanup.Add(gbuffer.Destroy)

	if offscreen {
		output, err := NewRenderTarget(dev, "lightpass", width, height, []AttachmentDesc{
			{Name: AttachmentOutput, Format: FormatRGBA16F},
		})
		if err != nil {
			cleanup.Unwind()
			return nil, err
		}
		p.output = output
		cleanup.Add(output.Destroy)
	}

	p.ambientProgram, err = dev.CreateProgram(AmbientProgramSource())
	if err != nil {
		cleanup.Unwind()
		return nil, &ResourceError{Op: op, Resource: "program " + ProgramAmbient, Err: err}
	}
	cleanup.Add(func() { dev.DeleteProgram(p.ambientProgram) })

	p.spotProgram, err = dev.CreateProgram(SpotProgramSource())
	if err != nil {
		cleanup.Unwind()
		return nil, &ResourceError{Op: op, Resource: "program " + ProgramSpot, Err: err}
	}
	cleanup.Add(func() { dev.DeleteProgram(p.spotProgram) })

	if err := p.bindSamplers(); err != nil {
		cleanup.Unwind()
		return nil, err
	}
	cleanup.Discard()

	logger.Log.Info("Deferred pipeline created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("offscreen", offscreen),
		zap.String("gbuffer", gbuffer.Label))
	return p, nil
}

// bindSamplers assigns the fixed texture units once; they never change.
func (p *DeferredPipeline) bindSamplers() error {
	uniforms := []struct {
		program Program
		name    string
		value   any
	}{
		{p.ambientProgram, "colorMap", int32(UnitColor)},
		{p.spotProgram, "positionMap", int32(UnitPosition)},
		{p.spotProgram, "normalMap", int32(UnitNormal)},
		{p.spotProgram, "colorMap", int32(UnitColor)},
		{p.spotProgram, "shadowMap", int32(UnitShadow)},
		{p.spotProgram, "shadowBias", p.config.ShadowBias},
	}
	for _, u := range uniforms {
		if err := p.setUniform(u.program, u.name, u.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *DeferredPipeline) setUniform(program Program, name string, value any) error {
	if err := p.dev.SetUniform(program, name, value); err != nil {
		return &ShaderError{Program: p.programName(program), Uniform: name, Err: err}
	}
	return nil
}

func (p *DeferredPipeline) programName(program Program) string {
	switch program {
	case p.ambientProgram:
		return ProgramAmbient
	case p.spotProgram:
		return ProgramSpot
	}
	return fmt.Sprintf("program %d", program)
}

func (p *DeferredPipeline) Size() (width, height int) {
	return p.width, p.height
}

func (p *DeferredPipeline) State() PassState {
	return p.state
}

// SetMirrored declares whether light passes of this pipeline render the
// mirrored scene. LightPassBegin panics when the camera disagrees, which
// catches an odd number of MirrorInXZPlane calls within a frame.
func (p *DeferredPipeline) SetMirrored(mirrored bool) {
	p.mirrored = mirrored
}

// GeometryPassBegin binds the G-buffer, applies the geometry render state and
// clears all attachments. The caller then renders opaque geometry with the
// material program.
func (p *DeferredPipeline) GeometryPassBegin() error {
	const op = "GeometryPassBegin"
	if p.destroyed {
		return &StateError{Op: op, Msg: "pipeline", Err: ErrDestroyed}
	}
	switch p.state {
	case PassGeometry:
		stateViolation(op, "geometry pass already in progress")
	case PassLight:
		p.LightPassEnd()
	}
	if err := p.gbuffer.Bind(); err != nil {
		return err
	}
	p.restoreState = PushState(p.dev, geometryPassState)
	p.dev.Clear(ClearColor|ClearDepth, mgl32.Vec4{})
	p.state = PassGeometry
	p.geometryWritten = true
	return nil
}

// GeometryPassEnd restores the render state that was active before the pass.
func (p *DeferredPipeline) GeometryPassEnd() {
	if p.state != PassGeometry {
		stateViolation("GeometryPassEnd", "no geometry pass in progress (state %s)", p.state)
	}
	p.endScope()
	p.state = PassIdle
}

// LightPassBegin switches to the output target and prepares shading of the
// G-buffer written by the preceding geometry pass as seen from camera.
func (p *DeferredPipeline) LightPassBegin(camera *Camera) error {
	const op = "LightPassBegin"
	if p.destroyed {
		return &StateError{Op: op, Msg: "pipeline", Err: ErrDestroyed}
	}
	if p.state == PassLight {
		stateViolation(op, "light pass already in progress")
	}
	if !p.geometryWritten {
		stateViolation(op, "no geometry pass precedes this light pass")
	}
	if camera.Mirrored() != p.mirrored {
		stateViolation(op, "camera mirrored=%v but pipeline expects mirrored=%v", camera.Mirrored(), p.mirrored)
	}
	if p.state == PassGeometry {
		p.GeometryPassEnd()
	}

	if p.output != nil {
		if err := p.output.Bind(); err != nil {
			return err
		}
	} else {
		p.dev.BindFramebuffer(ScreenFramebuffer, p.width, p.height)
	}
	p.restoreState = PushState(p.dev, lightPassState)
	p.dev.Clear(ClearColor, p.config.ClearColor)

	for _, binding := range []struct {
		unit int
		name string
	}{
		{UnitPosition, AttachmentPosition},
		{UnitNormal, AttachmentNormal},
		{UnitColor, AttachmentColor},
	} {
		tex, ok := p.gbuffer.Attachment(binding.name)
		if !ok {
			p.endScope()
			return &StateError{Op: op, Msg: "gbuffer attachment " + binding.name, Err: ErrDestroyed}
		}
		p.dev.BindTexture(binding.unit, tex)
	}

	p.dev.UseProgram(p.spotProgram)
	if err := p.setUniform(p.spotProgram, "inverseViewProjection", camera.GetInverseViewProjection()); err != nil {
		p.endScope()
		return err
	}

	p.state = PassLight
	p.geometryWritten = false
	p.lightPassRan = true
	return nil
}

// LightPassEnd restores the render state and returns the pipeline to idle.
// The output texture stays readable until the next light pass.
func (p *DeferredPipeline) LightPassEnd() {
	if p.state != PassLight {
		stateViolation("LightPassEnd", "no light pass in progress (state %s)", p.state)
	}
	p.endScope()
	p.state = PassIdle
}

func (p *DeferredPipeline) endScope() {
	if p.restoreState != nil {
		p.restoreState()
		p.restoreState = nil
	}
}

// Shine shades the G-buffer with one light.
func (p *DeferredPipeline) Shine(light Light) error {
	switch l := light.(type) {
	case *AmbientLight:
		return p.ShineAmbientLight(l)
	case *SpotLight:
		return p.ShineSpotLight(l)
	default:
		return fmt.Errorf("unsupported light %T", light)
	}
}

// ShineAmbientLight adds intensity * color * diffuse over the whole output.
func (p *DeferredPipeline) ShineAmbientLight(light *AmbientLight) error {
	p.requireLightPass("ShineAmbientLight")
	p.dev.UseProgram(p.ambientProgram)
	if err := p.setUniform(p.ambientProgram, "lightColor", light.Color); err != nil {
		return err
	}
	if err := p.setUniform(p.ambientProgram, "lightIntensity", light.Intensity); err != nil {
		return err
	}
	p.dev.DrawFullScreenQuad()
	return nil
}

// ShineSpotLight adds the attenuated, cone-limited diffuse and specular
// contribution of light, masked by its shadow map when it has one.
func (p *DeferredPipeline) ShineSpotLight(light *SpotLight) error {
	p.requireLightPass("ShineSpotLight")
	prog := p.spotProgram
	p.dev.UseProgram(prog)

	uniforms := []uniformValue{
		{"lightColor", light.Color},
		{"lightIntensity", light.Intensity},
		{"lightPosition", light.Position},
		{"lightDirection", light.Direction},
		{"cutoff", float32(math.Cos(float64(light.CutoffAngle)))},
		{"attenuationConstant", light.Attenuation.Constant},
		{"attenuationLinear", light.Attenuation.Linear},
		{"attenuationExp", light.Attenuation.Exponential},
	}
	if shadow := light.Shadow(); shadow != nil {
		uniforms = append(uniforms,
			uniformValue{"shadowsEnabled", int32(1)},
			uniformValue{"shadowViewProjection", shadow.ViewProjection()})
		p.dev.BindTexture(UnitShadow, shadow.DepthTexture())
	} else {
		uniforms = append(uniforms, uniformValue{"shadowsEnabled", int32(0)})
	}

	for _, u := range uniforms {
		if err := p.setUniform(prog, u.name, u.value); err != nil {
			return err
		}
	}
	p.dev.DrawFullScreenQuad()
	return nil
}

func (p *DeferredPipeline) requireLightPass(op string) {
	if p.state != PassLight {
		stateViolation(op, "called outside a light pass (state %s)", p.state)
	}
}

// LightPassColorTexture returns the texture the light pass rendered into.
func (p *DeferredPipeline) LightPassColorTexture() (Texture, error) {
	const op = "LightPassColorTexture"
	if p.output == nil {
		return Texture{}, &StateError{Op: op, Msg: "screen pipeline", Err: ErrNoColorTarget}
	}
	if p.destroyed {
		return Texture{}, &StateError{Op: op, Msg: "pipeline", Err: ErrDestroyed}
	}
	if !p.lightPassRan {
		return Texture{}, &StateError{Op: op, Msg: "output not written yet", Err: ErrNoLightPass}
	}
	tex, _ := p.output.Attachment(AttachmentOutput)
	return tex, nil
}

// GBuffer exposes the attachments for read-only use after a geometry pass.
func (p *DeferredPipeline) GBuffer() *RenderTarget {
	return p.gbuffer
}

func (p *DeferredPipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.endScope()
	p.destroyed = true
	p.state = PassIdle
	p.gbuffer.Destroy()
	if p.output != nil {
		p.output.Destroy()
	}
	p.dev.DeleteProgram(p.ambientProgram)
	p.dev.DeleteProgram(p.spotProgram)
	logger.Log.Info("Deferred pipeline destroyed", zap.Int("width", p.width), zap.Int("height", p.height))
}
