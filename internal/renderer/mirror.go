package renderer

import (
	"fmt"

	"MirrorShade/internal/logger"

	"go.uber.org/zap"
)

// UnitMirror is the texture unit the composite samples the reflection from.
const UnitMirror = 0

// MirrorCompositor renders the scene seen from the camera reflected in the
// horizontal plane y = Config.MirrorHeight into a reduced-resolution
// off-screen pipeline, then blends that image over the screen.
type MirrorCompositor struct {
	dev      Device
	screen   Screen
	config   Config
	pipeline *DeferredPipeline
	program  Program

	destroyed bool
}

func NewMirrorCompositor(dev Device, screen Screen, config Config) (*MirrorCompositor, error) {
	const op = "NewMirrorCompositor"
	if err := screen.Validate(); err != nil {
		return nil, &ResourceError{Op: op, Resource: "mirror pipeline", Err: err}
	}
	size := screen.Scaled(config.MirrorScale)
	pipeline, err := NewPipeline(dev, size.Width, size.Height, true, config)
	if err != nil {
		return nil, fmt.Errorf("mirror pipeline: %w", err)
	}
	pipeline.SetMirrored(true)

	program, err := dev.CreateProgram(MirrorProgramSource())
	if err != nil {
		pipeline.Destroy()
		return nil, &ResourceError{Op: op, Resource: "program " + ProgramMirror, Err: err}
	}

	logger.Log.Info("Mirror compositor created",
		zap.Int("width", size.Width),
		zap.Int("height", size.Height),
		zap.Float32("planeHeight", config.MirrorHeight),
		zap.Float32("reflectivity", config.MirrorReflectivity))
	return &MirrorCompositor{
		dev:      dev,
		screen:   screen,
		config:   config,
		pipeline: pipeline,
		program:  program,
	}, nil
}

// Pipeline is the off-screen pipeline the reflection is rendered with.
func (m *MirrorCompositor) Pipeline() *DeferredPipeline {
	return m.pipeline
}

// RenderReflection mirrors camera, runs a geometry and a light pass of scene
// under lights, and mirrors camera back. The camera is restored on every
// path, including errors and panics.
func (m *MirrorCompositor) RenderReflection(camera *Camera, scene Renderable, lights []Light) (err error) {
	height := m.config.MirrorHeight
	camera.MirrorInXZPlane(height)
	defer camera.MirrorInXZPlane(height)

	p := m.pipeline
	defer func() {
		if err == nil {
			return
		}
		switch p.State() {
		case PassGeometry:
			p.GeometryPassEnd()
		case PassLight:
			p.LightPassEnd()
		}
	}()

	if err := p.GeometryPassBegin(); err != nil {
		return fmt.Errorf("mirror geometry pass: %w", err)
	}
	scene.Render(camera)
	p.GeometryPassEnd()

	if err := p.LightPassBegin(camera); err != nil {
		return fmt.Errorf("mirror light pass: %w", err)
	}
	for _, light := range lights {
		if err := p.Shine(light); err != nil {
			return fmt.Errorf("mirror light pass: %w", err)
		}
	}
	p.LightPassEnd()
	return nil
}

// Composite alpha-blends the reflection over the screen framebuffer. The
// render state active before the call is restored afterwards.
func (m *MirrorCompositor) Composite() error {
	tex, err := m.pipeline.LightPassColorTexture()
	if err != nil {
		return fmt.Errorf("mirror composite: %w", err)
	}

	m.dev.BindFramebuffer(ScreenFramebuffer, m.screen.Width, m.screen.Height)
	restore := PushState(m.dev, compositeState)
	defer restore()

	m.dev.UseProgram(m.program)
	m.dev.BindTexture(UnitMirror, tex)
	if err := m.dev.SetUniform(m.program, "colorMap", int32(UnitMirror)); err != nil {
		return &ShaderError{Program: ProgramMirror, Uniform: "colorMap", Err: err}
	}
	if err := m.dev.SetUniform(m.program, "reflectivity", m.config.MirrorReflectivity); err != nil {
		return &ShaderError{Program: ProgramMirror, Uniform: "reflectivity", Err: err}
	}
	m.dev.DrawFullScreenQuad()
	return nil
}

func (m *MirrorCompositor) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.pipeline.Destroy()
	m.dev.DeleteProgram(m.program)
}
