package renderer

import (
	"fmt"

	"MirrorShade/internal/logger"

	"go.uber.org/zap"
)

// FrameStats counts the passes of the last RenderFrame.
type FrameStats struct {
	Frame          uint64
	ShadowPasses   int
	GeometryPasses int
	LightPasses    int
	Composites     int
	Lights         int
}

// SceneRenderer drives one frame end to end: a shadow pass per shadowed spot
// light, the mirrored geometry and light passes, the primary geometry and
// light passes, and finally the mirror composite.
type SceneRenderer struct {
	dev      Device
	screen   Screen
	config   Config
	pipeline *DeferredPipeline
	mirror   *MirrorCompositor // nil unless Config.EnableMirror

	frame uint64
	stats FrameStats
}

func NewSceneRenderer(dev Device, screen Screen, config Config) (*SceneRenderer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("renderer config: %w", err)
	}
	pipeline, err := NewScreenPipeline(dev, screen, config)
	if err != nil {
		return nil, err
	}
	r := &SceneRenderer{
		dev:      dev,
		screen:   screen,
		config:   config,
		pipeline: pipeline,
	}
	if config.EnableMirror {
		r.mirror, err = NewMirrorCompositor(dev, screen, config)
		if err != nil {
			pipeline.Destroy()
			return nil, err
		}
	}
	return r, nil
}

func (r *SceneRenderer) Pipeline() *DeferredPipeline {
	return r.pipeline
}

// Mirror returns the compositor, or nil when mirroring is disabled.
func (r *SceneRenderer) Mirror() *MirrorCompositor {
	return r.mirror
}

func (r *SceneRenderer) Stats() FrameStats {
	return r.stats
}

// RenderFrame renders scene and ground from camera into the screen
// framebuffer. ground may be nil; it is drawn in the primary pass only and
// neither casts shadows nor appears in the reflection. Presenting the frame is
// left to the caller.
func (r *SceneRenderer) RenderFrame(camera *Camera, scene, ground Renderable, lights []Light) error {
	r.frame++
	stats := FrameStats{Frame: r.frame, Lights: len(lights)}

	for _, light := range lights {
		spot, ok := light.(*SpotLight)
		if !ok || spot.Shadow() == nil {
			continue
		}
		spot.SyncShadowCamera()
		if err := spot.CastShadows(scene); err != nil {
			return fmt.Errorf("shadow pass: %w", err)
		}
		stats.ShadowPasses++
	}

	if r.mirror != nil {
		if err := r.mirror.RenderReflection(camera, scene, lights); err != nil {
			return err
		}
		stats.GeometryPasses++
		stats.LightPasses++
	}

	if err := r.pipeline.GeometryPassBegin(); err != nil {
		return fmt.Errorf("geometry pass: %w", err)
	}
	scene.Render(camera)
	if ground != nil {
		ground.Render(camera)
	}
	r.pipeline.GeometryPassEnd()
	stats.GeometryPasses++

	if err := r.pipeline.LightPassBegin(camera); err != nil {
		return fmt.Errorf("light pass: %w", err)
	}
	for _, light := range lights {
		if err := r.pipeline.Shine(light); err != nil {
			r.pipeline.LightPassEnd()
			return fmt.Errorf("light pass: %w", err)
		}
	}
	r.pipeline.LightPassEnd()
	stats.LightPasses++

	if r.mirror != nil {
		if err := r.mirror.Composite(); err != nil {
			return err
		}
		stats.Composites++
	}

	if state := r.dev.State(); state != DefaultRenderState {
		logger.Log.Warn("Render state leaked out of frame", zap.Uint64("frame", r.frame), zap.Any("state", state))
		r.dev.ApplyState(DefaultRenderState)
	}

	r.stats = stats
	if r.config.Debug {
		logger.Log.Debug("Frame rendered",
			zap.Uint64("frame", stats.Frame),
			zap.Int("lights", stats.Lights),
			zap.Int("shadowPasses", stats.ShadowPasses),
			zap.Int("geometryPasses", stats.GeometryPasses),
			zap.Int("lightPasses", stats.LightPasses),
			zap.Int("composites", stats.Composites))
	}
	return nil
}

func (r *SceneRenderer) Destroy() {
	if r.mirror != nil {
		r.mirror.Destroy()
	}
	r.pipeline.Destroy()
}
