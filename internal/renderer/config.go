package renderer

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Shadow defaults.
const (
	DefaultShadowResolution         = 1024
	DefaultShadowNear       float32 = 0.1
	DefaultShadowFar        float32 = 20.0
	DefaultShadowBias       float32 = 0.0005
)

// Config holds the tunables of the deferred renderer. Everything here is
// renderer-wide; nothing is configured per light.
type Config struct {
	// Shadows
	ShadowBias       float32 `json:"shadowBias"`       // Depth bias of the shadow comparison (acne vs. peter-panning)
	ShadowResolution int     `json:"shadowResolution"` // Side of the square shadow map in texels
	ShadowFar        float32 `json:"shadowFar"`        // Far plane of the shadow cameras

	// Mirror
	EnableMirror       bool    `json:"enableMirror"`
	MirrorScale        float32 `json:"mirrorScale"`        // Mirror pipeline resolution relative to the screen
	MirrorHeight       float32 `json:"mirrorHeight"`       // Height of the horizontal mirror plane
	MirrorReflectivity float32 `json:"mirrorReflectivity"` // Alpha multiplier of the composited reflection

	// Scene
	AmbientIntensity float32 `json:"ambientIntensity"` // Intensity of the demo's white ambient light

	// Output
	ClearColor mgl32.Vec4 `json:"clearColor"`
	Debug      bool       `json:"debug"`
}

// DefaultConfig returns sensible defaults for all renderer features
func DefaultConfig() Config {
	return Config{
		ShadowBias:       DefaultShadowBias,
		ShadowResolution: DefaultShadowResolution,
		ShadowFar:        DefaultShadowFar,

		EnableMirror:       true,
		MirrorScale:        0.5,
		MirrorHeight:       0.0,
		MirrorReflectivity: 0.5,

		AmbientIntensity: 0.2,
		ClearColor:       mgl32.Vec4{0, 0, 0, 0},
	}
}

// HighQualityConfig trades frame time for sharper shadows and reflections.
func HighQualityConfig() Config {
	config := DefaultConfig()
	config.ShadowResolution = 2048
	config.ShadowBias = 0.00025
	config.MirrorScale = 1.0
	return config
}

// PerformanceConfig keeps every pass but shrinks the off-screen targets.
func PerformanceConfig() Config {
	config := DefaultConfig()
	config.ShadowResolution = 512
	config.ShadowBias = 0.001
	config.MirrorScale = 0.25
	return config
}

// LoadConfig reads a JSON config. Fields missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

func (c Config) Validate() error {
	if c.ShadowBias < 0 || math.IsNaN(float64(c.ShadowBias)) {
		return fmt.Errorf("shadowBias must be >= 0, got %v", c.ShadowBias)
	}
	if c.ShadowResolution <= 0 {
		return fmt.Errorf("shadowResolution must be positive, got %d", c.ShadowResolution)
	}
	if c.ShadowFar <= DefaultShadowNear {
		return fmt.Errorf("shadowFar must exceed %v, got %v", DefaultShadowNear, c.ShadowFar)
	}
	if c.AmbientIntensity < 0 {
		return fmt.Errorf("ambientIntensity must be >= 0, got %v", c.AmbientIntensity)
	}
	if c.EnableMirror {
		if c.MirrorScale <= 0 || c.MirrorScale > 1 {
			return fmt.Errorf("mirrorScale must be in (0, 1], got %v", c.MirrorScale)
		}
		if c.MirrorReflectivity < 0 || c.MirrorReflectivity > 1 {
			return fmt.Errorf("mirrorReflectivity must be in [0, 1], got %v", c.MirrorReflectivity)
		}
	}
	return nil
}
