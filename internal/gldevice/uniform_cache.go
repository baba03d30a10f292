package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformCache caches uniform locations to avoid repeated gl.GetUniformLocation calls
type UniformCache struct {
	locations map[string]int32
	program   uint32
}

// NewUniformCache creates a new uniform cache for a shader program
func NewUniformCache(program uint32) *UniformCache {
	return &UniformCache{
		locations: make(map[string]int32),
		program:   program,
	}
}

// GetLocation returns the cached uniform location or fetches and caches it.
// Uniforms the linker removed or never saw come back as -1.
func (uc *UniformCache) GetLocation(name string) int32 {
	if loc, exists := uc.locations[name]; exists {
		return loc
	}

	loc := gl.GetUniformLocation(uc.program, gl.Str(name+"\x00"))
	uc.locations[name] = loc
	return loc
}

// Set uploads value with glProgramUniform, so the program does not have to be
// bound. A missing uniform is an error rather than a silent no-op.
func (uc *UniformCache) Set(name string, value any) error {
	loc := uc.GetLocation(name)
	if loc == -1 {
		return fmt.Errorf("program %d has no active uniform %q", uc.program, name)
	}
	switch v := value.(type) {
	case float32:
		gl.ProgramUniform1f(uc.program, loc, v)
	case int32:
		gl.ProgramUniform1i(uc.program, loc, v)
	case mgl32.Vec3:
		gl.ProgramUniform3f(uc.program, loc, v.X(), v.Y(), v.Z())
	case mgl32.Vec4:
		gl.ProgramUniform4f(uc.program, loc, v.X(), v.Y(), v.Z(), v.W())
	case mgl32.Mat4:
		gl.ProgramUniformMatrix4fv(uc.program, loc, 1, false, &v[0])
	default:
		return fmt.Errorf("uniform %q: unsupported type %T", name, value)
	}
	return nil
}

// Clear clears the cache (call when shader program changes)
func (uc *UniformCache) Clear() {
	uc.locations = make(map[string]int32)
}
