package renderer

import "github.com/go-gl/mathgl/mgl32"

type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth32F
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatRGBA32F:
		return "RGBA32F"
	case FormatDepth32F:
		return "DEPTH32F"
	}
	return "unknown"
}

// IsDepth reports whether the format can back a depth attachment.
func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth32F
}

type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
}

// Texture is a device texture handle together with the description it was
// created from. The zero value is not a valid texture.
type Texture struct {
	ID     uint32
	Width  int
	Height int
	Format TextureFormat
}

func (t Texture) Valid() bool { return t.ID != 0 }

type Framebuffer uint32

// ScreenFramebuffer is the default framebuffer presented to the window.
const ScreenFramebuffer Framebuffer = 0

type Program uint32

// ProgramSource names a shader program and carries its GLSL sources. Devices
// that do not compile GLSL select their implementation by Name.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}

type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// Device is the graphics context capability the pipeline issues all GPU work
// through. Implementations are not safe for concurrent use; every call must come
// from the goroutine that owns the context.
type Device interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	DeleteTexture(tex Texture)
	// CreateFramebuffer attaches colors in draw-buffer order and an optional
	// depth texture.
	CreateFramebuffer(label string, colors []Texture, depth *Texture) (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)
	// BindFramebuffer makes fb the draw target and sets the viewport to width x height.
	BindFramebuffer(fb Framebuffer, width, height int)
	// Clear honours the current color and depth write masks.
	Clear(mask ClearMask, color mgl32.Vec4)
	ApplyState(state RenderState)
	State() RenderState

	CreateProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	// SetUniform uploads value (float32, int32, mgl32.Vec3, mgl32.Vec4 or
	// mgl32.Mat4) to a uniform of p. Unknown uniforms are an error.
	SetUniform(p Program, name string, value any) error
	BindTexture(unit int, tex Texture)
	DrawFullScreenQuad()
}

// Renderable draws itself as seen from camera. It is invoked once per shadow
// caster, once for the mirrored pass and once for the primary pass of every
// frame and must not keep state between invocations.
type Renderable interface {
	Render(camera *Camera)
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(camera *Camera)

func (f RenderFunc) Render(camera *Camera) { f(camera) }
