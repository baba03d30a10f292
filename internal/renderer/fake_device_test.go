package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeDevice records calls instead of drawing. Failures are injected by name.
type fakeDevice struct {
	nextID       uint32
	textures     map[uint32]TextureDesc
	framebuffers map[Framebuffer]string
	programs     map[Program]string
	state        RenderState
	bound        Framebuffer
	viewport     [2]int
	units        map[int]Texture
	current      Program
	uniforms     map[Program]map[string]any

	failTextureAt   int // fail the nth CreateTexture call, 1-based; 0 never
	textureCalls    int
	failFramebuffer bool
	failProgram     string
	rejectUniform   string
	clears          []ClearMask
	quads           int
	appliedStates   []RenderState
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures:     make(map[uint32]TextureDesc),
		framebuffers: make(map[Framebuffer]string),
		programs:     make(map[Program]string),
		units:        make(map[int]Texture),
		uniforms:     make(map[Program]map[string]any),
		state:        DefaultRenderState,
	}
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	d.textureCalls++
	if d.failTextureAt != 0 && d.textureCalls == d.failTextureAt {
		return Texture{}, errors.New("out of memory")
	}
	id := d.id()
	d.textures[id] = desc
	return Texture{ID: id, Width: desc.Width, Height: desc.Height, Format: desc.Format}, nil
}

func (d *fakeDevice) DeleteTexture(tex Texture) {
	delete(d.textures, tex.ID)
}

func (d *fakeDevice) CreateFramebuffer(label string, colors []Texture, depth *Texture) (Framebuffer, error) {
	if d.failFramebuffer {
		return 0, fmt.Errorf("framebuffer %s incomplete", label)
	}
	fb := Framebuffer(d.id())
	d.framebuffers[fb] = label
	return fb, nil
}

func (d *fakeDevice) DeleteFramebuffer(fb Framebuffer) {
	delete(d.framebuffers, fb)
}

func (d *fakeDevice) BindFramebuffer(fb Framebuffer, width, height int) {
	d.bound = fb
	d.viewport = [2]int{width, height}
}

func (d *fakeDevice) Clear(mask ClearMask, color mgl32.Vec4) {
	d.clears = append(d.clears, mask)
}

func (d *fakeDevice) ApplyState(state RenderState) {
	d.state = state
	d.appliedStates = append(d.appliedStates, state)
}

func (d *fakeDevice) State() RenderState {
	return d.state
}

func (d *fakeDevice) CreateProgram(src ProgramSource) (Program, error) {
	if src.Name == d.failProgram {
		return 0, &ShaderError{Program: src.Name, Err: errors.New("link failed")}
	}
	p := Program(d.id())
	d.programs[p] = src.Name
	d.uniforms[p] = make(map[string]any)
	return p, nil
}

func (d *fakeDevice) DeleteProgram(p Program) {
	delete(d.programs, p)
	delete(d.uniforms, p)
}

func (d *fakeDevice) UseProgram(p Program) {
	d.current = p
}

func (d *fakeDevice) SetUniform(p Program, name string, value any) error {
	if name == d.rejectUniform {
		return fmt.Errorf("uniform %s not found", name)
	}
	values, ok := d.uniforms[p]
	if !ok {
		return fmt.Errorf("unknown program %d", p)
	}
	values[name] = value
	return nil
}

func (d *fakeDevice) BindTexture(unit int, tex Texture) {
	d.units[unit] = tex
}

func (d *fakeDevice) DrawFullScreenQuad() {
	d.quads++
}

func (d *fakeDevice) uniform(programName, uniform string) (any, bool) {
	for p, name := range d.programs {
		if name == programName {
			v, ok := d.uniforms[p][uniform]
			return v, ok
		}
	}
	return nil, false
}

func (d *fakeDevice) live() (textures, framebuffers, programs int) {
	return len(d.textures), len(d.framebuffers), len(d.programs)
}
