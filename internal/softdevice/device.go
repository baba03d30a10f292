// Package softdevice is a CPU implementation of renderer.Device. It evaluates
// the pipeline's programs per pixel over float32 textures so shading results
// can be checked without a GL context, the way httptest stands in for a
// network server.
//
// Sampling is nearest-neighbour, RGBA8 targets are clamped and quantized to
// 1/255, and the float formats keep full float32 precision.
package softdevice

import (
	"fmt"
	"reflect"
	"runtime"

	"MirrorShade/internal/logger"
	"MirrorShade/internal/renderer"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// rowPool shades rows concurrently. Rows never share a pixel, and kernels
// only read textures other than the bound attachments.
var rowPool = pond.NewPool(runtime.GOMAXPROCS(0))

// eachRow runs fn for rows 0..h-1 and returns once all have finished.
func eachRow(h int, fn func(y int)) {
	group := rowPool.NewGroup()
	for y := 0; y < h; y++ {
		group.Submit(func() { fn(y) })
	}
	if err := group.Wait(); err != nil {
		panic(err)
	}
}

type texture struct {
	desc   renderer.TextureDesc
	texels []mgl32.Vec4 // row-major, row 0 at the bottom; depth lives in X
}

func (t *texture) index(x, y int) int {
	return y*t.desc.Width + x
}

type framebuffer struct {
	label  string
	colors []*texture
	depth  *texture
}

// Fragment is one pixel produced by Fill: a value per color attachment in
// draw-buffer order and a window-space depth in [0, 1].
type Fragment struct {
	Colors []mgl32.Vec4
	Depth  float32
}

// Stats counts device calls since creation or the last ResetStats.
type Stats struct {
	Clears           int
	Quads            int
	Fills            int
	FramebufferBinds int
	ProgramSwitches  int
}

type Device struct {
	textures     map[uint32]*texture
	framebuffers map[renderer.Framebuffer]*framebuffer
	programs     map[renderer.Program]*program
	nextID       uint32

	screen   *framebuffer
	target   *framebuffer
	viewport [2]int
	state    renderer.RenderState
	current  *program
	units    map[int]*texture
	stats    Stats
}

var _ renderer.Device = (*Device)(nil)

// New creates a device whose default framebuffer is an RGBA8 color buffer
// with a depth buffer, both width x height.
func New(width, height int) *Device {
	d := &Device{
		textures:     make(map[uint32]*texture),
		framebuffers: make(map[renderer.Framebuffer]*framebuffer),
		programs:     make(map[renderer.Program]*program),
		units:        make(map[int]*texture),
		state:        renderer.DefaultRenderState,
	}
	d.screen = &framebuffer{
		label:  "screen",
		colors: []*texture{newTexture(renderer.TextureDesc{Label: "screen/color", Width: width, Height: height, Format: renderer.FormatRGBA8})},
		depth:  newTexture(renderer.TextureDesc{Label: "screen/depth", Width: width, Height: height, Format: renderer.FormatDepth32F}),
	}
	fillDepth(d.screen.depth, 1)
	d.target = d.screen
	d.viewport = [2]int{width, height}

	logger.Log.Debug("Software device created", zap.Int("width", width), zap.Int("height", height))
	return d
}

func newTexture(desc renderer.TextureDesc) *texture {
	return &texture{desc: desc, texels: make([]mgl32.Vec4, desc.Width*desc.Height)}
}

func fillDepth(t *texture, depth float32) {
	for i := range t.texels {
		t.texels[i] = mgl32.Vec4{depth, 0, 0, 0}
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) CreateTexture(desc renderer.TextureDesc) (renderer.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return renderer.Texture{}, fmt.Errorf("texture %s: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	tex := newTexture(desc)
	if desc.Format.IsDepth() {
		fillDepth(tex, 1)
	}
	id := d.id()
	d.textures[id] = tex
	return renderer.Texture{ID: id, Width: desc.Width, Height: desc.Height, Format: desc.Format}, nil
}

func (d *Device) DeleteTexture(tex renderer.Texture) {
	t, ok := d.textures[tex.ID]
	if !ok {
		return
	}
	for unit, bound := range d.units {
		if bound == t {
			delete(d.units, unit)
		}
	}
	delete(d.textures, tex.ID)
}

func (d *Device) CreateFramebuffer(label string, colors []renderer.Texture, depth *renderer.Texture) (renderer.Framebuffer, error) {
	fb := &framebuffer{label: label}
	width, height := -1, -1
	attach := func(handle renderer.Texture) (*texture, error) {
		t, ok := d.textures[handle.ID]
		if !ok {
			return nil, fmt.Errorf("framebuffer %s: unknown texture %d", label, handle.ID)
		}
		if width < 0 {
			width, height = t.desc.Width, t.desc.Height
		} else if t.desc.Width != width || t.desc.Height != height {
			return nil, fmt.Errorf("framebuffer %s: incomplete, attachment %s is %dx%d, want %dx%d",
				label, t.desc.Label, t.desc.Width, t.desc.Height, width, height)
		}
		return t, nil
	}
	for _, handle := range colors {
		if handle.Format.IsDepth() {
			return 0, fmt.Errorf("framebuffer %s: depth format on color attachment", label)
		}
		t, err := attach(handle)
		if err != nil {
			return 0, err
		}
		fb.colors = append(fb.colors, t)
	}
	if depth != nil {
		if !depth.Format.IsDepth() {
			return 0, fmt.Errorf("framebuffer %s: color format on depth attachment", label)
		}
		t, err := attach(*depth)
		if err != nil {
			return 0, err
		}
		fb.depth = t
	}
	if len(fb.colors) == 0 && fb.depth == nil {
		return 0, fmt.Errorf("framebuffer %s: no attachments", label)
	}
	handle := renderer.Framebuffer(d.id())
	d.framebuffers[handle] = fb
	return handle, nil
}

func (d *Device) DeleteFramebuffer(fb renderer.Framebuffer) {
	if f, ok := d.framebuffers[fb]; ok {
		if d.target == f {
			d.target = d.screen
		}
		delete(d.framebuffers, fb)
	}
}

func (d *Device) BindFramebuffer(fb renderer.Framebuffer, width, height int) {
	d.stats.FramebufferBinds++
	d.viewport = [2]int{width, height}
	if fb == renderer.ScreenFramebuffer {
		d.target = d.screen
		return
	}
	f, ok := d.framebuffers[fb]
	if !ok {
		panic(fmt.Sprintf("softdevice: bind of unknown framebuffer %d", fb))
	}
	d.target = f
}

// Clear honours the color and depth write masks and ignores the viewport,
// like glClear.
func (d *Device) Clear(mask renderer.ClearMask, color mgl32.Vec4) {
	d.stats.Clears++
	if mask&renderer.ClearColor != 0 && d.state.ColorWrite {
		for _, t := range d.target.colors {
			v := quantize(t.desc.Format, color)
			for i := range t.texels {
				t.texels[i] = v
			}
		}
	}
	if mask&renderer.ClearDepth != 0 && d.state.DepthWrite && d.target.depth != nil {
		fillDepth(d.target.depth, 1)
	}
}

func (d *Device) ApplyState(state renderer.RenderState) {
	d.state = state
}

func (d *Device) State() renderer.RenderState {
	return d.state
}

func (d *Device) CreateProgram(src renderer.ProgramSource) (renderer.Program, error) {
	p, err := newProgram(src.Name)
	if err != nil {
		return 0, err
	}
	handle := renderer.Program(d.id())
	d.programs[handle] = p
	return handle, nil
}

func (d *Device) DeleteProgram(handle renderer.Program) {
	if p, ok := d.programs[handle]; ok {
		if d.current == p {
			d.current = nil
		}
		delete(d.programs, handle)
	}
}

func (d *Device) UseProgram(handle renderer.Program) {
	d.stats.ProgramSwitches++
	d.current = d.programs[handle]
}

func (d *Device) SetUniform(handle renderer.Program, name string, value any) error {
	p, ok := d.programs[handle]
	if !ok {
		return fmt.Errorf("unknown program %d", handle)
	}
	decl, ok := p.declared[name]
	if !ok {
		return fmt.Errorf("program %s has no active uniform %q", p.name, name)
	}
	if reflect.TypeOf(decl) != reflect.TypeOf(value) {
		return fmt.Errorf("uniform %q is %T, got %T", name, decl, value)
	}
	p.values[name] = value
	return nil
}

func (d *Device) BindTexture(unit int, tex renderer.Texture) {
	t, ok := d.textures[tex.ID]
	if !ok {
		delete(d.units, unit)
		return
	}
	d.units[unit] = t
}

// DrawFullScreenQuad runs the current program once per pixel of the viewport.
// The quad lies at depth 0.5.
func (d *Device) DrawFullScreenQuad() {
	d.stats.Quads++
	if d.current == nil || d.current.kernel == nil {
		return
	}
	w, h := d.extent()
	eachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			uv := mgl32.Vec2{(float32(x) + 0.5) / float32(d.viewport[0]), (float32(y) + 0.5) / float32(d.viewport[1])}
			color, ok := d.current.kernel(d, d.current, uv)
			if !ok {
				continue
			}
			d.writeFragment(x, y, Fragment{Colors: []mgl32.Vec4{color}, Depth: 0.5})
		}
	})
}

// Fill rasterizes by asking shade for the fragment at every pixel center of
// the viewport, given in normalized device coordinates. It stands in for
// drawing geometry: depth test, depth write, color mask and blending apply as
// they would to a draw call. shade is called concurrently from several
// goroutines.
func (d *Device) Fill(shade func(ndc mgl32.Vec2) (Fragment, bool)) {
	d.stats.Fills++
	w, h := d.extent()
	eachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			ndc := mgl32.Vec2{
				(float32(x)+0.5)/float32(d.viewport[0])*2 - 1,
				(float32(y)+0.5)/float32(d.viewport[1])*2 - 1,
			}
			frag, ok := shade(ndc)
			if !ok || frag.Depth < 0 || frag.Depth > 1 {
				continue
			}
			d.writeFragment(x, y, frag)
		}
	})
}

// extent is the viewport clipped to the bound attachments.
func (d *Device) extent() (int, int) {
	w, h := d.viewport[0], d.viewport[1]
	for _, t := range d.attachments() {
		if t.desc.Width < w {
			w = t.desc.Width
		}
		if t.desc.Height < h {
			h = t.desc.Height
		}
	}
	return w, h
}

func (d *Device) attachments() []*texture {
	all := append([]*texture(nil), d.target.colors...)
	if d.target.depth != nil {
		all = append(all, d.target.depth)
	}
	return all
}

func (d *Device) writeFragment(x, y int, frag Fragment) {
	if depth := d.target.depth; depth != nil && d.state.DepthTest != renderer.DepthTestNone {
		stored := depth.texels[depth.index(x, y)].X()
		switch d.state.DepthTest {
		case renderer.DepthTestLess:
			if !(frag.Depth < stored) {
				return
			}
		case renderer.DepthTestLessEqual:
			if !(frag.Depth <= stored) {
				return
			}
		}
	}
	if depth := d.target.depth; depth != nil && d.state.DepthWrite {
		depth.texels[depth.index(x, y)] = mgl32.Vec4{frag.Depth, 0, 0, 0}
	}
	if !d.state.ColorWrite {
		return
	}
	for i, t := range d.target.colors {
		if i >= len(frag.Colors) {
			break
		}
		idx := t.index(x, y)
		t.texels[idx] = quantize(t.desc.Format, blend(d.state.Blend, frag.Colors[i], t.texels[idx]))
	}
}

func blend(mode renderer.BlendMode, src, dst mgl32.Vec4) mgl32.Vec4 {
	switch mode {
	case renderer.BlendAdditive:
		return src.Add(dst)
	case renderer.BlendAlpha:
		a := src.W()
		return src.Mul(a).Add(dst.Mul(1 - a))
	}
	return src
}

func quantize(format renderer.TextureFormat, v mgl32.Vec4) mgl32.Vec4 {
	if format != renderer.FormatRGBA8 {
		return v
	}
	for i := range v {
		c := mgl32.Clamp(v[i], 0, 1)
		v[i] = float32(int(c*255+0.5)) / 255
	}
	return v
}

func (d *Device) sample(unit int32, uv mgl32.Vec2) mgl32.Vec4 {
	t, ok := d.units[int(unit)]
	if !ok {
		return mgl32.Vec4{}
	}
	x := clampIndex(int(uv.X()*float32(t.desc.Width)), t.desc.Width)
	y := clampIndex(int(uv.Y()*float32(t.desc.Height)), t.desc.Height)
	return t.texels[t.index(x, y)]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Pixel reads a texel back; ok is false for unknown textures or coordinates
// outside the texture.
func (d *Device) Pixel(tex renderer.Texture, x, y int) (mgl32.Vec4, bool) {
	t, ok := d.textures[tex.ID]
	if !ok || x < 0 || y < 0 || x >= t.desc.Width || y >= t.desc.Height {
		return mgl32.Vec4{}, false
	}
	return t.texels[t.index(x, y)], true
}

// ScreenPixel reads the default framebuffer's color buffer.
func (d *Device) ScreenPixel(x, y int) mgl32.Vec4 {
	t := d.screen.colors[0]
	return t.texels[t.index(x, y)]
}

func (d *Device) ScreenSize() (int, int) {
	t := d.screen.colors[0]
	return t.desc.Width, t.desc.Height
}

func (d *Device) Stats() Stats {
	return d.stats
}

func (d *Device) ResetStats() {
	d.stats = Stats{}
}

// Live counts the textures, framebuffers and programs not yet deleted.
func (d *Device) Live() (textures, framebuffers, programs int) {
	return len(d.textures), len(d.framebuffers), len(d.programs)
}
