package renderer

import (
	"fmt"

	"MirrorShade/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// G-buffer attachment names, in draw-buffer order.
const (
	AttachmentPosition = "position"
	AttachmentNormal   = "normal"
	AttachmentColor    = "color"
	AttachmentDepth    = "depth"
	AttachmentOutput   = "output"
)

type AttachmentDesc struct {
	Name   string
	Format TextureFormat
}

// GBufferLayout is the attachment set written by the geometry pass:
//
//	position  RGBA32F  world xyz, w = specular power
//	normal    RGBA16F  world normal xyz, w = specular intensity
//	color     RGBA8    diffuse rgb, a = coverage
//	depth     DEPTH32F
var GBufferLayout = []AttachmentDesc{
	{Name: AttachmentPosition, Format: FormatRGBA32F},
	{Name: AttachmentNormal, Format: FormatRGBA16F},
	{Name: AttachmentColor, Format: FormatRGBA8},
	{Name: AttachmentDepth, Format: FormatDepth32F},
}

// RenderTarget is an off-screen framebuffer and the textures attached to it.
// It exclusively owns both; Destroy releases them together.
type RenderTarget struct {
	Label       string
	Width       int
	Height      int
	dev         Device
	framebuffer Framebuffer
	colors      []Texture
	names       []string
	depth       Texture
	destroyed   bool
}

// NewRenderTarget allocates every attachment in layout at width x height. At
// most one depth attachment is allowed. Any failure releases what was already
// allocated and returns a *ResourceError.
func NewRenderTarget(dev Device, name string, width, height int, layout []AttachmentDesc) (*RenderTarget, error) {
	const op = "NewRenderTarget"
	if width <= 0 || height <= 0 {
		return nil, &ResourceError{Op: op, Resource: name, Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}

	rt := &RenderTarget{
		Label:  fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Width:  width,
		Height: height,
		dev:    dev,
	}

	var cleanup Unwind
	for _, att := range layout {
		tex, err := dev.CreateTexture(TextureDesc{
			Label:  rt.Label + "/" + att.Name,
			Width:  width,
			Height: height,
			Format: att.Format,
		})
		if err != nil {
			cleanup.Unwind()
			return nil, &ResourceError{Op: op, Resource: rt.Label + "/" + att.Name, Err: err}
		}
		cleanup.Add(func() { dev.DeleteTexture(tex) })

		if att.Format.IsDepth() {
			if rt.depth.Valid() {
				cleanup.Unwind()
				return nil, &ResourceError{Op: op, Resource: rt.Label, Err: fmt.Errorf("more than one depth attachment")}
			}
			rt.depth = tex
			continue
		}
		rt.colors = append(rt.colors, tex)
		rt.names = append(rt.names, att.Name)
	}

	var depth *Texture
	if rt.depth.Valid() {
		depth = &rt.depth
	}
	fb, err := dev.CreateFramebuffer(rt.Label, rt.colors, depth)
	if err != nil {
		cleanup.Unwind()
		return nil, &ResourceError{Op: op, Resource: rt.Label, Err: err}
	}
	rt.framebuffer = fb
	cleanup.Discard()

	logger.Log.Debug("Render target created",
		zap.String("label", rt.Label),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("colorAttachments", len(rt.colors)),
		zap.Bool("depth", rt.depth.Valid()))
	return rt, nil
}

// Bind makes the target the draw framebuffer with a full-size viewport.
func (rt *RenderTarget) Bind() error {
	if rt.destroyed {
		return &StateError{Op: "RenderTarget.Bind", Msg: rt.Label, Err: ErrDestroyed}
	}
	rt.dev.BindFramebuffer(rt.framebuffer, rt.Width, rt.Height)
	return nil
}

// Attachment returns the color attachment called name, or the depth
// attachment for AttachmentDepth.
func (rt *RenderTarget) Attachment(name string) (Texture, bool) {
	if rt.destroyed {
		return Texture{}, false
	}
	if name == AttachmentDepth {
		return rt.depth, rt.depth.Valid()
	}
	for i, n := range rt.names {
		if n == name {
			return rt.colors[i], true
		}
	}
	return Texture{}, false
}

func (rt *RenderTarget) Framebuffer() Framebuffer {
	return rt.framebuffer
}

func (rt *RenderTarget) Destroyed() bool {
	return rt.destroyed
}

func (rt *RenderTarget) Destroy() {
	if rt.destroyed {
		return
	}
	rt.destroyed = true
	rt.dev.DeleteFramebuffer(rt.framebuffer)
	for _, tex := range rt.colors {
		rt.dev.DeleteTexture(tex)
	}
	if rt.depth.Valid() {
		rt.dev.DeleteTexture(rt.depth)
	}
	logger.Log.Debug("Render target destroyed", zap.String("label", rt.Label))
}
