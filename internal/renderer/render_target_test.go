package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTargetAllocatesGBuffer(t *testing.T) {
	dev := newFakeDevice()
	rt, err := NewRenderTarget(dev, "gbuffer", 64, 32, GBufferLayout)
	require.NoError(t, err)

	textures, framebuffers, _ := dev.live()
	assert.Equal(t, 4, textures)
	assert.Equal(t, 1, framebuffers)
	assert.Contains(t, rt.Label, "gbuffer-")

	for _, att := range GBufferLayout {
		tex, ok := rt.Attachment(att.Name)
		require.True(t, ok, att.Name)
		assert.Equal(t, att.Format, tex.Format, att.Name)
		assert.Equal(t, 64, tex.Width)
		assert.Equal(t, 32, tex.Height)
	}
	_, ok := rt.Attachment("missing")
	assert.False(t, ok)

	require.NoError(t, rt.Bind())
	assert.Equal(t, rt.Framebuffer(), dev.bound)
	assert.Equal(t, [2]int{64, 32}, dev.viewport)
}

func TestRenderTargetLabelsAreUnique(t *testing.T) {
	dev := newFakeDevice()
	a, err := NewRenderTarget(dev, "shadowmap", 8, 8, []AttachmentDesc{{Name: AttachmentDepth, Format: FormatDepth32F}})
	require.NoError(t, err)
	b, err := NewRenderTarget(dev, "shadowmap", 8, 8, []AttachmentDesc{{Name: AttachmentDepth, Format: FormatDepth32F}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Label, b.Label)
}

func TestRenderTargetReleasesOnTextureFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failTextureAt = 3

	_, err := NewRenderTarget(dev, "gbuffer", 16, 16, GBufferLayout)
	var resErr *ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, resErr.Resource, AttachmentColor)

	textures, framebuffers, _ := dev.live()
	assert.Zero(t, textures)
	assert.Zero(t, framebuffers)
}

func TestRenderTargetReleasesOnFramebufferFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failFramebuffer = true

	_, err := NewRenderTarget(dev, "gbuffer", 16, 16, GBufferLayout)
	var resErr *ResourceError
	require.ErrorAs(t, err, &resErr)

	textures, _, _ := dev.live()
	assert.Zero(t, textures)
}

func TestRenderTargetRejectsBadLayouts(t *testing.T) {
	dev := newFakeDevice()

	_, err := NewRenderTarget(dev, "empty", 0, 16, GBufferLayout)
	assert.Error(t, err)

	_, err = NewRenderTarget(dev, "twodepth", 16, 16, []AttachmentDesc{
		{Name: "a", Format: FormatDepth32F},
		{Name: "b", Format: FormatDepth32F},
	})
	assert.Error(t, err)
	textures, _, _ := dev.live()
	assert.Zero(t, textures)
}

func TestRenderTargetDestroy(t *testing.T) {
	dev := newFakeDevice()
	rt, err := NewRenderTarget(dev, "gbuffer", 16, 16, GBufferLayout)
	require.NoError(t, err)

	rt.Destroy()
	rt.Destroy()
	assert.True(t, rt.Destroyed())
	textures, framebuffers, _ := dev.live()
	assert.Zero(t, textures)
	assert.Zero(t, framebuffers)

	assert.True(t, errors.Is(rt.Bind(), ErrDestroyed))
	_, ok := rt.Attachment(AttachmentPosition)
	assert.False(t, ok)
}
