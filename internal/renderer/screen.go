package renderer

import "fmt"

// Screen is the size of the presented surface in pixels.
type Screen struct {
	Width  int
	Height int
}

func (s Screen) Aspect() float32 {
	return float32(s.Width) / float32(s.Height)
}

func (s Screen) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", s.Width, s.Height)
	}
	return nil
}

// Scaled returns the screen scaled by factor, never smaller than 1x1.
func (s Screen) Scaled(factor float32) Screen {
	w := int(float32(s.Width)*factor + 0.5)
	h := int(float32(s.Height)*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Screen{Width: w, Height: h}
}
