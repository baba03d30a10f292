package engine

import "MirrorShade/internal/renderer"

// navigator turns pointer input into camera orbit and zoom.
type navigator struct {
	lastX, lastY float64
	dragging     bool
}

// cursorMoved orbits the camera by the cursor delta while the button is held.
// The first event of a drag only records the position.
func (n *navigator) cursorMoved(camera *renderer.Camera, xpos, ypos float64, pressed bool) {
	if !pressed {
		n.dragging = false
		return
	}
	if !n.dragging {
		n.lastX, n.lastY = xpos, ypos
		n.dragging = true
		return
	}
	dx := xpos - n.lastX
	dy := n.lastY - ypos // Reversed since y-coordinates go from bottom to top
	n.lastX, n.lastY = xpos, ypos
	camera.Orbit(float32(dx), float32(dy))
}

func (n *navigator) scrolled(camera *renderer.Camera, yoff float64) {
	camera.Zoom(float32(yoff))
}
