package engine

import (
	"fmt"
	"runtime"

	"MirrorShade/internal/gldevice"
	"MirrorShade/internal/logger"
	"MirrorShade/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// FrameFunc renders one frame. An error stops the loop and is returned from Run.
type FrameFunc func(deltaTime float64) error

// SetupFunc runs once the window and the GL device exist, before the first frame.
type SetupFunc func(e *Engine) error

// Engine owns the window, the GL context and the frame loop.
type Engine struct {
	Width             int
	Height            int
	Title             string
	Camera            *renderer.Camera
	EnableCameraInput bool                   // Drag to orbit, wheel to zoom
	OnClose           func()                 // Runs after the last frame while the GL context is still current
	OnPick            func(ray renderer.Ray) // Right click, ray through the cursor from Camera

	window *glfw.Window
	device *gldevice.Device
	nav    navigator
}

func NewEngine(width, height int, title string) *Engine {
	return &Engine{
		Width:             width,
		Height:            height,
		Title:             title,
		EnableCameraInput: true,
	}
}

// Device is the GL device; nil before Run has created the context.
func (e *Engine) Device() *gldevice.Device {
	return e.device
}

// Screen is the size of the default framebuffer in pixels, which differs from
// the window size on high-DPI displays.
func (e *Engine) Screen() renderer.Screen {
	w, h := e.window.GetFramebufferSize()
	return renderer.Screen{Width: w, Height: h}
}

// Run opens the window, calls setup, then calls frame until the window is
// closed or Escape is pressed. Closing is checked between frames only.
func (e *Engine) Run(setup SetupFunc, frame FrameFunc) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.DepthBits, 32)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(e.Width, e.Height, e.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	defer window.Destroy()
	e.window = window
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	e.device, err = gldevice.New()
	if err != nil {
		return err
	}
	defer e.device.Destroy()

	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	window.SetCursorPosCallback(e.mouseCallback)
	window.SetScrollCallback(e.scrollCallback)
	window.SetKeyCallback(e.keyCallback)
	window.SetMouseButtonCallback(e.mouseButtonCallback)

	if err := setup(e); err != nil {
		return err
	}
	if e.OnClose != nil {
		defer e.OnClose()
	}
	logger.Log.Info("Engine running",
		zap.Int("width", e.Width),
		zap.Int("height", e.Height),
		zap.Any("screen", e.Screen()))

	return e.loop(frame)
}

func (e *Engine) loop(frame FrameFunc) error {
	lastTime := glfw.GetTime()
	for !e.window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		if err := frame(deltaTime); err != nil {
			return err
		}
		e.window.SwapBuffers()
		glfw.PollEvents()
	}
	logger.Log.Info("Window closed")
	return nil
}

func (e *Engine) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if e.Camera == nil || !e.EnableCameraInput {
		return
	}
	pressed := w.GetAttrib(glfw.Focused) == glfw.True && w.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
	e.nav.cursorMoved(e.Camera, xpos, ypos, pressed)
}

func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if e.Camera == nil || e.OnPick == nil || button != glfw.MouseButtonRight || action != glfw.Press {
		return
	}
	x, y := w.GetCursorPos()
	width, height := w.GetSize()
	e.OnPick(e.Camera.ScreenToRay(float32(x), float32(y), width, height))
}

func (e *Engine) scrollCallback(_ *glfw.Window, _, yoff float64) {
	if e.Camera == nil || !e.EnableCameraInput {
		return
	}
	e.nav.scrolled(e.Camera, yoff)
}

func (e *Engine) keyCallback(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}
