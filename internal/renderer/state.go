package renderer

type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendAdditive is ONE, ONE.
	BlendAdditive
	// BlendAlpha is SRC_ALPHA, ONE_MINUS_SRC_ALPHA.
	BlendAlpha
)

type DepthTest int

const (
	DepthTestNone DepthTest = iota
	DepthTestLess
	DepthTestLessEqual
)

type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// RenderState is the complete fixed-function state a pass depends on. Passes
// apply one as a whole instead of toggling individual flags.
type RenderState struct {
	Blend      BlendMode
	DepthTest  DepthTest
	DepthWrite bool
	Cull       CullMode
	ColorWrite bool
}

// DefaultRenderState is the state every frame starts from and every pass
// restores: opaque, depth tested, back faces culled.
var DefaultRenderState = RenderState{
	Blend:      BlendNone,
	DepthTest:  DepthTestLess,
	DepthWrite: true,
	Cull:       CullBack,
	ColorWrite: true,
}

var (
	geometryPassState = RenderState{
		Blend:      BlendNone,
		DepthTest:  DepthTestLess,
		DepthWrite: true,
		Cull:       CullBack,
		ColorWrite: true,
	}
	lightPassState = RenderState{
		Blend:      BlendAdditive,
		DepthTest:  DepthTestNone,
		DepthWrite: false,
		Cull:       CullNone,
		ColorWrite: true,
	}
	shadowPassState = RenderState{
		Blend:      BlendNone,
		DepthTest:  DepthTestLess,
		DepthWrite: true,
		Cull:       CullBack,
		ColorWrite: false,
	}
	compositeState = RenderState{
		Blend:      BlendAlpha,
		DepthTest:  DepthTestNone,
		DepthWrite: false,
		Cull:       CullBack,
		ColorWrite: true,
	}
)

// PushState applies state and returns a func restoring whatever was active
// before. Restoring twice is harmless.
func PushState(dev Device, state RenderState) (restore func()) {
	prev := dev.State()
	dev.ApplyState(state)
	done := false
	return func() {
		if done {
			return
		}
		done = true
		dev.ApplyState(prev)
	}
}
