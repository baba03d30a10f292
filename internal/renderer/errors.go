package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrNoLightPass     = errors.New("no light pass has been executed")
	ErrNoColorTarget   = errors.New("pipeline renders its light pass to the screen")
	ErrShadowsDisabled = errors.New("shadows are not enabled for this light")
	ErrShadowsEnabled  = errors.New("shadows are already enabled for this light")
	ErrDestroyed       = errors.New("render target has been destroyed")
)

// ResourceError reports a failed render target, texture or shadow map allocation.
type ResourceError struct {
	Op       string
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: allocating %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// StateError reports a pass invoked out of order or a resource accessed before
// it exists. Ordering violations are raised with panic(*StateError).
type StateError struct {
	Op  string
	Msg string
	Err error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *StateError) Unwrap() error { return e.Err }

// ShaderError reports a program that failed to build or a uniform/sampler that
// the program does not declare.
type ShaderError struct {
	Program string
	Uniform string
	Err     error
}

func (e *ShaderError) Error() string {
	if e.Uniform == "" {
		return fmt.Sprintf("program %q: %v", e.Program, e.Err)
	}
	return fmt.Sprintf("program %q: uniform %q: %v", e.Program, e.Uniform, e.Err)
}

func (e *ShaderError) Unwrap() error { return e.Err }

func stateViolation(op, format string, args ...any) {
	panic(&StateError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
