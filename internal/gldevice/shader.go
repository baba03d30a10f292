package gldevice

import (
	"fmt"
	"strings"

	"MirrorShade/internal/logger"
	"MirrorShade/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shaderType", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("compile: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// buildProgram compiles and links src. Failures come back as
// *renderer.ShaderError carrying the driver's info log.
func buildProgram(src renderer.ProgramSource) (uint32, error) {
	vertexShader, err := compileShader(src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, &renderer.ShaderError{Program: src.Name, Err: fmt.Errorf("vertex shader: %w", err)}
	}
	fragmentShader, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, &renderer.ShaderError{Program: src.Name, Err: fmt.Errorf("fragment shader: %w", err)}
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("name", src.Name), zap.String("log", log))
		return 0, &renderer.ShaderError{Program: src.Name, Err: fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))}
	}
	return program, nil
}
