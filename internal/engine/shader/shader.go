// Package shader compiles GLSL programs and sets their uniforms.
package shader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

var (
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("program link failed")
)

// Compile compiles vertex and fragment sources and links them into a program
// bound to the current OpenGL context.
func Compile(vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return Attach(gpu.NewGL(), id), nil
}

// LoadFiles reads and compiles a vertex/fragment shader pair from disk.
func LoadFiles(vertPath, fragPath string) (*Program, error) {
	vert, err := os.ReadFile(vertPath)
	if err != nil {
		return nil, fmt.Errorf("reading vertex shader: %w", err)
	}
	frag, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, fmt.Errorf("reading fragment shader: %w", err)
	}
	p, err := Compile(string(vert), string(frag))
	if err != nil {
		return nil, fmt.Errorf("%s + %s: %w", vertPath, fragPath, err)
	}
	return p, nil
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetProgramInfoLog(program, logLen, nil, buf) })
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", ErrLink, log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) { gl.GetShaderInfoLog(shader, logLen, nil, buf) })
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s stage: %s", ErrCompile, stage, log)
	}

	return shader, nil
}

// infoLog fetches a driver log of n bytes, tolerating drivers that report 0.
func infoLog(n int32, fetch func(buf *uint8)) string {
	if n <= 1 {
		return "(no log)"
	}
	buf := make([]uint8, n)
	fetch(&buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
