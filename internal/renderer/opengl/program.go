package opengl

import (
	"fmt"
	"strings"

	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Program is a linked GLSL program with cached uniform locations.
type Program struct {
	name   string
	id     uint32
	cache  *renderer.UniformCache
	device *Device
}

var _ renderer.Program = (*Program)(nil)

func newProgram(src renderer.ProgramSource) (*Program, error) {
	vertexShader, err := compileShader(src.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	fragmentShader, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}

	id, err := linkProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}

	p := &Program{name: src.Name, id: id}
	p.cache = renderer.NewUniformCache(func(name string) int32 {
		return gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	})
	logger.Log.Debug("Shader program linked", zap.String("program", src.Name), zap.Uint32("id", id))
	return p, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source + "\x00")
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

		return 0, fmt.Errorf("%s shader compile error: %s", shaderTypeName(shaderType), strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func linkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
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

		return 0, fmt.Errorf("link error: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func shaderTypeName(shaderType uint32) string {
	if shaderType == gl.FRAGMENT_SHADER {
		return "fragment"
	}
	return "vertex"
}

func (p *Program) Name() string {
	return p.name
}

func (p *Program) Location(name string) int32 {
	return p.cache.GetLocation(name)
}

func (p *Program) SetMat4(loc int32, m mgl32.Mat4) {
	if loc != -1 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

func (p *Program) SetVec4(loc int32, v mgl32.Vec4) {
	if loc != -1 {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (p *Program) SetVec3(loc int32, v mgl32.Vec3) {
	if loc != -1 {
		gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (p *Program) SetFloat(loc int32, v float32) {
	if loc != -1 {
		gl.Uniform1f(loc, v)
	}
}

func (p *Program) SetInt(loc int32, v int32) {
	if loc != -1 {
		gl.Uniform1i(loc, v)
	}
}

func (p *Program) Release() {
	if p.id == 0 {
		return
	}
	if p.device != nil {
		p.device.forgetProgram(p.id)
	}
	gl.DeleteProgram(p.id)
	p.id = 0
	p.cache.Clear()
}
