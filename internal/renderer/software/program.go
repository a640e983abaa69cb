package software

import (
	"errors"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownShader is returned by NewProgram for programs without a CPU implementation.
var ErrUnknownShader = errors.New("software: unknown shader")

type uniform struct {
	mat mgl32.Mat4
	vec mgl32.Vec4
	f   float32
	i   int32
}

// shader is the CPU twin of a GLSL program. Uniform locations are indices
// into names.
type shader interface {
	names() []string
	varyings() int
	vertex(u []uniform, pos, normal mgl32.Vec3, uv mgl32.Vec2, out []float32) mgl32.Vec4
	// fragment returns false to write depth only.
	fragment(d *Device, u []uniform, in []float32) (mgl32.Vec4, bool)
}

var shaders = map[string]shader{
	renderer.DepthProgram:         depthShader{},
	renderer.ShadowMappingProgram: shadowMappingShader{},
	renderer.NormalsProgram:       normalsShader{},
}

// Program holds uniform values for one shader.
type Program struct {
	name     string
	shader   shader
	values   []uniform
	cache    *renderer.UniformCache
	released bool
}

var _ renderer.Program = (*Program)(nil)

func newProgram(name string, sh shader) *Program {
	names := sh.names()
	index := make(map[string]int32, len(names))
	for i, n := range names {
		index[n] = int32(i)
	}
	return &Program{
		name:   name,
		shader: sh,
		values: make([]uniform, len(names)),
		cache: renderer.NewUniformCache(func(n string) int32 {
			if loc, ok := index[n]; ok {
				return loc
			}
			return -1
		}),
	}
}

func (p *Program) Name() string {
	return p.name
}

func (p *Program) Location(name string) int32 {
	return p.cache.GetLocation(name)
}

func (p *Program) slot(loc int32) *uniform {
	if loc < 0 || int(loc) >= len(p.values) {
		return nil
	}
	return &p.values[loc]
}

func (p *Program) SetMat4(loc int32, m mgl32.Mat4) {
	if u := p.slot(loc); u != nil {
		u.mat = m
	}
}

func (p *Program) SetVec4(loc int32, v mgl32.Vec4) {
	if u := p.slot(loc); u != nil {
		u.vec = v
	}
}

func (p *Program) SetVec3(loc int32, v mgl32.Vec3) {
	if u := p.slot(loc); u != nil {
		u.vec = v.Vec4(0)
	}
}

func (p *Program) SetFloat(loc int32, v float32) {
	if u := p.slot(loc); u != nil {
		u.f = v
	}
}

func (p *Program) SetInt(loc int32, v int32) {
	if u := p.slot(loc); u != nil {
		u.i = v
	}
}

// Int returns the integer value at loc, for inspection in tests.
func (p *Program) Int(loc int32) int32 {
	if u := p.slot(loc); u != nil {
		return u.i
	}
	return 0
}

func (p *Program) Release() {
	p.released = true
}
