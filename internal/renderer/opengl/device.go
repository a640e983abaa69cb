// Package opengl implements renderer.Device on an OpenGL 4.1 core context.
// Every call must happen on the thread that owns the context.
package opengl

import (
	"fmt"
	"image"

	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type Device struct {
	currentProgram uint32
	wireframe      bool
}

var _ renderer.Device = (*Device)(nil)

// NewDevice loads the GL function pointers for the current context and sets
// the fixed pipeline state: depth test LESS and back-face culling.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl initialization failed: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	logger.Log.Info("OpenGL device initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return &Device{}, nil
}

func (d *Device) NewProgram(src renderer.ProgramSource) (renderer.Program, error) {
	p, err := newProgram(src)
	if err != nil {
		return nil, err
	}
	p.device = d
	return p, nil
}

func (d *Device) NewMesh(data renderer.MeshData) (renderer.Mesh, error) {
	return newMesh(data)
}

func (d *Device) NewTexture(img image.Image) (renderer.Texture, error) {
	return newTexture(img)
}

func (d *Device) NewDepthTarget(spec renderer.DepthTargetSpec) (renderer.DepthTarget, error) {
	return newDepthTarget(spec)
}

func (d *Device) BindRenderTarget(target renderer.DepthTarget) {
	if target == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, target.(*DepthTarget).fbo)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) SetClearColor(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (d *Device) Clear(mask renderer.ClearMask) {
	if bits := clearBits(mask); bits != 0 {
		gl.Clear(bits)
	}
}

func (d *Device) UseProgram(p renderer.Program) {
	id := uint32(0)
	if p != nil {
		id = p.(*Program).id
	}
	if id != d.currentProgram {
		gl.UseProgram(id)
		d.currentProgram = id
	}
}

// forgetProgram drops the cached binding for a program being deleted, since
// GL may hand the same name to the next program linked.
func (d *Device) forgetProgram(id uint32) {
	if d.currentProgram == id {
		d.currentProgram = 0
	}
}

func (d *Device) BindTexture(unit int32, t renderer.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if t == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.(*Texture).id)
}

func (d *Device) BindDepthTexture(unit int32, t renderer.DepthTarget) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if t == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.(*DepthTarget).texture)
}

func (d *Device) Draw(m renderer.Mesh) {
	mesh := m.(*Mesh)
	if mesh.vao == 0 {
		return
	}
	gl.BindVertexArray(mesh.vao)
	gl.DrawElements(gl.TRIANGLES, mesh.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) SetWireframe(on bool) {
	d.wireframe = on
	gl.PolygonMode(gl.FRONT_AND_BACK, polygonMode(on))
}

func (d *Device) Wireframe() bool {
	return d.wireframe
}

// Release unbinds all state; resources are released by their owners.
func (d *Device) Release() {
	gl.UseProgram(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	d.currentProgram = 0
}

func clearBits(mask renderer.ClearMask) uint32 {
	var bits uint32
	if mask&renderer.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&renderer.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	return bits
}

func polygonMode(wireframe bool) uint32 {
	if wireframe {
		return gl.LINE
	}
	return gl.FILL
}
