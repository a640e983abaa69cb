package opengl

import (
	"fmt"
	"image"
	"image/draw"

	"Winter3D/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Mesh is a VAO with its vertex and index buffers. The layout is
// position (0), uv (1), normal (2), interleaved.
type Mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func newMesh(data renderer.MeshData) (*Mesh, error) {
	if len(data.Interleaved) == 0 || len(data.Indices) == 0 {
		return nil, fmt.Errorf("opengl: empty mesh")
	}
	m := &Mesh{count: int32(len(data.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Interleaved)*4, gl.Ptr(data.Interleaved), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	stride := int32(renderer.FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	return m, nil
}

func (m *Mesh) IndexCount() int32 {
	return m.count
}

func (m *Mesh) Release() {
	if m.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	m.vao, m.vbo, m.ebo = 0, 0, 0
}

// Texture is a linearly filtered, repeating RGBA texture.
type Texture struct {
	id            uint32
	width, height int32
}

func newTexture(img image.Image) (*Texture, error) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	if rgba.Rect.Empty() {
		return nil, fmt.Errorf("opengl: empty image")
	}

	t := &Texture{width: int32(rgba.Rect.Dx()), height: int32(rgba.Rect.Dy())}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, t.width, t.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

func (t *Texture) Size() (int32, int32) {
	return t.width, t.height
}

func (t *Texture) Release() {
	if t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// DepthTarget is a depth texture attached to its own framebuffer.
type DepthTarget struct {
	fbo, texture  uint32
	width, height int32
}

func newDepthTarget(spec renderer.DepthTargetSpec) (*DepthTarget, error) {
	t := &DepthTarget{width: spec.Width, height: spec.Height}

	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, spec.Width, spec.Height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	wrap := wrapParam(spec.Wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	if spec.Wrap == renderer.WrapBorder {
		border := [4]float32{1, 1, 1, 1}
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Release()
		return nil, fmt.Errorf("%w: status 0x%X", renderer.ErrIncompleteFramebuffer, status)
	}
	return t, nil
}

func wrapParam(mode renderer.WrapMode) int32 {
	if mode == renderer.WrapClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.CLAMP_TO_BORDER
}

func (t *DepthTarget) Size() (int32, int32) {
	return t.width, t.height
}

func (t *DepthTarget) Release() {
	if t.fbo == 0 && t.texture == 0 {
		return
	}
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
	t.fbo, t.texture = 0, 0
}
