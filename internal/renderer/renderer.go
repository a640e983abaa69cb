package renderer

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrIncompleteFramebuffer is returned when a depth target cannot be rendered into.
var ErrIncompleteFramebuffer = errors.New("renderer: incomplete framebuffer")

// ClearMask selects which channels of the bound render target Clear resets.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// WrapMode is the sampling policy outside [0,1] texture coordinates.
type WrapMode int

const (
	// WrapBorder returns the white border: depth 1.0, which the shading stage treats as lit.
	WrapBorder WrapMode = iota
	// WrapClampToEdge repeats the outermost texel.
	WrapClampToEdge
)

func (w WrapMode) String() string {
	switch w {
	case WrapBorder:
		return "border"
	case WrapClampToEdge:
		return "edge"
	}
	return "unknown"
}

// ParseWrapMode accepts "border" and "edge".
func ParseWrapMode(s string) (WrapMode, bool) {
	switch s {
	case "border", "":
		return WrapBorder, true
	case "edge", "clamp_to_edge":
		return WrapClampToEdge, true
	}
	return WrapBorder, false
}

// DepthTargetSpec describes an off-screen depth-only render target.
type DepthTargetSpec struct {
	Width, Height int32
	Wrap          WrapMode
}

// MeshData is interleaved position(3) uv(2) normal(3) vertex data plus
// triangle indices. This is the layout every device uploads.
type MeshData struct {
	Interleaved []float32
	Indices     []uint32
}

// FloatsPerVertex is the interleaved stride in floats.
const FloatsPerVertex = 8

// VertexCount returns the number of interleaved vertices.
func (d MeshData) VertexCount() int {
	return len(d.Interleaved) / FloatsPerVertex
}

// Position returns the position of vertex i.
func (d MeshData) Position(i int) mgl32.Vec3 {
	o := i * FloatsPerVertex
	return mgl32.Vec3{d.Interleaved[o], d.Interleaved[o+1], d.Interleaved[o+2]}
}

// UV returns the texture coordinate of vertex i.
func (d MeshData) UV(i int) mgl32.Vec2 {
	o := i*FloatsPerVertex + 3
	return mgl32.Vec2{d.Interleaved[o], d.Interleaved[o+1]}
}

// Normal returns the normal of vertex i.
func (d MeshData) Normal(i int) mgl32.Vec3 {
	o := i*FloatsPerVertex + 5
	return mgl32.Vec3{d.Interleaved[o], d.Interleaved[o+1], d.Interleaved[o+2]}
}

// Releaser is implemented by every device resource. Releasing twice is a no-op.
type Releaser interface {
	Release()
}

// DepthTarget is a depth texture with the framebuffer that renders into it.
type DepthTarget interface {
	Releaser
	Size() (width, height int32)
}

// Texture is a sampled colour image.
type Texture interface {
	Releaser
	Size() (width, height int32)
}

// Mesh is an uploaded drawable.
type Mesh interface {
	Releaser
	IndexCount() int32
}

// Program is a linked shader program. Locations are opaque; -1 means the
// uniform does not exist and setters ignore it.
type Program interface {
	Releaser
	Name() string
	Location(name string) int32
	SetMat4(loc int32, m mgl32.Mat4)
	SetVec4(loc int32, v mgl32.Vec4)
	SetVec3(loc int32, v mgl32.Vec3)
	SetFloat(loc int32, v float32)
	SetInt(loc int32, v int32)
}

// Device is the part of a graphics API the render passes drive. The
// OpenGL device renders to the window, the software device to memory.
type Device interface {
	NewDepthTarget(spec DepthTargetSpec) (DepthTarget, error)
	NewProgram(src ProgramSource) (Program, error)
	NewMesh(data MeshData) (Mesh, error)
	NewTexture(img image.Image) (Texture, error)

	// BindRenderTarget selects an off-screen target; nil selects the window.
	BindRenderTarget(target DepthTarget)
	Viewport(x, y, width, height int32)
	SetClearColor(c mgl32.Vec4)
	Clear(mask ClearMask)
	UseProgram(p Program)
	BindTexture(unit int32, t Texture)
	BindDepthTexture(unit int32, t DepthTarget)
	Draw(m Mesh)
	SetWireframe(on bool)
	Wireframe() bool

	Release()
}
