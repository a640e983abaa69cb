// Package software is a CPU implementation of renderer.Device. It rasterizes
// into memory so the render passes can run and be inspected without a GPU.
package software

import (
	"fmt"
	"image"
	"image/color"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type viewport struct {
	x, y, w, h int32
}

// Stats counts the work done since the last ResetStats.
type Stats struct {
	DrawCalls int
	Triangles int
	Fragments int
}

// Device renders into an in-memory window of fixed size. Pixel (0,0) is the
// bottom-left corner, as in OpenGL.
type Device struct {
	width, height int32
	color         []mgl32.Vec4
	depth         []float32

	target     *DepthTarget
	viewport   viewport
	clearColor mgl32.Vec4
	program    *Program
	units      map[int32]any
	wireframe  bool
	stats      Stats
	scratch    []float32
}

var _ renderer.Device = (*Device)(nil)

func NewDevice(width, height int32) *Device {
	d := &Device{units: make(map[int32]any)}
	d.Resize(width, height)
	return d
}

// Resize reallocates the window buffers and resets the viewport to cover them.
func (d *Device) Resize(width, height int32) {
	d.width, d.height = width, height
	d.color = make([]mgl32.Vec4, int(width)*int(height))
	d.depth = make([]float32, int(width)*int(height))
	for i := range d.depth {
		d.depth[i] = 1
	}
	d.viewport = viewport{0, 0, width, height}
}

func (d *Device) Size() (width, height int32) {
	return d.width, d.height
}

func (d *Device) NewDepthTarget(spec renderer.DepthTargetSpec) (renderer.DepthTarget, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", renderer.ErrIncompleteFramebuffer, spec.Width, spec.Height)
	}
	t := &DepthTarget{
		width:  spec.Width,
		height: spec.Height,
		wrap:   spec.Wrap,
		depth:  make([]float32, int(spec.Width)*int(spec.Height)),
	}
	for i := range t.depth {
		t.depth[i] = 1
	}
	return t, nil
}

func (d *Device) NewProgram(src renderer.ProgramSource) (renderer.Program, error) {
	sh, ok := shaders[src.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShader, src.Name)
	}
	return newProgram(src.Name, sh), nil
}

func (d *Device) NewMesh(data renderer.MeshData) (renderer.Mesh, error) {
	if len(data.Interleaved)%renderer.FloatsPerVertex != 0 {
		return nil, fmt.Errorf("software: vertex data length %d is not a multiple of %d",
			len(data.Interleaved), renderer.FloatsPerVertex)
	}
	count := uint32(data.VertexCount())
	for _, idx := range data.Indices {
		if idx >= count {
			return nil, fmt.Errorf("software: index %d out of range (%d vertices)", idx, count)
		}
	}
	return &Mesh{data: data}, nil
}

func (d *Device) NewTexture(img image.Image) (renderer.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("software: empty image")
	}
	t := &Texture{width: int32(b.Dx()), height: int32(b.Dy())}
	t.texels = make([]mgl32.Vec4, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.texels[y*b.Dx()+x] = mgl32.Vec4{
				float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255,
			}
		}
	}
	return t, nil
}

func (d *Device) BindRenderTarget(target renderer.DepthTarget) {
	if target == nil {
		d.target = nil
		return
	}
	d.target = target.(*DepthTarget)
}

// BoundTarget returns the active off-screen target, or nil for the window.
func (d *Device) BoundTarget() renderer.DepthTarget {
	if d.target == nil {
		return nil
	}
	return d.target
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.viewport = viewport{x, y, width, height}
}

func (d *Device) SetClearColor(c mgl32.Vec4) {
	d.clearColor = c
}

func (d *Device) Clear(mask renderer.ClearMask) {
	if mask&renderer.ClearDepth != 0 {
		buf := d.depthBuffer()
		for i := range buf {
			buf[i] = 1
		}
	}
	if mask&renderer.ClearColor != 0 && d.target == nil {
		c := clampColor(d.clearColor)
		for i := range d.color {
			d.color[i] = c
		}
	}
}

func (d *Device) UseProgram(p renderer.Program) {
	if p == nil {
		d.program = nil
		return
	}
	d.program = p.(*Program)
}

func (d *Device) BindTexture(unit int32, t renderer.Texture) {
	if t == nil {
		delete(d.units, unit)
		return
	}
	d.units[unit] = t.(*Texture)
}

func (d *Device) BindDepthTexture(unit int32, t renderer.DepthTarget) {
	if t == nil {
		delete(d.units, unit)
		return
	}
	d.units[unit] = t.(*DepthTarget)
}

// Draw runs the current program over every triangle of m.
func (d *Device) Draw(m renderer.Mesh) {
	if d.program == nil || d.program.released {
		return
	}
	mesh := m.(*Mesh)
	if mesh.released {
		return
	}
	d.stats.DrawCalls++
	d.drawMesh(mesh)
}

// SetWireframe is recorded for parity with the OpenGL device; triangles are always filled.
func (d *Device) SetWireframe(on bool) {
	d.wireframe = on
}

func (d *Device) Wireframe() bool {
	return d.wireframe
}

func (d *Device) Release() {
	d.color = nil
	d.depth = nil
	d.units = make(map[int32]any)
	d.program = nil
	d.target = nil
}

func (d *Device) Stats() Stats {
	return d.stats
}

func (d *Device) ResetStats() {
	d.stats = Stats{}
}

// ColorAt returns the window colour at (x, y), origin bottom-left.
func (d *Device) ColorAt(x, y int) mgl32.Vec4 {
	if x < 0 || y < 0 || x >= int(d.width) || y >= int(d.height) {
		return mgl32.Vec4{}
	}
	return d.color[y*int(d.width)+x]
}

// DepthAt returns the window depth at (x, y).
func (d *Device) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= int(d.width) || y >= int(d.height) {
		return 1
	}
	return d.depth[y*int(d.width)+x]
}

// Pixels returns the window as an image with the usual top-left origin.
func (d *Device) Pixels() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(d.width), int(d.height)))
	for y := 0; y < int(d.height); y++ {
		row := int(d.height) - 1 - y
		for x := 0; x < int(d.width); x++ {
			c := d.color[y*int(d.width)+x]
			img.SetRGBA(x, row, color.RGBA{
				R: uint8(c[0]*255 + 0.5),
				G: uint8(c[1]*255 + 0.5),
				B: uint8(c[2]*255 + 0.5),
				A: uint8(c[3]*255 + 0.5),
			})
		}
	}
	return img
}

func (d *Device) depthBuffer() []float32 {
	if d.target != nil {
		return d.target.depth
	}
	return d.depth
}

func (d *Device) targetSize() (int32, int32) {
	if d.target != nil {
		return d.target.width, d.target.height
	}
	return d.width, d.height
}

func (d *Device) sampleDepth(unit int32, s, t float32) float32 {
	target, ok := d.units[unit].(*DepthTarget)
	if !ok {
		return 1
	}
	return target.Sample(s, t)
}

func (d *Device) sampleTexture(unit int32, s, t float32) mgl32.Vec4 {
	tex, ok := d.units[unit].(*Texture)
	if !ok {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	return tex.Sample(s, t)
}

func clampColor(c mgl32.Vec4) mgl32.Vec4 {
	for i := range c {
		c[i] = mgl32.Clamp(c[i], 0, 1)
	}
	return c
}
