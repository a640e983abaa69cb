package software

import (
	"math"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// DepthTarget is a float depth buffer sampled with nearest filtering.
type DepthTarget struct {
	width, height int32
	wrap          renderer.WrapMode
	depth         []float32
	released      bool
}

func (t *DepthTarget) Size() (int32, int32) {
	return t.width, t.height
}

func (t *DepthTarget) Wrap() renderer.WrapMode {
	return t.wrap
}

// Depth returns a copy of the stored depths, row 0 at the bottom.
func (t *DepthTarget) Depth() []float32 {
	out := make([]float32, len(t.depth))
	copy(out, t.depth)
	return out
}

func (t *DepthTarget) DepthAt(x, y int) float32 {
	return t.depth[y*int(t.width)+x]
}

// Sample returns the depth at texture coordinates (s, t). Outside [0,1] the
// border policy yields 1.0 and the edge policy the nearest edge texel.
func (t *DepthTarget) Sample(s, tc float32) float32 {
	x := int(math.Floor(float64(s) * float64(t.width)))
	y := int(math.Floor(float64(tc) * float64(t.height)))
	if x < 0 || y < 0 || x >= int(t.width) || y >= int(t.height) {
		if t.wrap == renderer.WrapBorder {
			return 1
		}
		x = clampInt(x, 0, int(t.width)-1)
		y = clampInt(y, 0, int(t.height)-1)
	}
	return t.depth[y*int(t.width)+x]
}

func (t *DepthTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	t.depth = nil
}

// Texture is an RGBA image sampled with nearest filtering and repeat wrapping.
type Texture struct {
	width, height int32
	texels        []mgl32.Vec4
	released      bool
}

func (t *Texture) Size() (int32, int32) {
	return t.width, t.height
}

func (t *Texture) Sample(s, tc float32) mgl32.Vec4 {
	fs := float64(s) - math.Floor(float64(s))
	ft := float64(tc) - math.Floor(float64(tc))
	x := clampInt(int(fs*float64(t.width)), 0, int(t.width)-1)
	y := clampInt(int(ft*float64(t.height)), 0, int(t.height)-1)
	return t.texels[y*int(t.width)+x]
}

func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.texels = nil
}

// Mesh keeps the vertex data on the CPU.
type Mesh struct {
	data     renderer.MeshData
	released bool
}

func (m *Mesh) IndexCount() int32 {
	return int32(len(m.data.Indices))
}

func (m *Mesh) Release() {
	m.released = true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
