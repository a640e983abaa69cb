package software

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// minW discards triangles touching or behind the eye plane; there is no
// near-plane clipping.
const minW = 1e-6

type screenVertex struct {
	x, y, z float64
	invW    float64
}

func (d *Device) drawMesh(mesh *Mesh) {
	sh := d.program.shader
	n := sh.varyings()
	data := mesh.data
	count := data.VertexCount()

	clip := make([]mgl32.Vec4, count)
	varyings := make([]float32, count*n)
	for i := 0; i < count; i++ {
		clip[i] = sh.vertex(d.program.values, data.Position(i), data.Normal(i), data.UV(i), varyings[i*n:(i+1)*n])
	}

	if cap(d.scratch) < n {
		d.scratch = make([]float32, n)
	}
	scratch := d.scratch[:n]

	for t := 0; t+2 < len(data.Indices); t += 3 {
		i0, i1, i2 := data.Indices[t], data.Indices[t+1], data.Indices[t+2]
		d.stats.Triangles++
		d.rasterize(
			[3]mgl32.Vec4{clip[i0], clip[i1], clip[i2]},
			[3][]float32{
				varyings[int(i0)*n : int(i0+1)*n],
				varyings[int(i1)*n : int(i1+1)*n],
				varyings[int(i2)*n : int(i2+1)*n],
			},
			scratch,
		)
	}
}

// rasterize fills one triangle with the depth test LESS. Varyings are
// interpolated perspective-correctly into scratch before the fragment stage.
func (d *Device) rasterize(clip [3]mgl32.Vec4, vary [3][]float32, scratch []float32) {
	var sv [3]screenVertex
	vp := d.viewport
	for i, c := range clip {
		w := float64(c[3])
		if w <= minW {
			return
		}
		sv[i].invW = 1 / w
		sv[i].x = float64(vp.x) + (float64(c[0])*sv[i].invW+1)*0.5*float64(vp.w)
		sv[i].y = float64(vp.y) + (float64(c[1])*sv[i].invW+1)*0.5*float64(vp.h)
		sv[i].z = float64(c[2])*sv[i].invW*0.5 + 0.5
	}

	area := edge(sv[0], sv[1], sv[2].x, sv[2].y)
	if area == 0 {
		return
	}

	width, height := d.targetSize()
	minX := max(int(math.Floor(min(sv[0].x, sv[1].x, sv[2].x))), int(vp.x), 0)
	maxX := min(int(math.Ceil(max(sv[0].x, sv[1].x, sv[2].x))), int(vp.x+vp.w)-1, int(width)-1)
	minY := max(int(math.Floor(min(sv[0].y, sv[1].y, sv[2].y))), int(vp.y), 0)
	maxY := min(int(math.Ceil(max(sv[0].y, sv[1].y, sv[2].y))), int(vp.y+vp.h)-1, int(height)-1)

	depth := d.depthBuffer()
	writeColor := d.target == nil
	sh := d.program.shader

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			b0 := edge(sv[1], sv[2], px, py) / area
			b1 := edge(sv[2], sv[0], px, py) / area
			b2 := edge(sv[0], sv[1], px, py) / area
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			if z < 0 || z > 1 {
				continue
			}
			idx := y*int(width) + x
			if float32(z) >= depth[idx] {
				continue
			}

			if len(scratch) > 0 {
				w0, w1, w2 := b0*sv[0].invW, b1*sv[1].invW, b2*sv[2].invW
				norm := 1 / (w0 + w1 + w2)
				for k := range scratch {
					scratch[k] = float32((w0*float64(vary[0][k]) + w1*float64(vary[1][k]) + w2*float64(vary[2][k])) * norm)
				}
			}

			color, ok := sh.fragment(d, d.program.values, scratch)
			d.stats.Fragments++
			depth[idx] = float32(z)
			if ok && writeColor {
				d.color[idx] = clampColor(color)
			}
		}
	}
}

// edge is twice the signed area of (a, b, p).
func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}
