package loader

import (
	"math"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Procedural meshes are centred on the origin with counter-clockwise
// winding seen from outside (or from above for planes).

// Plane is a size×size square in the xz plane facing +y, split into
// divisions×divisions quads. UVs span [0,1] across the plane.
func Plane(size float32, divisions int) renderer.MeshData {
	return heightfield(size, divisions, func(x, z float32) (float32, mgl32.Vec3) {
		return 0, mgl32.Vec3{0, 1, 0}
	})
}

// heightfield builds a grid whose vertex heights and normals come from sample.
func heightfield(size float32, divisions int, sample func(x, z float32) (float32, mgl32.Vec3)) renderer.MeshData {
	divisions = max(divisions, 1)
	n := divisions + 1
	step := size / float32(divisions)
	half := size / 2

	data := renderer.MeshData{
		Interleaved: make([]float32, 0, n*n*renderer.FloatsPerVertex),
		Indices:     make([]uint32, 0, divisions*divisions*6),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := -half + float32(i)*step
			z := -half + float32(j)*step
			y, normal := sample(x, z)
			u := float32(i) / float32(divisions)
			v := float32(j) / float32(divisions)
			data.Interleaved = append(data.Interleaved, x, y, z, u, v, normal[0], normal[1], normal[2])
		}
	}

	for i := 0; i < divisions; i++ {
		for j := 0; j < divisions; j++ {
			x0z0 := uint32(i*n + j)
			x0z1 := x0z0 + 1
			x1z0 := uint32((i+1)*n + j)
			x1z1 := x1z0 + 1
			data.Indices = append(data.Indices, x0z0, x0z1, x1z1, x0z0, x1z1, x1z0)
		}
	}
	return data
}

type cubeFace struct {
	normal, u, v mgl32.Vec3
}

// u × v = normal for every face.
var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Cube has flat-shaded faces with their own vertices and full [0,1] UVs.
func Cube(size float32) renderer.MeshData {
	h := size / 2
	data := renderer.MeshData{
		Interleaved: make([]float32, 0, 24*renderer.FloatsPerVertex),
		Indices:     make([]uint32, 0, 36),
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for f, face := range cubeFaces {
		centre := face.normal.Mul(h)
		for _, c := range corners {
			p := centre.Add(face.u.Mul(c[0] * h)).Add(face.v.Mul(c[1] * h))
			n := face.normal
			data.Interleaved = append(data.Interleaved,
				p[0], p[1], p[2], (c[0]+1)/2, (c[1]+1)/2, n[0], n[1], n[2])
		}
		base := uint32(f * 4)
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return data
}

// Sphere is a UV sphere. Rings run from the +y pole to the -y pole.
func Sphere(radius float32, rings, segments int) renderer.MeshData {
	rings = max(rings, 2)
	segments = max(segments, 3)
	data := renderer.MeshData{
		Interleaved: make([]float32, 0, (rings+1)*(segments+1)*renderer.FloatsPerVertex),
		Indices:     make([]uint32, 0, rings*segments*6),
	}

	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			p := n.Mul(radius)
			data.Interleaved = append(data.Interleaved,
				p[0], p[1], p[2],
				float32(s)/float32(segments), float32(r)/float32(rings),
				n[0], n[1], n[2])
		}
	}

	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			first := uint32(r*(segments+1) + s)
			second := first + uint32(segments+1)
			data.Indices = append(data.Indices, first, first+1, second, second, first+1, second+1)
		}
	}
	return data
}
