package loader

import (
	"testing"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleNormal is the unnormalised normal implied by counter-clockwise winding.
func triangleNormal(data renderer.MeshData, t int) mgl32.Vec3 {
	p0 := data.Position(int(data.Indices[t]))
	p1 := data.Position(int(data.Indices[t+1]))
	p2 := data.Position(int(data.Indices[t+2]))
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

func assertIndicesInRange(t *testing.T, data renderer.MeshData) {
	t.Helper()
	require.Zero(t, len(data.Indices)%3)
	for _, i := range data.Indices {
		require.Less(t, int(i), data.VertexCount())
	}
}

func TestPlaneFacesUp(t *testing.T) {
	data := Plane(4, 2)
	assertIndicesInRange(t, data)
	assert.Equal(t, 9, data.VertexCount())
	assert.Len(t, data.Indices, 2*2*6)

	for i := 0; i+2 < len(data.Indices); i += 3 {
		assert.Greater(t, triangleNormal(data, i).Y(), float32(0), "triangle %d", i/3)
	}
	for i := 0; i < data.VertexCount(); i++ {
		p := data.Position(i)
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, data.Normal(i))
		assert.LessOrEqual(t, mgl32.Abs(p.X()), float32(2))
		assert.LessOrEqual(t, mgl32.Abs(p.Z()), float32(2))
		assert.Zero(t, p.Y())
	}
	assert.Equal(t, mgl32.Vec2{0, 0}, data.UV(0))
	assert.Equal(t, mgl32.Vec2{1, 1}, data.UV(8))
}

func TestPlaneClampsDivisions(t *testing.T) {
	data := Plane(1, 0)
	assert.Equal(t, 4, data.VertexCount())
	assert.Len(t, data.Indices, 6)
}

func TestCubeWindsOutward(t *testing.T) {
	data := Cube(2)
	assertIndicesInRange(t, data)
	assert.Equal(t, 24, data.VertexCount())
	assert.Len(t, data.Indices, 36)

	for i := 0; i+2 < len(data.Indices); i += 3 {
		n := triangleNormal(data, i)
		vertexNormal := data.Normal(int(data.Indices[i]))
		assert.Greater(t, n.Dot(vertexNormal), float32(0), "triangle %d", i/3)

		centroid := data.Position(int(data.Indices[i])).
			Add(data.Position(int(data.Indices[i+1]))).
			Add(data.Position(int(data.Indices[i+2])))
		assert.Greater(t, n.Dot(centroid), float32(0), "triangle %d points outward", i/3)
	}
	for i := 0; i < data.VertexCount(); i++ {
		p := data.Position(i)
		for _, c := range p {
			assert.Equal(t, float32(1), mgl32.Abs(c))
		}
	}
}

func TestSphereWindsOutward(t *testing.T) {
	const radius = 1.5
	data := Sphere(radius, 8, 12)
	assertIndicesInRange(t, data)
	assert.Equal(t, 9*13, data.VertexCount())

	for i := 0; i < data.VertexCount(); i++ {
		assert.InDelta(t, radius, data.Position(i).Len(), 1e-5)
		assert.InDelta(t, 1, data.Normal(i).Len(), 1e-5)
	}
	for i := 0; i+2 < len(data.Indices); i += 3 {
		n := triangleNormal(data, i)
		if n.Len() < 1e-6 {
			continue // pole triangles collapse
		}
		centroid := data.Position(int(data.Indices[i])).
			Add(data.Position(int(data.Indices[i+1]))).
			Add(data.Position(int(data.Indices[i+2])))
		assert.Greater(t, n.Dot(centroid), float32(0), "triangle %d", i/3)
	}
}

func TestTerrainIsDeterministic(t *testing.T) {
	cfg := DefaultTerrainConfig()
	cfg.Resolution = 8
	a := Terrain(cfg)
	b := Terrain(cfg)
	assert.Equal(t, a, b)

	varied := false
	for i := 0; i < a.VertexCount(); i++ {
		n := a.Normal(i)
		assert.InDelta(t, 1, n.Len(), 1e-5)
		assert.Greater(t, n.Y(), float32(0))
		if a.Position(i).Y() != a.Position(0).Y() {
			varied = true
		}
	}
	assert.True(t, varied, "noise should vary the height")
}

func TestFlatTerrainMatchesPlane(t *testing.T) {
	cfg := DefaultTerrainConfig()
	cfg.Resolution = 4
	cfg.Amplitude = 0

	terrain := Terrain(cfg)
	plane := Plane(cfg.Size, cfg.Resolution)
	assert.Equal(t, plane.Indices, terrain.Indices)
	for i := 0; i < plane.VertexCount(); i++ {
		assert.Equal(t, plane.Position(i), terrain.Position(i))
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, terrain.Normal(i))
	}
}

func TestHeightmapNormalFollowsSlope(t *testing.T) {
	hm := NewHeightmap(DefaultTerrainConfig())
	x, z := float32(3), float32(-2)
	n := hm.Normal(x, z, 0.1)

	// The normal tilts away from the uphill direction.
	uphill := hm.Height(x+0.1, z) - hm.Height(x-0.1, z)
	if uphill > 0 {
		assert.Less(t, n.X(), float32(0))
	} else if uphill < 0 {
		assert.Greater(t, n.X(), float32(0))
	}
}
