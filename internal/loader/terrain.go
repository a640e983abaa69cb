package loader

import (
	"Winter3D/internal/renderer"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// TerrainConfig describes a perlin heightfield.
type TerrainConfig struct {
	Size       float32
	Resolution int
	Amplitude  float32
	// Frequency scales world coordinates before sampling the noise.
	Frequency float64
	Alpha     float64
	Beta      float64
	Octaves   int32
	Seed      int64
}

func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		Size:       40,
		Resolution: 64,
		Amplitude:  1.5,
		Frequency:  0.08,
		Alpha:      2,
		Beta:       2,
		Octaves:    3,
		Seed:       1,
	}
}

// Heightmap samples perlin noise in world units.
type Heightmap struct {
	noise     *perlin.Perlin
	amplitude float32
	frequency float64
}

func NewHeightmap(cfg TerrainConfig) *Heightmap {
	return &Heightmap{
		noise:     perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed),
		amplitude: cfg.Amplitude,
		frequency: cfg.Frequency,
	}
}

// Height returns the terrain height at world (x, z).
func (h *Heightmap) Height(x, z float32) float32 {
	return h.amplitude * float32(h.noise.Noise2D(float64(x)*h.frequency, float64(z)*h.frequency))
}

// Normal uses central differences over step.
func (h *Heightmap) Normal(x, z, step float32) mgl32.Vec3 {
	dx := (h.Height(x+step, z) - h.Height(x-step, z)) / (2 * step)
	dz := (h.Height(x, z+step) - h.Height(x, z-step)) / (2 * step)
	return mgl32.Vec3{-dx, 1, -dz}.Normalize()
}

// Terrain builds a heightfield mesh centred on the origin.
func Terrain(cfg TerrainConfig) renderer.MeshData {
	hm := NewHeightmap(cfg)
	step := cfg.Size / float32(max(cfg.Resolution, 1))
	return heightfield(cfg.Size, cfg.Resolution, func(x, z float32) (float32, mgl32.Vec3) {
		return hm.Height(x, z), hm.Normal(x, z, step)
	})
}
