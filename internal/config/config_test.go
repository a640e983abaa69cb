package config

import (
	"os"
	"path/filepath"
	"testing"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into dir for the rest of the test so Load finds no winter3d.yaml.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Lights, renderer.MaxShadowLights)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "winter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  width: 640
  title: test
camera:
  mode: time_scaled
  forward: "-z"
  position: [1, 2, 3]
shadow:
  wrap: edge
lights:
  - position: [0, 10, 0]
    la: [0.1, 0.1, 0.1, 1]
    ld: [1, 1, 1, 1]
    ls: [1, 1, 1, 1]
    near: 1
    far: 20
    indicator: emerald
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, "test", cfg.Window.Title)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)

	cam := cfg.Camera.Renderer(2)
	assert.Equal(t, renderer.AngleTimeScaled, cam.AngleMode)
	assert.Equal(t, renderer.ForwardNegZ, cam.Forward)
	assert.Equal(t, float32(2), cam.Aspect)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cam.Position)

	assert.Equal(t, renderer.WrapClampToEdge, cfg.ShadowTarget().Wrap)
	assert.Equal(t, int32(4096), cfg.ShadowTarget().Width)

	lights := cfg.LightConfigs()
	require.Len(t, lights, 1)
	assert.Equal(t, renderer.Emerald, lights[0].Indicator)
	assert.Equal(t, renderer.Orthographic, lights[0].Projection)
	assert.Equal(t, mgl32.Vec4{0.1, 0.1, 0.1, 1}, lights[0].La)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WINTER3D_WINDOW_HEIGHT", "600")
	t.Setenv("WINTER3D_SHADOW_RESOLUTION", "1024")
	t.Setenv("WINTER3D_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, 1024, cfg.Shadow.Resolution)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera:\n  mode: sideways\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera mode")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	want := DefaultConfig()
	want.Window.Title = "saved"
	want.Lights[1].Projection = "perspective"
	want.Shaders = ShadersConfig{Dir: "shaders", HotReload: true}

	require.NoError(t, Save(want, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"window", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"camera mode", func(c *Config) { c.Camera.Mode = "orbit" }, "camera mode"},
		{"camera forward", func(c *Config) { c.Camera.Forward = "x" }, "camera forward"},
		{"fov bounds", func(c *Config) { c.Camera.MinFoV = 60 }, "fov bounds"},
		{"clip planes", func(c *Config) { c.Camera.Far = 0.01 }, "clip planes"},
		{"shadow resolution", func(c *Config) { c.Shadow.Resolution = 0 }, "shadow resolution"},
		{"shadow bias", func(c *Config) { c.Shadow.Bias = -1 }, "shadow bias"},
		{"shadow wrap", func(c *Config) { c.Shadow.Wrap = "mirror" }, "shadow wrap"},
		{"too many lights", func(c *Config) { c.Lights = append(c.Lights, c.Lights[0]) }, "at most 2"},
		{"light projection", func(c *Config) { c.Lights[0].Projection = "fisheye" }, "light 1"},
		{"light indicator", func(c *Config) { c.Lights[1].Indicator = "plutonium" }, "light 2"},
		{"light on target", func(c *Config) { c.Lights[0].Target = c.Lights[0].Position }, "position and target"},
		{"terrain", func(c *Config) { c.Terrain.Resolution = 0 }, "terrain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssetPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assets.Dir = "data"
	assert.Equal(t, filepath.Join("data", "suzanne.obj"), cfg.Asset("suzanne.obj"))
	assert.Equal(t, "", cfg.Asset(""))
	abs := filepath.Join(string(filepath.Separator), "tmp", "a.bmp")
	assert.Equal(t, abs, cfg.Asset(abs))
}

func TestTerrainConversion(t *testing.T) {
	cfg := DefaultConfig()
	tc := cfg.Terrain.Loader()
	assert.Equal(t, cfg.Terrain.Size, tc.Size)
	assert.Equal(t, cfg.Terrain.Seed, tc.Seed)
	assert.Equal(t, cfg.Terrain.Octaves, tc.Octaves)
}
