// Package config loads the lab settings from yaml files and WINTER3D_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Winter3D/internal/loader"
	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/viper"
)

const envPrefix = "WINTER3D"

// Config holds every section of a lab configuration file.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Window  WindowConfig  `mapstructure:"window" yaml:"window"`
	Camera  CameraConfig  `mapstructure:"camera" yaml:"camera"`
	Shadow  ShadowConfig  `mapstructure:"shadow" yaml:"shadow"`
	Lights  []LightConfig `mapstructure:"lights" yaml:"lights"`
	Shaders ShadersConfig `mapstructure:"shaders" yaml:"shaders"`
	Assets  AssetsConfig  `mapstructure:"assets" yaml:"assets"`
	Terrain TerrainConfig `mapstructure:"terrain" yaml:"terrain"`

	// Keys maps action names to key names, replacing the default bindings
	// of the listed actions.
	Keys map[string][]string `mapstructure:"keys" yaml:"keys"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

type WindowConfig struct {
	Title      string     `mapstructure:"title" yaml:"title"`
	Width      int        `mapstructure:"width" yaml:"width"`
	Height     int        `mapstructure:"height" yaml:"height"`
	Samples    int        `mapstructure:"samples" yaml:"samples"`
	VSync      bool       `mapstructure:"vsync" yaml:"vsync"`
	ClearColor [4]float32 `mapstructure:"clear_color" yaml:"clear_color"`
}

// CameraConfig mirrors renderer.CameraConfig with angles in radians and
// string enums. Aspect 0 means the window's aspect ratio.
type CameraConfig struct {
	Mode            string     `mapstructure:"mode" yaml:"mode"`
	Forward         string     `mapstructure:"forward" yaml:"forward"`
	Position        [3]float32 `mapstructure:"position" yaml:"position"`
	HorizontalAngle float32    `mapstructure:"horizontal_angle" yaml:"horizontal_angle"`
	VerticalAngle   float32    `mapstructure:"vertical_angle" yaml:"vertical_angle"`
	FoV             float32    `mapstructure:"fov" yaml:"fov"`
	MinFoV          float32    `mapstructure:"min_fov" yaml:"min_fov"`
	MaxFoV          float32    `mapstructure:"max_fov" yaml:"max_fov"`
	Speed           float32    `mapstructure:"speed" yaml:"speed"`
	MouseSpeed      float32    `mapstructure:"mouse_speed" yaml:"mouse_speed"`
	ZoomSpeed       float32    `mapstructure:"zoom_speed" yaml:"zoom_speed"`
	Near            float32    `mapstructure:"near" yaml:"near"`
	Far             float32    `mapstructure:"far" yaml:"far"`
	Aspect          float32    `mapstructure:"aspect" yaml:"aspect"`
	Tilt            bool       `mapstructure:"tilt" yaml:"tilt"`
	TiltSpeed       float32    `mapstructure:"tilt_speed" yaml:"tilt_speed"`
	MaxTilt         float32    `mapstructure:"max_tilt" yaml:"max_tilt"`
}

type ShadowConfig struct {
	Resolution int     `mapstructure:"resolution" yaml:"resolution"`
	Bias       float32 `mapstructure:"bias" yaml:"bias"`
	Wrap       string  `mapstructure:"wrap" yaml:"wrap"`
}

type LightConfig struct {
	Position   [3]float32 `mapstructure:"position" yaml:"position"`
	Target     [3]float32 `mapstructure:"target" yaml:"target"`
	La         [4]float32 `mapstructure:"la" yaml:"la"`
	Ld         [4]float32 `mapstructure:"ld" yaml:"ld"`
	Ls         [4]float32 `mapstructure:"ls" yaml:"ls"`
	Projection string     `mapstructure:"projection" yaml:"projection"`
	HalfExtent float32    `mapstructure:"half_extent" yaml:"half_extent"`
	FoV        float32    `mapstructure:"fov" yaml:"fov"`
	Near       float32    `mapstructure:"near" yaml:"near"`
	Far        float32    `mapstructure:"far" yaml:"far"`
	Speed      float32    `mapstructure:"speed" yaml:"speed"`
	Indicator  string     `mapstructure:"indicator" yaml:"indicator"`
}

type ShadersConfig struct {
	// Dir overrides the embedded shaders. Empty uses the embedded copy.
	Dir       string `mapstructure:"dir" yaml:"dir"`
	HotReload bool   `mapstructure:"hot_reload" yaml:"hot_reload"`
}

type AssetsConfig struct {
	Dir             string `mapstructure:"dir" yaml:"dir"`
	Model           string `mapstructure:"model" yaml:"model"`
	DiffuseTexture  string `mapstructure:"diffuse_texture" yaml:"diffuse_texture"`
	SpecularTexture string `mapstructure:"specular_texture" yaml:"specular_texture"`
	CacheDir        string `mapstructure:"cache_dir" yaml:"cache_dir"`
}

type TerrainConfig struct {
	Size       float32 `mapstructure:"size" yaml:"size"`
	Resolution int     `mapstructure:"resolution" yaml:"resolution"`
	Amplitude  float32 `mapstructure:"amplitude" yaml:"amplitude"`
	Frequency  float64 `mapstructure:"frequency" yaml:"frequency"`
	Alpha      float64 `mapstructure:"alpha" yaml:"alpha"`
	Beta       float64 `mapstructure:"beta" yaml:"beta"`
	Octaves    int32   `mapstructure:"octaves" yaml:"octaves"`
	Seed       int64   `mapstructure:"seed" yaml:"seed"`
}

// DefaultConfig is the winter scene: two lights above a perlin floor.
func DefaultConfig() *Config {
	terrain := loader.DefaultTerrainConfig()
	ambient := [4]float32{0.2, 0.2, 0.2, 1}
	white := [4]float32{1, 1, 1, 1}

	return &Config{
		Log: LogConfig{Level: "info"},
		Window: WindowConfig{
			Title:      "Winter3D",
			Width:      1024,
			Height:     768,
			Samples:    4,
			VSync:      true,
			ClearColor: [4]float32{0.5, 0.5, 0.5, 1},
		},
		Camera: CameraConfig{
			Mode:            "per_frame",
			Forward:         "+z",
			Position:        [3]float32{0, 6, 16},
			HorizontalAngle: 3.14,
			VerticalAngle:   -0.35,
			FoV:             45,
			MinFoV:          1,
			MaxFoV:          45,
			Speed:           3,
			MouseSpeed:      0.001,
			ZoomSpeed:       2,
			Near:            0.1,
			Far:             100,
			TiltSpeed:       4,
			MaxTilt:         3.14 / 6,
		},
		Shadow: ShadowConfig{
			Resolution: 4096,
			Bias:       renderer.DefaultShadowBias,
			Wrap:       renderer.WrapBorder.String(),
		},
		Lights: []LightConfig{
			{
				Position:   [3]float32{-6, 14, 4},
				La:         ambient,
				Ld:         white,
				Ls:         white,
				Projection: "orthographic",
				HalfExtent: 20,
				FoV:        90,
				Near:       1,
				Far:        30,
				Speed:      5,
				Indicator:  renderer.Gold.Name,
			},
			{
				Position:   [3]float32{7, 12, -5},
				La:         ambient,
				Ld:         [4]float32{0.6, 0.6, 0.9, 1},
				Ls:         [4]float32{0.6, 0.6, 0.9, 1},
				Projection: "orthographic",
				HalfExtent: 20,
				FoV:        90,
				Near:       1,
				Far:        30,
				Speed:      5,
				Indicator:  renderer.Ruby.Name,
			},
		},
		Assets: AssetsConfig{Dir: "assets"},
		Terrain: TerrainConfig{
			Size:       terrain.Size,
			Resolution: terrain.Resolution,
			Amplitude:  terrain.Amplitude,
			Frequency:  terrain.Frequency,
			Alpha:      terrain.Alpha,
			Beta:       terrain.Beta,
			Octaves:    terrain.Octaves,
			Seed:       terrain.Seed,
		},
	}
}

// Load reads path (or ./winter3d.yaml when path is empty and the file
// exists) over the defaults. WINTER3D_SECTION_KEY variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("winter3d")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as yaml, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.Set("log", cfg.Log)
	v.Set("window", cfg.Window)
	v.Set("camera", cfg.Camera)
	v.Set("shadow", cfg.Shadow)
	v.Set("lights", cfg.Lights)
	v.Set("shaders", cfg.Shaders)
	v.Set("assets", cfg.Assets)
	v.Set("terrain", cfg.Terrain)
	if len(cfg.Keys) > 0 {
		v.Set("keys", cfg.Keys)
	}
	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)

	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("window.samples", d.Window.Samples)
	v.SetDefault("window.vsync", d.Window.VSync)
	v.SetDefault("window.clear_color", d.Window.ClearColor)

	c := d.Camera
	v.SetDefault("camera.mode", c.Mode)
	v.SetDefault("camera.forward", c.Forward)
	v.SetDefault("camera.position", c.Position)
	v.SetDefault("camera.horizontal_angle", c.HorizontalAngle)
	v.SetDefault("camera.vertical_angle", c.VerticalAngle)
	v.SetDefault("camera.fov", c.FoV)
	v.SetDefault("camera.min_fov", c.MinFoV)
	v.SetDefault("camera.max_fov", c.MaxFoV)
	v.SetDefault("camera.speed", c.Speed)
	v.SetDefault("camera.mouse_speed", c.MouseSpeed)
	v.SetDefault("camera.zoom_speed", c.ZoomSpeed)
	v.SetDefault("camera.near", c.Near)
	v.SetDefault("camera.far", c.Far)
	v.SetDefault("camera.aspect", c.Aspect)
	v.SetDefault("camera.tilt", c.Tilt)
	v.SetDefault("camera.tilt_speed", c.TiltSpeed)
	v.SetDefault("camera.max_tilt", c.MaxTilt)

	v.SetDefault("shadow.resolution", d.Shadow.Resolution)
	v.SetDefault("shadow.bias", d.Shadow.Bias)
	v.SetDefault("shadow.wrap", d.Shadow.Wrap)

	v.SetDefault("lights", d.Lights)

	v.SetDefault("shaders.dir", d.Shaders.Dir)
	v.SetDefault("shaders.hot_reload", d.Shaders.HotReload)

	v.SetDefault("assets.dir", d.Assets.Dir)
	v.SetDefault("assets.model", d.Assets.Model)
	v.SetDefault("assets.diffuse_texture", d.Assets.DiffuseTexture)
	v.SetDefault("assets.specular_texture", d.Assets.SpecularTexture)
	v.SetDefault("assets.cache_dir", d.Assets.CacheDir)

	t := d.Terrain
	v.SetDefault("terrain.size", t.Size)
	v.SetDefault("terrain.resolution", t.Resolution)
	v.SetDefault("terrain.amplitude", t.Amplitude)
	v.SetDefault("terrain.frequency", t.Frequency)
	v.SetDefault("terrain.alpha", t.Alpha)
	v.SetDefault("terrain.beta", t.Beta)
	v.SetDefault("terrain.octaves", t.Octaves)
	v.SetDefault("terrain.seed", t.Seed)
}

// Validate checks ranges and enum strings.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.Camera.angleMode(); err != nil {
		return err
	}
	if _, err := c.Camera.forwardAxis(); err != nil {
		return err
	}
	if c.Camera.MinFoV <= 0 || c.Camera.MinFoV > c.Camera.MaxFoV || c.Camera.MaxFoV >= 180 {
		return fmt.Errorf("invalid camera fov bounds [%g, %g]", c.Camera.MinFoV, c.Camera.MaxFoV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera clip planes near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Shadow.Resolution <= 0 {
		return fmt.Errorf("invalid shadow resolution %d", c.Shadow.Resolution)
	}
	if c.Shadow.Bias < 0 {
		return fmt.Errorf("invalid shadow bias %g", c.Shadow.Bias)
	}
	if _, ok := renderer.ParseWrapMode(c.Shadow.Wrap); !ok {
		return fmt.Errorf("invalid shadow wrap %q (must be border or edge)", c.Shadow.Wrap)
	}
	if len(c.Lights) > renderer.MaxShadowLights {
		return fmt.Errorf("%d lights configured, at most %d are supported", len(c.Lights), renderer.MaxShadowLights)
	}
	for i, l := range c.Lights {
		if _, err := l.Renderer(); err != nil {
			return fmt.Errorf("light %d: %w", i+1, err)
		}
	}
	if c.Terrain.Resolution <= 0 || c.Terrain.Size <= 0 {
		return fmt.Errorf("invalid terrain size %g / resolution %d", c.Terrain.Size, c.Terrain.Resolution)
	}
	return nil
}

func (c CameraConfig) angleMode() (renderer.AngleMode, error) {
	switch c.Mode {
	case "time_scaled":
		return renderer.AngleTimeScaled, nil
	case "per_frame":
		return renderer.AnglePerFrame, nil
	}
	return 0, fmt.Errorf("invalid camera mode %q (must be time_scaled or per_frame)", c.Mode)
}

func (c CameraConfig) forwardAxis() (renderer.ForwardAxis, error) {
	switch c.Forward {
	case "-z":
		return renderer.ForwardNegZ, nil
	case "+z":
		return renderer.ForwardPosZ, nil
	}
	return 0, fmt.Errorf("invalid camera forward %q (must be -z or +z)", c.Forward)
}

// Renderer converts the section. windowAspect is used when Aspect is 0.
func (c CameraConfig) Renderer(windowAspect float32) renderer.CameraConfig {
	mode, _ := c.angleMode()
	forward, _ := c.forwardAxis()
	aspect := c.Aspect
	if aspect == 0 {
		aspect = windowAspect
	}
	return renderer.CameraConfig{
		Position:        mgl32.Vec3(c.Position),
		HorizontalAngle: c.HorizontalAngle,
		VerticalAngle:   c.VerticalAngle,
		FoV:             c.FoV,
		MinFoV:          c.MinFoV,
		MaxFoV:          c.MaxFoV,
		Speed:           c.Speed,
		MouseSpeed:      c.MouseSpeed,
		ZoomSpeed:       c.ZoomSpeed,
		Near:            c.Near,
		Far:             c.Far,
		Aspect:          aspect,
		AngleMode:       mode,
		Forward:         forward,
		Tilt:            c.Tilt,
		TiltSpeed:       c.TiltSpeed,
		MaxTilt:         c.MaxTilt,
	}
}

// Renderer converts the section, resolving the indicator material by name.
func (l LightConfig) Renderer() (renderer.LightConfig, error) {
	out := renderer.LightConfig{
		La:         mgl32.Vec4(l.La),
		Ld:         mgl32.Vec4(l.Ld),
		Ls:         mgl32.Vec4(l.Ls),
		Position:   mgl32.Vec3(l.Position),
		Target:     mgl32.Vec3(l.Target),
		HalfExtent: l.HalfExtent,
		FoV:        l.FoV,
		Near:       l.Near,
		Far:        l.Far,
		Speed:      l.Speed,
		Indicator:  renderer.Gold,
	}

	switch l.Projection {
	case "orthographic", "":
		out.Projection = renderer.Orthographic
	case "perspective":
		out.Projection = renderer.Perspective
	default:
		return out, fmt.Errorf("invalid projection %q (must be orthographic or perspective)", l.Projection)
	}
	if l.Near <= 0 || l.Far <= l.Near {
		return out, fmt.Errorf("invalid clip planes near=%g far=%g", l.Near, l.Far)
	}
	if l.Position == l.Target {
		return out, fmt.Errorf("position and target are both %v", l.Position)
	}
	if l.Indicator != "" {
		m, ok := renderer.MaterialByName(l.Indicator)
		if !ok {
			return out, fmt.Errorf("unknown indicator material %q", l.Indicator)
		}
		out.Indicator = m
	}
	return out, nil
}

// LightConfigs converts every light. Call after Validate.
func (c *Config) LightConfigs() []renderer.LightConfig {
	out := make([]renderer.LightConfig, 0, len(c.Lights))
	for _, l := range c.Lights {
		lc, _ := l.Renderer()
		out = append(out, lc)
	}
	return out
}

// ShadowTarget is the depth target shape shared by all lights.
func (c *Config) ShadowTarget() renderer.DepthTargetSpec {
	wrap, _ := renderer.ParseWrapMode(c.Shadow.Wrap)
	size := int32(c.Shadow.Resolution)
	return renderer.DepthTargetSpec{Width: size, Height: size, Wrap: wrap}
}

// Loader converts the section for loader.Terrain.
func (t TerrainConfig) Loader() loader.TerrainConfig {
	return loader.TerrainConfig{
		Size:       t.Size,
		Resolution: t.Resolution,
		Amplitude:  t.Amplitude,
		Frequency:  t.Frequency,
		Alpha:      t.Alpha,
		Beta:       t.Beta,
		Octaves:    t.Octaves,
		Seed:       t.Seed,
	}
}

// ClearColor returns the window clear colour.
func (c *Config) ClearColor() mgl32.Vec4 {
	return mgl32.Vec4(c.Window.ClearColor)
}

// Asset resolves a path from the assets section against Assets.Dir.
// Absolute paths and empty names are returned unchanged.
func (c *Config) Asset(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Assets.Dir, name)
}
