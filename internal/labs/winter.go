package labs

import (
	"fmt"
	"image/color"

	"Winter3D/internal/config"
	"Winter3D/internal/engine"
	"Winter3D/internal/loader"
	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"go.uber.org/zap"
)

func init() {
	Register("winter", "Two shadow-casting lights over a perlin terrain", NewWinterLab)
}

// WinterLab renders a terrain, a silver sphere and a chrome cube lit by up
// to two lights, each with its own shadow map. Keys 1 and 2 pick the light
// that the movement keys drive.
type WinterLab struct {
	cfg *config.Config

	Camera   *renderer.Camera
	Lights   []*renderer.Light
	Selector *renderer.LightSelector
	Objects  []*renderer.Object
	Pipeline renderer.Frame

	depth    *renderer.DepthPass
	lighting *renderer.LightingPass
	textures *renderer.TextureManager
	failed   bool
	cleanup  renderer.Unwind
}

func NewWinterLab(cfg *config.Config) engine.Scene {
	return &WinterLab{cfg: cfg}
}

func (l *WinterLab) Setup(ctx *engine.Context) error {
	device := ctx.Device

	depthProgram, err := ctx.Programs.Load(renderer.DepthProgram)
	if err != nil {
		return err
	}
	shadowProgram, err := ctx.Programs.Load(renderer.ShadowMappingProgram)
	if err != nil {
		return err
	}
	l.depth = renderer.NewDepthPass(device, depthProgram)
	l.lighting = renderer.NewLightingPass(device, shadowProgram, ctx.Width, ctx.Height)
	l.lighting.ClearColor = l.cfg.ClearColor()
	l.lighting.ShadowBias = l.cfg.Shadow.Bias
	ctx.Programs.OnReload(renderer.DepthProgram, l.depth.SetProgram)
	ctx.Programs.OnReload(renderer.ShadowMappingProgram, l.lighting.SetProgram)

	indicator, err := device.NewMesh(loader.Sphere(1, 12, 16))
	if err != nil {
		return fmt.Errorf("indicator mesh: %w", err)
	}
	l.cleanup.Release(indicator)
	l.lighting.Indicator = indicator

	shadowLights := make([]renderer.ShadowLight, 0, len(l.cfg.Lights))
	for i, lc := range l.cfg.LightConfigs() {
		target, err := device.NewDepthTarget(l.cfg.ShadowTarget())
		if err != nil {
			return fmt.Errorf("light %d shadow map: %w", i+1, err)
		}
		l.cleanup.Release(target)
		light := renderer.NewLight(lc)
		l.Lights = append(l.Lights, light)
		shadowLights = append(shadowLights, renderer.ShadowLight{Light: light, Target: target})
	}
	l.Selector = renderer.NewLightSelector(l.Lights...)

	if err := l.buildObjects(ctx); err != nil {
		return err
	}

	l.Camera = renderer.NewCamera(l.cfg.Camera.Renderer(ctx.Aspect()), ctx.Input)
	l.Pipeline = renderer.Frame{
		Camera:   l.Camera,
		Lights:   shadowLights,
		Objects:  l.Objects,
		Depth:    l.depth,
		Lighting: l.lighting,
	}
	logger.Log.Info("Winter scene ready",
		zap.Int("lights", len(l.Lights)),
		zap.Int("objects", len(l.Objects)),
		zap.Int("shadowResolution", l.cfg.Shadow.Resolution))
	return nil
}

func (l *WinterLab) buildObjects(ctx *engine.Context) error {
	device := ctx.Device
	upload := func(name string, data renderer.MeshData) (renderer.Mesh, error) {
		mesh, err := device.NewMesh(data)
		if err != nil {
			return nil, fmt.Errorf("%s mesh: %w", name, err)
		}
		l.cleanup.Release(mesh)
		return mesh, nil
	}

	terrainMesh, err := upload("terrain", loader.Terrain(l.cfg.Terrain.Loader()))
	if err != nil {
		return err
	}
	floor := renderer.NewObject("terrain", terrainMesh, renderer.WhitePlaster)
	l.textures = ctx.Textures
	diffuse, specular, err := l.floorTextures()
	if err != nil {
		return err
	}
	floor.SetTextures(diffuse, specular)

	sphereMesh, err := upload("sphere", loader.Sphere(1, 24, 32))
	if err != nil {
		return err
	}
	sphere := renderer.NewObject("sphere", sphereMesh, renderer.PolishedSilver).
		SetPosition(0, 4, 0).
		SetScale(1.5, 1.5, 1.5)

	cubeMesh, err := upload("cube", loader.Cube(1))
	if err != nil {
		return err
	}
	cube := renderer.NewObject("cube", cubeMesh, renderer.Chrome).
		SetPosition(4, 1.5, 3).
		SetScale(1.5, 1.5, 1.5).
		Rotate(0, 30, 0)

	l.Objects = []*renderer.Object{floor, sphere, cube}
	return nil
}

// floorTextures loads the configured terrain textures or generates a snowy checkerboard.
func (l *WinterLab) floorTextures() (renderer.Texture, renderer.Texture, error) {
	load := func(configured, name string, a, b color.Color) (renderer.Texture, error) {
		if configured != "" {
			path := l.cfg.Asset(configured)
			t, err := l.textures.LoadTexture(path)
			if err == nil {
				l.cleanup.Add(func() { l.textures.ReleaseTexture(t) })
				return t, nil
			}
			logger.Log.Warn("Falling back to generated texture", zap.String("path", path), zap.Error(err))
		}
		t, err := l.textures.CreateTextureFromImage(loader.Checkerboard(256, 16, a, b), name)
		if err != nil {
			return nil, err
		}
		l.cleanup.Add(func() { l.textures.ReleaseTexture(t) })
		return t, nil
	}

	diffuse, err := load(l.cfg.Assets.DiffuseTexture, "snow_diffuse",
		color.NRGBA{R: 235, G: 240, B: 250, A: 255}, color.NRGBA{R: 205, G: 215, B: 230, A: 255})
	if err != nil {
		return nil, nil, err
	}
	specular, err := load(l.cfg.Assets.SpecularTexture, "snow_specular",
		color.NRGBA{R: 60, G: 60, B: 60, A: 255}, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	if err != nil {
		return nil, nil, err
	}
	return diffuse, specular, nil
}

func (l *WinterLab) Frame(ctx *engine.Context) {
	if l.failed {
		return
	}
	l.Selector.Update(ctx.Input, ctx.DeltaTime)
	l.lighting.SetViewport(ctx.Width, ctx.Height)
	if err := l.Pipeline.Run(); err != nil {
		logger.Log.Error("Frame aborted", zap.Error(err))
		l.failed = true
		ctx.Quit()
	}
}

func (l *WinterLab) Release() {
	l.cleanup.Unwind()
	l.Objects = nil
	l.Lights = nil
}
