package labs

import (
	"fmt"
	"image/color"

	"Winter3D/internal/config"
	"Winter3D/internal/engine"
	"Winter3D/internal/input"
	"Winter3D/internal/loader"
	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func init() {
	Register("shading", "Textured model with switchable Phong, Gouraud and flat shading", NewShadingLab)
}

var shadingKeys = []struct {
	action  input.Action
	program string
}{
	{input.ShadingPhong, renderer.PhongProgram},
	{input.ShadingGouraud, renderer.GouraudProgram},
	{input.ShadingFlat, renderer.FlatProgram},
}

// nextShading returns the program picked by this frame's key presses, or current.
func nextShading(src input.EdgeSource, current string) string {
	next := current
	for _, k := range shadingKeys {
		if src.JustPressed(k.action) {
			next = k.program
		}
	}
	return next
}

type shadingProgram struct {
	program                         renderer.Program
	model, view, projection, light  int32
	diffuseSampler, specularSampler int32
}

func newShadingProgram(p renderer.Program) *shadingProgram {
	return &shadingProgram{
		program:         p,
		model:           p.Location("M"),
		view:            p.Location("V"),
		projection:      p.Location("P"),
		light:           p.Location("light_position_worldspace"),
		diffuseSampler:  p.Location("diffuseColorSampler"),
		specularSampler: p.Location("specularColorSampler"),
	}
}

// ShadingLab lights a textured model from the camera position with one of
// three shading programs.
type ShadingLab struct {
	cfg *config.Config

	Camera  *renderer.Camera
	Object  *renderer.Object
	Current string

	programs map[string]*shadingProgram
	textures *renderer.TextureManager
	cleanup  renderer.Unwind
}

func NewShadingLab(cfg *config.Config) engine.Scene {
	return &ShadingLab{cfg: cfg, Current: renderer.PhongProgram}
}

func (l *ShadingLab) Setup(ctx *engine.Context) error {
	l.programs = make(map[string]*shadingProgram, len(shadingKeys))
	for _, k := range shadingKeys {
		name := k.program
		p, err := ctx.Programs.Load(name)
		if err != nil {
			return err
		}
		l.programs[name] = newShadingProgram(p)
		ctx.Programs.OnReload(name, func(p renderer.Program) {
			l.programs[name] = newShadingProgram(p)
		})
	}

	model, err := l.loadModel()
	if err != nil {
		return err
	}
	mesh, err := model.Upload(ctx.Device)
	if err != nil {
		return err
	}
	l.cleanup.Release(mesh)

	l.textures = ctx.Textures
	diffuse, err := l.texture(model.DiffuseMap, l.cfg.Assets.DiffuseTexture, "checker_diffuse",
		color.NRGBA{R: 200, G: 200, B: 200, A: 255}, color.NRGBA{R: 40, G: 90, B: 160, A: 255})
	if err != nil {
		return err
	}
	specular, err := l.texture(model.SpecularMap, l.cfg.Assets.SpecularTexture, "checker_specular",
		color.NRGBA{R: 90, G: 90, B: 90, A: 255}, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	if err != nil {
		return err
	}

	l.Object = renderer.NewObject(model.Name, mesh, model.Material).SetTextures(diffuse, specular)

	camCfg := l.cfg.Camera.Renderer(ctx.Aspect())
	camCfg.Position = mgl32.Vec3{0, 0, 4}
	camCfg.HorizontalAngle, camCfg.VerticalAngle = 0, 0
	camCfg.AngleMode = renderer.AngleTimeScaled
	camCfg.Forward = renderer.ForwardNegZ
	camCfg.MouseSpeed, camCfg.Speed = 0.1, 3
	l.Camera = renderer.NewCamera(camCfg, ctx.Input)
	return nil
}

// loadModel reads the configured model, or builds a sphere when none is set.
func (l *ShadingLab) loadModel() (*loader.Model, error) {
	if l.cfg.Assets.Model == "" {
		return &loader.Model{
			Name:     "sphere",
			Data:     loader.Sphere(1, 32, 48),
			Material: loader.DefaultMaterial,
		}, nil
	}
	path := l.cfg.Asset(l.cfg.Assets.Model)
	model, err := loader.LoadCached(path, l.cfg.Assets.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return model, nil
}

// texture prefers the map named by the model's material, then the
// configured file, then a generated checkerboard.
func (l *ShadingLab) texture(fromMaterial, configured, fallback string, a, b color.Color) (renderer.Texture, error) {
	path := fromMaterial
	if path == "" && configured != "" {
		path = l.cfg.Asset(configured)
	}
	if path != "" {
		t, err := l.textures.LoadTexture(path)
		if err == nil {
			l.cleanup.Add(func() { l.textures.ReleaseTexture(t) })
			return t, nil
		}
		logger.Log.Warn("Falling back to generated texture", zap.String("path", path), zap.Error(err))
	}
	t, err := l.textures.CreateTextureFromImage(loader.Checkerboard(256, 8, a, b), fallback)
	if err != nil {
		return nil, err
	}
	l.cleanup.Add(func() { l.textures.ReleaseTexture(t) })
	return t, nil
}

func (l *ShadingLab) Frame(ctx *engine.Context) {
	if next := nextShading(ctx.Input, l.Current); next != l.Current {
		l.Current = next
		logger.Log.Info("Shading changed", zap.String("program", next))
	}
	l.Camera.Update()

	device := ctx.Device
	device.BindRenderTarget(nil)
	device.Viewport(0, 0, ctx.Width, ctx.Height)
	device.Clear(renderer.ClearColor | renderer.ClearDepth)

	sp := l.programs[l.Current]
	device.UseProgram(sp.program)
	sp.program.SetMat4(sp.view, l.Camera.GetViewMatrix())
	sp.program.SetMat4(sp.projection, l.Camera.GetProjectionMatrix())
	sp.program.SetVec3(sp.light, l.Camera.Position)
	sp.program.SetMat4(sp.model, l.Object.ModelMatrix())

	device.BindTexture(renderer.DiffuseTextureUnit, l.Object.Diffuse)
	sp.program.SetInt(sp.diffuseSampler, renderer.DiffuseTextureUnit)
	device.BindTexture(renderer.SpecularTextureUnit, l.Object.Specular)
	sp.program.SetInt(sp.specularSampler, renderer.SpecularTextureUnit)

	device.Draw(l.Object.Mesh)
}

func (l *ShadingLab) Release() {
	l.cleanup.Unwind()
	l.Object = nil
}
