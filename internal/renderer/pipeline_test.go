package renderer_test

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"Winter3D/internal/input/inputtest"
	"Winter3D/internal/renderer"
	"Winter3D/internal/renderer/software"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	windowSize    = 64
	shadowMapSize = 256
)

var (
	red   = mgl32.Vec4{1, 0, 0, 1}
	green = mgl32.Vec4{0, 1, 0, 1}
	white = mgl32.Vec4{1, 1, 1, 1}
)

// horizontalQuad spans [x0,x1]x[z0,z1] at height y with an upward normal.
func horizontalQuad(x0, x1, z0, z1, y float32) renderer.MeshData {
	return renderer.MeshData{
		Interleaved: []float32{
			x0, y, z0, 0, 0, 0, 1, 0,
			x1, y, z0, 1, 0, 0, 1, 0,
			x1, y, z1, 1, 1, 0, 1, 0,
			x0, y, z1, 0, 1, 0, 1, 0,
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

type testScene struct {
	device   *software.Device
	programs *renderer.ProgramSet
	depth    *renderer.DepthPass
	lighting *renderer.LightingPass
	camera   *renderer.Camera
	objects  []*renderer.Object
	lights   []renderer.ShadowLight
}

func newTestScene(t *testing.T) *testScene {
	t.Helper()
	device := software.NewDevice(windowSize, windowSize)
	programs := renderer.NewProgramSet(device, "")
	depthProgram, err := programs.Load(renderer.DepthProgram)
	require.NoError(t, err)
	lightingProgram, err := programs.Load(renderer.ShadowMappingProgram)
	require.NoError(t, err)

	cfg := renderer.TimeScaledCameraConfig()
	cfg.Position = mgl32.Vec3{0, 12, 12}
	cfg.VerticalAngle = -math.Pi / 4
	cfg.FoV, cfg.MaxFoV = 60, 60
	cfg.Aspect = 1
	cfg.Tilt = false

	s := &testScene{
		device:   device,
		programs: programs,
		depth:    renderer.NewDepthPass(device, depthProgram),
		lighting: renderer.NewLightingPass(device, lightingProgram, windowSize, windowSize),
		camera:   renderer.NewCamera(cfg, inputtest.New(800, 600)),
	}
	s.camera.Update()
	return s
}

func (s *testScene) addObject(t *testing.T, name string, data renderer.MeshData, m renderer.Material) *renderer.Object {
	t.Helper()
	mesh, err := s.device.NewMesh(data)
	require.NoError(t, err)
	o := renderer.NewObject(name, mesh, m)
	s.objects = append(s.objects, o)
	return o
}

func (s *testScene) addLight(t *testing.T, position, target mgl32.Vec3, halfExtent float32, ld mgl32.Vec4, wrap renderer.WrapMode) renderer.ShadowLight {
	t.Helper()
	cfg := renderer.DefaultLightConfig()
	cfg.La = mgl32.Vec4{}
	cfg.Ld = ld
	cfg.Ls = mgl32.Vec4{}
	cfg.Position = position
	cfg.Target = target
	cfg.HalfExtent = halfExtent

	target2D, err := s.device.NewDepthTarget(renderer.DepthTargetSpec{Width: shadowMapSize, Height: shadowMapSize, Wrap: wrap})
	require.NoError(t, err)
	l := renderer.ShadowLight{Light: renderer.NewLight(cfg), Target: target2D}
	s.lights = append(s.lights, l)
	return l
}

func (s *testScene) frame() *renderer.Frame {
	return &renderer.Frame{
		Camera:   s.camera,
		Lights:   s.lights,
		Objects:  s.objects,
		Depth:    s.depth,
		Lighting: s.lighting,
	}
}

// colorAt returns the window colour where world point p lands.
func (s *testScene) colorAt(t *testing.T, p mgl32.Vec3) mgl32.Vec4 {
	t.Helper()
	clip := s.camera.GetViewProjection().Mul4x1(p.Vec4(1))
	require.Greater(t, clip.W(), float32(0))
	ndc := clip.Vec3().Mul(1 / clip.W())
	x := int((ndc.X() + 1) / 2 * windowSize)
	y := int((ndc.Y() + 1) / 2 * windowSize)
	require.True(t, x >= 0 && x < windowSize && y >= 0 && y < windowSize, "point %v is off screen", p)
	return s.device.ColorAt(x, y)
}

func diffuseOnly() renderer.Material {
	return renderer.Material{Name: "diffuse", Kd: white, Ns: 1}
}

func TestOccluderShadowsOnlyItsLight(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	s.addObject(t, "occluder", horizontalQuad(-6, -4, -1, 1, 5), renderer.Gold)
	s.addLight(t, mgl32.Vec3{-5, 10, 0}, mgl32.Vec3{-5, 0, 0}, 6, red, renderer.WrapBorder)
	s.addLight(t, mgl32.Vec3{5, 10, 0}, mgl32.Vec3{0, 0, 0}, 15, green, renderer.WrapBorder)

	require.NoError(t, s.frame().Run())

	shadowed := s.colorAt(t, mgl32.Vec3{-5, 0, 0})
	assert.InDelta(t, 0, shadowed.X(), 0.01, "light 1 is blocked by the occluder")
	assert.Greater(t, shadowed.Y(), float32(0.5), "light 2 still reaches the floor")

	reference := s.colorAt(t, mgl32.Vec3{-5, 0, 5})
	assert.Greater(t, reference.X(), float32(0.5))
	assert.Greater(t, reference.Y(), float32(0.3))
}

func TestBorderClampLeavesOutsideLit(t *testing.T) {
	tests := []struct {
		name    string
		wrap    renderer.WrapMode
		green   float32
		message string
	}{
		{"border", renderer.WrapBorder, 0.707, "outside the light frustum reads as lit"},
		{"edge", renderer.WrapClampToEdge, 0, "edge clamping smears the occluder outward"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t)
			s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
			s.addObject(t, "edge occluder", horizontalQuad(1.5, 3, -1, 1, 8), renderer.Ruby)
			s.addLight(t, mgl32.Vec3{5, 10, 0}, mgl32.Vec3{5, 0, 0}, 3, green, tt.wrap)

			require.NoError(t, s.frame().Run())

			c := s.colorAt(t, mgl32.Vec3{-5, 0, 0})
			assert.InDelta(t, tt.green, c.Y(), 0.05, tt.message)
		})
	}
}

func TestDepthTargetsWriteIsolation(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	s.addObject(t, "occluder", horizontalQuad(-6, -4, -1, 1, 5), renderer.Gold)
	first := s.addLight(t, mgl32.Vec3{-5, 10, 0}, mgl32.Vec3{-5, 0, 0}, 6, red, renderer.WrapBorder)
	second := s.addLight(t, mgl32.Vec3{5, 10, 0}, mgl32.Vec3{0, 0, 0}, 15, green, renderer.WrapBorder)

	s.depth.RenderLight(first.Light, first.Target, s.objects)
	snapshot := first.Target.(*software.DepthTarget).Depth()

	require.NoError(t, s.frame().Run())

	assert.Equal(t, snapshot, first.Target.(*software.DepthTarget).Depth())
	assert.NotEqual(t, snapshot, second.Target.(*software.DepthTarget).Depth())
}

func TestDepthPassRestoresWindowTarget(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	l := s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 10, white, renderer.WrapBorder)

	s.depth.RenderLight(l.Light, l.Target, s.objects)

	assert.Nil(t, s.device.BoundTarget())
	assert.Less(t, l.Target.(*software.DepthTarget).DepthAt(shadowMapSize/2, shadowMapSize/2), float32(1))
}

func TestDepthPassSkipsNonCasters(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	s.addObject(t, "glass", horizontalQuad(-1, 1, -1, 1, 3), renderer.Ruby).CastsShadow = false
	l := s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 10, white, renderer.WrapBorder)

	s.device.ResetStats()
	s.depth.RenderLight(l.Light, l.Target, s.objects)

	assert.Equal(t, 1, s.device.Stats().DrawCalls)
}

func TestFrameOrder(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	s.addLight(t, mgl32.Vec3{-5, 10, 0}, mgl32.Vec3{-5, 0, 0}, 6, red, renderer.WrapBorder)
	s.addLight(t, mgl32.Vec3{5, 10, 0}, mgl32.Vec3{0, 0, 0}, 15, green, renderer.WrapBorder)

	presented := 0
	f := s.frame()
	f.Present = func() { presented++ }

	f.Begin()
	assert.ErrorIs(t, f.RenderLighting(), renderer.ErrDepthPassPending)
	require.NoError(t, f.RenderDepth(0))
	assert.ErrorIs(t, f.RenderLighting(), renderer.ErrDepthPassPending)
	require.NoError(t, f.RenderDepth(1))
	require.NoError(t, f.RenderLighting())
	assert.Equal(t, renderer.StageLightingPass, f.Stage())

	assert.ErrorIs(t, f.RenderDepth(0), renderer.ErrFrameOrder)

	require.NoError(t, f.Finish())
	assert.Equal(t, 1, presented)
	assert.Equal(t, renderer.StageIdle, f.Stage())

	// A new frame needs fresh depth passes.
	f.Begin()
	assert.ErrorIs(t, f.RenderLighting(), renderer.ErrDepthPassPending)
	assert.ErrorIs(t, f.Finish(), renderer.ErrFrameOrder)

	require.NoError(t, f.Run())
	assert.Equal(t, 2, presented)
}

func TestFrameRejectsDepthBeforeBegin(t *testing.T) {
	s := newTestScene(t)
	s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 10, white, renderer.WrapBorder)
	f := s.frame()

	assert.ErrorIs(t, f.RenderDepth(0), renderer.ErrFrameOrder)
	f.Begin()
	assert.ErrorIs(t, f.RenderDepth(5), renderer.ErrFrameOrder)
}

func TestFrameRejectsIncompleteLights(t *testing.T) {
	s := newTestScene(t)
	s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), diffuseOnly())
	s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 10, white, renderer.WrapBorder)

	tests := []struct {
		name  string
		light renderer.ShadowLight
	}{
		{"no target", renderer.ShadowLight{Light: renderer.NewLight(renderer.DefaultLightConfig())}},
		{"no light", renderer.ShadowLight{Target: s.lights[0].Target}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := s.frame()
			f.Lights = append(f.Lights[:1:1], tt.light)

			var err error
			assert.NotPanics(t, func() { err = f.Run() })
			assert.ErrorIs(t, err, renderer.ErrFrameIncomplete)
			assert.Contains(t, err.Error(), "light 2")
			assert.Equal(t, renderer.StageDepthPass, f.Stage())
		})
	}
}

func TestFrameRejectsMissingCamera(t *testing.T) {
	s := newTestScene(t)
	s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 10, white, renderer.WrapBorder)
	f := s.frame()
	f.Camera = nil

	var err error
	assert.NotPanics(t, func() { err = f.Run() })
	assert.ErrorIs(t, err, renderer.ErrFrameIncomplete)
}

func TestDepthPassIgnoresNilTarget(t *testing.T) {
	s := newTestScene(t)
	assert.NotPanics(t, func() {
		s.depth.RenderLight(renderer.NewLight(renderer.DefaultLightConfig()), nil, s.objects)
		s.depth.RenderLight(nil, nil, s.objects)
	})
}

func TestIndicatorsAreUnshaded(t *testing.T) {
	s := newTestScene(t)
	indicator, err := s.device.NewMesh(horizontalQuad(-5, 5, -5, 5, 0))
	require.NoError(t, err)
	s.lighting.Indicator = indicator

	first := s.addLight(t, mgl32.Vec3{0, 4, 0}, mgl32.Vec3{0, 0, 0}, 10, white, renderer.WrapBorder)
	second := s.addLight(t, mgl32.Vec3{-20, 4, -20}, mgl32.Vec3{0, 0, 0}, 10, white, renderer.WrapBorder)
	first.La = mgl32.Vec4{0.2, 0.2, 0.2, 1}
	second.La = mgl32.Vec4{0.1, 0, 0, 1}

	require.NoError(t, s.frame().Run())

	ka := first.Indicator().Ka
	want := mgl32.Vec4{0.3 * ka[0], 0.2 * ka[1], 0.2 * ka[2]}
	got := s.colorAt(t, first.Position)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-3)
	}
}

func TestTexturedObjectUsesTextureColours(t *testing.T) {
	s := newTestScene(t)
	textures := renderer.NewTextureManager(s.device)
	diffuse, err := textures.CreateTextureFromImage(solidImage(color.NRGBA{R: 255, A: 255}), "red")
	require.NoError(t, err)
	specular, err := textures.CreateTextureFromImage(solidImage(color.NRGBA{A: 255}), "black")
	require.NoError(t, err)

	floor := s.addObject(t, "floor", horizontalQuad(-10, 10, -10, 10, 0), renderer.Material{})
	floor.SetTextures(diffuse, specular)
	s.addLight(t, mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, 15, white, renderer.WrapBorder)

	require.NoError(t, s.frame().Run())

	c := s.colorAt(t, mgl32.Vec3{0, 0, 0})
	assert.Greater(t, c.X(), float32(0.5))
	assert.InDelta(t, 0, c.Y(), 1e-3)
	assert.InDelta(t, 0, c.Z(), 1e-3)
}

func solidImage(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}
