package renderer

import (
	"math"
	"testing"

	"Winter3D/internal/input"
	"Winter3D/internal/input/inputtest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/xlab/linmath"
)

const epsilon = 1e-4

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], epsilon, "component %d of %v", i, got)
	}
}

func assertOrthonormal(t *testing.T, c *Camera) {
	t.Helper()
	assert.InDelta(t, 1, c.Forward.Len(), epsilon)
	assert.InDelta(t, 1, c.Right.Len(), epsilon)
	assert.InDelta(t, 1, c.Up.Len(), epsilon)
	assert.InDelta(t, 0, c.Forward.Dot(c.Right), epsilon)
	assert.InDelta(t, 0, c.Forward.Dot(c.Up), epsilon)
	assert.InDelta(t, 0, c.Right.Dot(c.Up), epsilon)
}

func newTestCamera(cfg CameraConfig) (*Camera, *inputtest.Source) {
	src := inputtest.New(800, 600)
	return NewCamera(cfg, src), src
}

func TestCameraForwardAtZeroAngles(t *testing.T) {
	tests := []struct {
		name    string
		forward ForwardAxis
		want    mgl32.Vec3
	}{
		{"negative z", ForwardNegZ, mgl32.Vec3{0, 0, -1}},
		{"positive z", ForwardPosZ, mgl32.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := TimeScaledCameraConfig()
			cfg.Forward = tt.forward
			cam, _ := newTestCamera(cfg)
			cam.Update()

			assertVec3(t, tt.want, cam.Forward)
			assertVec3(t, mgl32.Vec3{0, 1, 0}, cam.Up)
		})
	}
}

func TestCameraOneSecondForward(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.Hold(input.MoveForward)
	src.Advance(1)
	cam.Update()

	assertVec3(t, mgl32.Vec3{0, 0, 2}, cam.Position)
}

func TestCameraFirstUpdateMeasuresFromConstruction(t *testing.T) {
	src := inputtest.New(800, 600)
	src.Now = 10
	cam := NewCamera(TimeScaledCameraConfig(), src)

	src.Advance(0.5)
	src.Hold(input.MoveBackward)
	cam.Update()

	assertVec3(t, mgl32.Vec3{0, 0, 6.5}, cam.Position)
}

func TestCameraZeroInputKeepsState(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	before := *cam

	src.Advance(0.25)
	cam.Update()

	assert.Equal(t, before.Position, cam.Position)
	assert.Equal(t, before.HorizontalAngle, cam.HorizontalAngle)
	assert.Equal(t, before.VerticalAngle, cam.VerticalAngle)
	assert.Equal(t, before.FoV, cam.FoV)
	assert.Equal(t, float32(0), cam.TiltAngle)
}

func TestCameraMovementIsAdditive(t *testing.T) {
	// Speed 3, dt 0.5: every axis moves 1.5 units.
	tests := []struct {
		name    string
		actions []input.Action
		want    mgl32.Vec3
	}{
		{"forward", []input.Action{input.MoveForward}, mgl32.Vec3{0, 0, 3.5}},
		{"back", []input.Action{input.MoveBackward}, mgl32.Vec3{0, 0, 6.5}},
		{"right", []input.Action{input.StrafeRight}, mgl32.Vec3{1.5, 0, 5}},
		{"left", []input.Action{input.StrafeLeft}, mgl32.Vec3{-1.5, 0, 5}},
		{"up", []input.Action{input.MoveUp}, mgl32.Vec3{0, 1.5, 5}},
		{"down", []input.Action{input.MoveDown}, mgl32.Vec3{0, -1.5, 5}},
		{"forward right", []input.Action{input.MoveForward, input.StrafeRight}, mgl32.Vec3{1.5, 0, 3.5}},
		{"forward left up", []input.Action{input.MoveForward, input.StrafeLeft, input.MoveUp}, mgl32.Vec3{-1.5, 1.5, 3.5}},
		{"opposites cancel", []input.Action{input.MoveForward, input.MoveBackward}, mgl32.Vec3{0, 0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, src := newTestCamera(TimeScaledCameraConfig())
			src.Hold(tt.actions...)
			src.Advance(0.5)
			cam.Update()

			assertVec3(t, tt.want, cam.Position)
		})
	}
}

func TestCameraTimeScaledAngles(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.MoveCursor(100, -50)
	src.Advance(0.5)
	cam.Update()

	// mouse 0.1 * dt 0.5 * offset
	assert.InDelta(t, 5, cam.HorizontalAngle, epsilon)
	assert.InDelta(t, 2.5, cam.VerticalAngle, epsilon)
}

func TestCameraPerFrameAnglesIgnoreFrameTime(t *testing.T) {
	for _, dt := range []float64{0.001, 0.5} {
		cam, src := newTestCamera(PerFrameCameraConfig())
		src.MoveCursor(100, -50)
		src.Advance(dt)
		cam.Update()

		// Facing +z, moving right decreases the horizontal angle.
		assert.InDelta(t, 3.14-0.1, cam.HorizontalAngle, epsilon)
		assert.InDelta(t, 0.05, cam.VerticalAngle, epsilon)
	}
}

func TestCameraMouseRightTurnsRight(t *testing.T) {
	for _, cfg := range []CameraConfig{TimeScaledCameraConfig(), PerFrameCameraConfig()} {
		cam, src := newTestCamera(cfg)
		right := cam.Right
		src.MoveCursor(40, 0)
		src.Advance(0.1)
		cam.Update()

		// The new forward leans towards the old right vector.
		assert.Greater(t, cam.Forward.Dot(right), float32(0))
	}
}

func TestCameraRecentresCursor(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.X, src.Y = 10, 20
	cam.Update()

	assert.Equal(t, 1, src.CursorSets)
	assert.Equal(t, 400.0, src.X)
	assert.Equal(t, 300.0, src.Y)
}

func TestCameraFoVClamp(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())

	src.Hold(input.ZoomIn)
	for i := 0; i < 100; i++ {
		src.Advance(1)
		cam.Update()
		assert.GreaterOrEqual(t, cam.FoV, float32(1))
	}
	assert.Equal(t, float32(1), cam.FoV)

	src.Release()
	src.Hold(input.ZoomOut)
	for i := 0; i < 100; i++ {
		src.Advance(1)
		cam.Update()
		assert.LessOrEqual(t, cam.FoV, float32(45))
	}
	assert.Equal(t, float32(45), cam.FoV)
}

func TestCameraFoVClampFixedRange(t *testing.T) {
	cfg := TimeScaledCameraConfig()
	cfg.FoV, cfg.MinFoV, cfg.MaxFoV = 30, 30, 30
	cam, src := newTestCamera(cfg)

	src.Hold(input.ZoomOut)
	for i := 0; i < 10; i++ {
		src.Advance(1)
		cam.Update()
	}
	assert.Equal(t, float32(30), cam.FoV)

	src.Release()
	src.Hold(input.ZoomIn)
	for i := 0; i < 10; i++ {
		src.Advance(1)
		cam.Update()
	}
	assert.Equal(t, float32(30), cam.FoV)
}

func TestCameraZeroFoVRangeUsesDefault(t *testing.T) {
	cfg := TimeScaledCameraConfig()
	cfg.FoV, cfg.MinFoV, cfg.MaxFoV = 90, 0, 0
	cam, src := newTestCamera(cfg)
	assert.Equal(t, float32(45), cam.FoV)
	assert.Equal(t, float32(1), cam.Config().MinFoV)

	src.Hold(input.ZoomIn)
	for i := 0; i < 100; i++ {
		src.Advance(1)
		cam.Update()
	}
	assert.Equal(t, float32(1), cam.FoV)
}

func TestCameraZoomStep(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.Hold(input.ZoomIn)
	src.Advance(0.5)
	cam.Update()

	assert.InDelta(t, 40, cam.FoV, epsilon)
}

func TestCameraBasisStaysOrthonormal(t *testing.T) {
	offsets := [][2]float64{{120, -80}, {-300, 250}, {15, 15}, {0, -400}, {700, 0}, {-50, 90}}
	for _, cfg := range []CameraConfig{TimeScaledCameraConfig(), PerFrameCameraConfig()} {
		cam, src := newTestCamera(cfg)
		src.Hold(input.TiltLeft)
		for _, o := range offsets {
			src.MoveCursor(o[0], o[1])
			src.Advance(0.05)
			cam.Update()
			assertOrthonormal(t, cam)
		}
	}
}

func TestCameraBasisAtVerticalAngles(t *testing.T) {
	for _, v := range []float32{math.Pi / 2, -math.Pi / 2} {
		for _, cfg := range []CameraConfig{TimeScaledCameraConfig(), PerFrameCameraConfig()} {
			cfg.VerticalAngle = v
			cam, src := newTestCamera(cfg)
			src.Advance(0.1)
			cam.Update()

			assertOrthonormal(t, cam)
			assert.False(t, math.IsNaN(float64(cam.GetViewMatrix()[0])))
		}
	}
}

func TestCameraTilt(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())

	src.Hold(input.TiltLeft)
	src.Advance(0.1)
	cam.Update()
	assert.InDelta(t, 0.4, cam.TiltAngle, epsilon)
	assertOrthonormal(t, cam)
	assert.NotEqual(t, float32(0), cam.Up.X(), "tilt rolls the up vector")

	for i := 0; i < 10; i++ {
		src.Advance(0.1)
		cam.Update()
	}
	assert.InDelta(t, 3.14/6, cam.TiltAngle, epsilon)

	src.Release()
	previous := cam.TiltAngle
	for i := 0; i < 200 && cam.TiltAngle != 0; i++ {
		src.Advance(0.05)
		cam.Update()
		assert.LessOrEqual(t, cam.TiltAngle, previous)
		previous = cam.TiltAngle
	}
	assert.Equal(t, float32(0), cam.TiltAngle)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, cam.Up)
}

func TestCameraTiltRight(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.Hold(input.TiltRight)
	src.Advance(0.1)
	cam.Update()

	assert.InDelta(t, -0.4, cam.TiltAngle, epsilon)
}

func TestCameraTiltDisabled(t *testing.T) {
	cam, src := newTestCamera(PerFrameCameraConfig())
	src.Hold(input.TiltLeft)
	src.Advance(1)
	cam.Update()

	assert.Equal(t, float32(0), cam.TiltAngle)
}

func TestCameraMovementIgnoresTilt(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.Hold(input.TiltLeft)
	src.Advance(0.5)
	cam.Update()
	start := cam.Position

	src.Hold(input.StrafeRight)
	src.Advance(0.5)
	cam.Update()

	moved := cam.Position.Sub(start)
	assert.InDelta(t, 1.5, moved.X(), epsilon)
	assert.InDelta(t, 0, moved.Y(), epsilon)
}

func TestCameraMatricesMatchLinmath(t *testing.T) {
	cam, src := newTestCamera(TimeScaledCameraConfig())
	src.MoveCursor(37, -12)
	src.Hold(input.MoveForward, input.StrafeLeft)
	src.Advance(0.3)
	cam.Update()

	eye := linmath.Vec3{cam.Position[0], cam.Position[1], cam.Position[2]}
	target := cam.Position.Add(cam.Forward)
	center := linmath.Vec3{target[0], target[1], target[2]}
	up := linmath.Vec3{cam.Up[0], cam.Up[1], cam.Up[2]}

	var view linmath.Mat4x4
	view.LookAt(&eye, &center, &up)
	var projection linmath.Mat4x4
	cfg := cam.Config()
	projection.Perspective(mgl32.DegToRad(cam.FoV), cfg.Aspect, cfg.Near, cfg.Far)

	assert.True(t, FromLinmath(&view).ApproxEqualThreshold(cam.GetViewMatrix(), epsilon))
	assert.True(t, FromLinmath(&projection).ApproxEqualThreshold(cam.GetProjectionMatrix(), epsilon))

	vp := cam.ViewProjectionLinmath()
	assert.True(t, FromLinmath(&vp).ApproxEqualThreshold(cam.GetViewProjection(), epsilon))
}

func TestToLinmathRoundTrip(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.3))
	lm := ToLinmath(m)

	assert.Equal(t, m.Col(3).X(), lm[3][0])
	assert.Equal(t, m, FromLinmath(&lm))
}
