// camera.go
package renderer

import (
	"math"

	"Winter3D/internal/input"

	"github.com/go-gl/mathgl/mgl32"
)

// AngleMode selects how mouse offsets turn into angle changes.
type AngleMode int

const (
	// AngleTimeScaled multiplies the mouse offset by the frame time.
	AngleTimeScaled AngleMode = iota
	// AnglePerFrame applies the mouse offset once per frame regardless of frame time.
	AnglePerFrame
)

// ForwardAxis is the direction the camera faces at zero angles.
type ForwardAxis int

const (
	ForwardNegZ ForwardAxis = iota
	ForwardPosZ
)

var worldUp = mgl32.Vec3{0, 1, 0}

// tiltSnap is the magnitude below which a decaying tilt snaps to zero.
const tiltSnap = 0.002

type CameraConfig struct {
	Position        mgl32.Vec3
	HorizontalAngle float32 // radians
	VerticalAngle   float32 // radians
	FoV             float32 // degrees
	MinFoV, MaxFoV  float32
	Speed           float32 // units per second
	MouseSpeed      float32
	ZoomSpeed       float32 // degrees per second
	Near, Far       float32
	Aspect          float32
	AngleMode       AngleMode
	Forward         ForwardAxis

	Tilt      bool
	TiltSpeed float32
	MaxTilt   float32 // radians
}

// TimeScaledCameraConfig is the free-fly camera with Q/E tilt.
func TimeScaledCameraConfig() CameraConfig {
	return CameraConfig{
		Position:   mgl32.Vec3{0, 0, 5},
		FoV:        45,
		MinFoV:     1,
		MaxFoV:     45,
		Speed:      3,
		MouseSpeed: 0.1,
		ZoomSpeed:  10,
		Near:       0.1,
		Far:        100,
		Aspect:     4.0 / 3.0,
		AngleMode:  AngleTimeScaled,
		Forward:    ForwardNegZ,
		Tilt:       true,
		TiltSpeed:  4,
		MaxTilt:    3.14 / 6,
	}
}

// PerFrameCameraConfig is the walkthrough camera used by the shadow scene.
func PerFrameCameraConfig() CameraConfig {
	return CameraConfig{
		Position:        mgl32.Vec3{0, 0.2, 0},
		HorizontalAngle: 3.14,
		FoV:             45,
		MinFoV:          1,
		MaxFoV:          45,
		Speed:           1,
		MouseSpeed:      0.001,
		ZoomSpeed:       2,
		Near:            0.01,
		Far:             100,
		Aspect:          4.0 / 3.0,
		AngleMode:       AnglePerFrame,
		Forward:         ForwardPosZ,
	}
}

// Camera is a first-person controller bound to an input source.
type Camera struct {
	Position        mgl32.Vec3
	HorizontalAngle float32
	VerticalAngle   float32
	FoV             float32
	TiltAngle       float32

	// View basis of the last update. Right and Up include the tilt.
	Forward mgl32.Vec3
	Right   mgl32.Vec3
	Up      mgl32.Vec3

	config     CameraConfig
	src        input.Source
	lastTime   float64
	view       mgl32.Mat4
	projection mgl32.Mat4
}

// NewCamera starts the frame clock at the source's current time.
// A config with no zoom range gets the default [1,45].
func NewCamera(cfg CameraConfig, src input.Source) *Camera {
	if cfg.MinFoV == 0 && cfg.MaxFoV == 0 {
		cfg.MinFoV, cfg.MaxFoV = 1, 45
	}
	c := &Camera{
		Position:        cfg.Position,
		HorizontalAngle: cfg.HorizontalAngle,
		VerticalAngle:   cfg.VerticalAngle,
		FoV:             clampFoV(cfg.FoV, cfg),
		config:          cfg,
		src:             src,
		lastTime:        src.Time(),
	}
	c.updateCameraVectors()
	c.updateMatrices()
	return c
}

func (c *Camera) Config() CameraConfig {
	return c.config
}

// Update reads one frame of input, re-centres the cursor and rebuilds the
// view and projection matrices.
func (c *Camera) Update() {
	now := c.src.Time()
	deltaTime := float32(now - c.lastTime)
	c.lastTime = now

	x, y := c.src.CursorPos()
	width, height := c.src.WindowSize()
	centerX, centerY := float64(width/2), float64(height/2)
	c.src.SetCursorPos(centerX, centerY)

	c.turn(float32(x-centerX), float32(centerY-y), deltaTime)
	c.updateCameraVectors()

	// Movement uses the untilted basis.
	right, up := c.Right, c.Up
	velocity := c.config.Speed * deltaTime
	if c.src.Pressed(input.MoveForward) {
		c.Position = c.Position.Add(c.Forward.Mul(velocity))
	}
	if c.src.Pressed(input.MoveBackward) {
		c.Position = c.Position.Sub(c.Forward.Mul(velocity))
	}
	if c.src.Pressed(input.StrafeRight) {
		c.Position = c.Position.Add(right.Mul(velocity))
	}
	if c.src.Pressed(input.StrafeLeft) {
		c.Position = c.Position.Sub(right.Mul(velocity))
	}
	if c.src.Pressed(input.MoveUp) {
		c.Position = c.Position.Add(up.Mul(velocity))
	}
	if c.src.Pressed(input.MoveDown) {
		c.Position = c.Position.Sub(up.Mul(velocity))
	}

	if c.src.Pressed(input.ZoomIn) {
		c.FoV -= c.config.ZoomSpeed * deltaTime
	}
	if c.src.Pressed(input.ZoomOut) {
		c.FoV += c.config.ZoomSpeed * deltaTime
	}
	c.FoV = clampFoV(c.FoV, c.config)

	if c.config.Tilt {
		c.updateTilt(deltaTime)
		c.applyTilt()
	}

	c.updateMatrices()
}

// turn converts cursor offsets (right and up positive) into angle changes.
func (c *Camera) turn(dx, dy, deltaTime float32) {
	if c.config.Forward == ForwardPosZ {
		// Facing +z, turning right decreases the horizontal angle.
		dx = -dx
	}
	scale := c.config.MouseSpeed
	if c.config.AngleMode == AngleTimeScaled {
		scale *= deltaTime
	}
	c.HorizontalAngle += scale * dx
	c.VerticalAngle += scale * dy
}

func (c *Camera) updateTilt(deltaTime float32) {
	switch {
	case c.src.Pressed(input.TiltLeft):
		c.TiltAngle += deltaTime * c.config.TiltSpeed
	case c.src.Pressed(input.TiltRight):
		c.TiltAngle -= deltaTime * c.config.TiltSpeed
	default:
		c.TiltAngle -= deltaTime * c.config.TiltSpeed * c.TiltAngle
		if abs32(c.TiltAngle) < tiltSnap {
			c.TiltAngle = 0
		}
	}
	c.TiltAngle = mgl32.Clamp(c.TiltAngle, -c.config.MaxTilt, c.config.MaxTilt)
}

func (c *Camera) applyTilt() {
	if c.TiltAngle == 0 {
		return
	}
	rotation := mgl32.HomogRotate3D(c.TiltAngle, c.Forward)
	c.Right = rotation.Mul4x1(c.Right.Vec4(0)).Vec3().Normalize()
	c.Up = rotation.Mul4x1(c.Up.Vec4(0)).Vec3().Normalize()
}

func (c *Camera) updateCameraVectors() {
	h := float64(c.HorizontalAngle)
	v := float64(c.VerticalAngle)

	z := math.Cos(v) * math.Cos(h)
	if c.config.Forward == ForwardNegZ {
		z = -z
	}
	c.Forward = mgl32.Vec3{
		float32(math.Cos(v) * math.Sin(h)),
		float32(math.Sin(v)),
		float32(z),
	}.Normalize()

	right := c.Forward.Cross(worldUp)
	if right.Len() < 1e-6 {
		// Looking straight up or down: the horizontal angle still defines right.
		right = c.planarRight()
	}
	c.Right = right.Normalize()
	c.Up = c.Right.Cross(c.Forward).Normalize()
}

// planarRight is normalize(cross(forward, worldUp)) for a level forward vector.
func (c *Camera) planarRight() mgl32.Vec3 {
	h := float64(c.HorizontalAngle)
	if c.config.Forward == ForwardNegZ {
		return mgl32.Vec3{float32(math.Cos(h)), 0, float32(math.Sin(h))}
	}
	return mgl32.Vec3{float32(-math.Cos(h)), 0, float32(math.Sin(h))}
}

func (c *Camera) updateMatrices() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FoV), c.config.Aspect, c.config.Near, c.config.Far)
	c.view = mgl32.LookAtV(c.Position, c.Position.Add(c.Forward), c.Up)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return c.view
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// clampFoV keeps fov inside the zoom range. An inverted range is read as
// its swapped bounds.
func clampFoV(fov float32, cfg CameraConfig) float32 {
	lo, hi := cfg.MinFoV, cfg.MaxFoV
	if lo > hi {
		lo, hi = hi, lo
	}
	return mgl32.Clamp(fov, lo, hi)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
