package renderer

import (
	"Winter3D/internal/input"
	"Winter3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type ProjectionKind int

const (
	Orthographic ProjectionKind = iota
	Perspective
)

// verticalThreshold is |dot(direction, worldUp)| above which the light's
// view uses +z as its up vector.
const verticalThreshold = 0.99

type LightConfig struct {
	La, Ld, Ls mgl32.Vec4
	Position   mgl32.Vec3
	Target     mgl32.Vec3

	Projection ProjectionKind
	HalfExtent float32 // orthographic half width/height
	FoV        float32 // perspective, degrees
	Near, Far  float32

	// Speed is the key-driven movement rate in units per second.
	Speed float32

	// Indicator is the material of the marker sphere drawn at the light.
	Indicator Material
}

func DefaultLightConfig() LightConfig {
	white := mgl32.Vec4{1, 1, 1, 1}
	return LightConfig{
		La:         white,
		Ld:         white,
		Ls:         white,
		Position:   mgl32.Vec3{0, 15, 0},
		Projection: Orthographic,
		HalfExtent: 20,
		FoV:        90,
		Near:       1,
		Far:        30,
		Speed:      5,
		Indicator:  Gold,
	}
}

// Light is a shadow-casting light with a look-at view.
type Light struct {
	La, Ld, Ls mgl32.Vec4
	Position   mgl32.Vec3
	Target     mgl32.Vec3

	config     LightConfig
	view       mgl32.Mat4
	projection mgl32.Mat4
}

func NewLight(cfg LightConfig) *Light {
	l := &Light{
		La:       cfg.La,
		Ld:       cfg.Ld,
		Ls:       cfg.Ls,
		Position: cfg.Position,
		Target:   cfg.Target,
		config:   cfg,
	}
	l.Recompute()
	return l
}

func (l *Light) Config() LightConfig {
	return l.config
}

func (l *Light) Indicator() Material {
	return l.config.Indicator
}

// Update moves the light with its keys and rebuilds its matrices.
func (l *Light) Update(src input.Source, deltaTime float32) {
	step := l.config.Speed * deltaTime
	moves := []struct {
		action input.Action
		dir    mgl32.Vec3
	}{
		{input.LightForward, mgl32.Vec3{0, 0, -1}},
		{input.LightBackward, mgl32.Vec3{0, 0, 1}},
		{input.LightLeft, mgl32.Vec3{-1, 0, 0}},
		{input.LightRight, mgl32.Vec3{1, 0, 0}},
		{input.LightUp, mgl32.Vec3{0, 1, 0}},
		{input.LightDown, mgl32.Vec3{0, -1, 0}},
	}
	for _, m := range moves {
		if src.Pressed(m.action) {
			l.Position = l.Position.Add(m.dir.Mul(step))
		}
	}
	l.Recompute()
}

// Recompute rebuilds view and projection from the current fields.
func (l *Light) Recompute() {
	dir := l.Direction()
	up := worldUp
	if abs32(dir.Dot(worldUp)) > verticalThreshold {
		up = mgl32.Vec3{0, 0, 1}
	}
	l.view = mgl32.LookAtV(l.Position, l.Position.Add(dir), up)

	switch l.config.Projection {
	case Perspective:
		l.projection = mgl32.Perspective(mgl32.DegToRad(l.config.FoV), 1, l.config.Near, l.config.Far)
	default:
		e := l.config.HalfExtent
		l.projection = mgl32.Ortho(-e, e, -e, e, l.config.Near, l.config.Far)
	}
}

// Direction is the unit vector from the light towards its target. A light
// sitting on its target points straight down.
func (l *Light) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func (l *Light) ViewMatrix() mgl32.Mat4 {
	return l.view
}

func (l *Light) ProjectionMatrix() mgl32.Mat4 {
	return l.projection
}

// VP maps world space into the light's clip space.
func (l *Light) VP() mgl32.Mat4 {
	return l.projection.Mul4(l.view)
}

// LightSelector routes light movement to one light at a time.
type LightSelector struct {
	lights   []*Light
	current  int
	previous int
}

func NewLightSelector(lights ...*Light) *LightSelector {
	return &LightSelector{lights: lights, previous: -1}
}

// Selected returns the index of the light receiving updates.
func (s *LightSelector) Selected() int {
	return s.current
}

// Update applies the selection keys, logs a change once and updates the selected light.
func (s *LightSelector) Update(src input.Source, deltaTime float32) {
	if len(s.lights) == 0 {
		return
	}
	switch {
	case src.Pressed(input.SelectLight1):
		s.current = 0
	case src.Pressed(input.SelectLight2) && len(s.lights) > 1:
		s.current = 1
	}
	if s.current != s.previous {
		logger.Log.Info("Light selected", zap.Int("light", s.current+1))
		s.previous = s.current
	}
	s.lights[s.current].Update(src, deltaTime)
}
