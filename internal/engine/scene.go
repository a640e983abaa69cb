package engine

import (
	"Winter3D/internal/input"
	"Winter3D/internal/renderer"
)

// Context is what a scene sees of the engine. The engine refreshes the
// frame fields before every Frame call.
type Context struct {
	Device   renderer.Device
	Input    input.EdgeSource
	Programs *renderer.ProgramSet
	Textures *renderer.TextureManager

	// Framebuffer size in pixels.
	Width, Height int32
	// Time is seconds since start; DeltaTime is the previous frame's duration.
	Time      float64
	DeltaTime float32
	FrameNum  uint64

	quit bool
}

// Aspect is the framebuffer width over height.
func (c *Context) Aspect() float32 {
	if c.Height == 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}

// Quit ends the loop after the current frame is presented.
func (c *Context) Quit() {
	c.quit = true
}

// Scene is one lab: it builds its resources once, draws every frame and
// releases what it created.
type Scene interface {
	Setup(ctx *Context) error
	Frame(ctx *Context)
	Release()
}

// SceneFuncs adapts plain callbacks to Scene. Nil callbacks are skipped.
type SceneFuncs struct {
	SetupFunc   func(ctx *Context) error
	FrameFunc   func(ctx *Context)
	ReleaseFunc func()
}

func (s SceneFuncs) Setup(ctx *Context) error {
	if s.SetupFunc == nil {
		return nil
	}
	return s.SetupFunc(ctx)
}

func (s SceneFuncs) Frame(ctx *Context) {
	if s.FrameFunc != nil {
		s.FrameFunc(ctx)
	}
}

func (s SceneFuncs) Release() {
	if s.ReleaseFunc != nil {
		s.ReleaseFunc()
	}
}
