package engine

import (
	"fmt"

	"Winter3D/internal/input"
	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"go.uber.org/zap"
)

// fpsInterval is how often the loop logs its frame rate, in seconds.
const fpsInterval = 5.0

// surface is the part of a window the loop drives.
type surface interface {
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
	FramebufferSize() (width, height int)
}

// reloadQueue yields program names whose sources changed.
type reloadQueue interface {
	Pending() []string
}

// endFramer is implemented by inputs that buffer key presses per frame.
type endFramer interface {
	EndFrame()
}

type loop struct {
	surface surface
	ctx     *Context
	reloads reloadQueue
	fps     *FPSCounter
}

// run calls Setup, then Frame until the surface closes, the scene calls
// Quit or the quit action is held, then Release.
func (l *loop) run(scene Scene) error {
	ctx := l.ctx
	l.resize()
	if err := scene.Setup(ctx); err != nil {
		scene.Release()
		return fmt.Errorf("scene setup: %w", err)
	}
	defer scene.Release()

	start := ctx.Input.Time()
	last := start
	for !l.surface.ShouldClose() && !ctx.quit {
		now := ctx.Input.Time()
		ctx.DeltaTime = float32(now - last)
		ctx.Time = now - start
		last = now

		l.resize()
		l.drainReloads()
		if ctx.Input.JustPressed(input.ToggleWireframe) {
			ctx.Device.SetWireframe(!ctx.Device.Wireframe())
			logger.Log.Debug("Wireframe toggled", zap.Bool("on", ctx.Device.Wireframe()))
		}

		scene.Frame(ctx)

		l.surface.SwapBuffers()
		if ef, ok := ctx.Input.(endFramer); ok {
			ef.EndFrame()
		}
		l.surface.PollEvents()
		ctx.FrameNum++

		if fps, ok := l.fps.Tick(now); ok {
			logger.Log.Debug("Frame rate", zap.Float64("fps", fps), zap.Uint64("frame", ctx.FrameNum))
		}
		if ctx.Input.Pressed(input.Quit) {
			ctx.Quit()
		}
	}
	return nil
}

func (l *loop) resize() {
	w, h := l.surface.FramebufferSize()
	l.ctx.Width, l.ctx.Height = int32(w), int32(h)
}

func (l *loop) drainReloads() {
	if l.reloads == nil || l.ctx.Programs == nil {
		return
	}
	for _, name := range l.reloads.Pending() {
		// Failures keep the previous program and are logged by Reload.
		_ = l.ctx.Programs.Reload(name)
	}
}

// FPSCounter averages the frame rate over fixed intervals.
type FPSCounter struct {
	interval float64
	start    float64
	frames   int
	started  bool
}

func NewFPSCounter(interval float64) *FPSCounter {
	return &FPSCounter{interval: interval}
}

// Tick records a frame at time now and returns the average rate once per interval.
func (f *FPSCounter) Tick(now float64) (float64, bool) {
	if !f.started {
		f.start, f.started = now, true
		return 0, false
	}
	f.frames++
	elapsed := now - f.start
	if elapsed < f.interval {
		return 0, false
	}
	fps := float64(f.frames) / elapsed
	f.start, f.frames = now, 0
	return fps, true
}

var _ reloadQueue = (*renderer.ShaderWatcher)(nil)
