package engine

import (
	"fmt"

	"Winter3D/internal/config"
	"Winter3D/internal/input/glfwinput"
	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"
	"Winter3D/internal/renderer/opengl"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Options configure the window and the services handed to scenes.
type Options struct {
	Title         string
	Width, Height int
	Samples       int
	VSync         bool
	ClearColor    mgl32.Vec4

	// ShaderDir overrides the embedded shaders; HotReload watches it.
	ShaderDir string
	HotReload bool

	Bindings glfwinput.Bindings
}

// OptionsFromConfig builds Options from the window, shaders and keys sections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	bindings := glfwinput.DefaultBindings()
	if err := bindings.Override(cfg.Keys); err != nil {
		return Options{}, fmt.Errorf("keys: %w", err)
	}
	return Options{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Samples:    cfg.Window.Samples,
		VSync:      cfg.Window.VSync,
		ClearColor: cfg.ClearColor(),
		ShaderDir:  cfg.Shaders.Dir,
		HotReload:  cfg.Shaders.HotReload,
		Bindings:   bindings,
	}, nil
}

// Engine owns the window and the OpenGL device for the lifetime of Run.
// Run must be called from the main goroutine with the OS thread locked.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	if opts.Bindings == nil {
		opts.Bindings = glfwinput.DefaultBindings()
	}
	return &Engine{opts: opts}
}

// Run opens the window, runs scene until the window closes or quit is
// pressed, and tears everything down.
func (e *Engine) Run(scene Scene) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	if e.opts.Samples > 0 {
		glfw.WindowHint(glfw.Samples, e.opts.Samples)
	}

	window, err := glfw.CreateWindow(e.opts.Width, e.opts.Height, e.opts.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	if e.opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	device, err := opengl.NewDevice()
	if err != nil {
		return fmt.Errorf("init opengl: %w", err)
	}
	defer device.Release()
	device.SetClearColor(e.opts.ClearColor)

	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	w, h := window.GetSize()
	window.SetCursorPos(float64(w)/2, float64(h)/2)

	src := glfwinput.NewWindowSource(window, e.opts.Bindings)
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		src.HandleKeyEvent(key, action)
	})

	programs := renderer.NewProgramSet(device, e.opts.ShaderDir)
	defer programs.Release()
	textures := renderer.NewTextureManager(device)
	defer textures.Clear()

	l := &loop{
		surface: glfwSurface{window},
		ctx: &Context{
			Device:   device,
			Input:    src,
			Programs: programs,
			Textures: textures,
		},
		fps: NewFPSCounter(fpsInterval),
	}

	if e.opts.HotReload && e.opts.ShaderDir != "" {
		watcher, err := renderer.NewShaderWatcher(e.opts.ShaderDir)
		if err != nil {
			logger.Log.Warn("Shader hot reload disabled", zap.String("dir", e.opts.ShaderDir), zap.Error(err))
		} else {
			defer watcher.Close()
			l.reloads = watcher
		}
	}

	logger.Log.Info("Window opened",
		zap.String("title", e.opts.Title),
		zap.Int("width", w),
		zap.Int("height", h))
	return l.run(scene)
}

type glfwSurface struct {
	window *glfw.Window
}

func (s glfwSurface) ShouldClose() bool { return s.window.ShouldClose() }
func (s glfwSurface) SwapBuffers()      { s.window.SwapBuffers() }
func (s glfwSurface) PollEvents()       { glfw.PollEvents() }

func (s glfwSurface) FramebufferSize() (int, int) {
	return s.window.GetFramebufferSize()
}
