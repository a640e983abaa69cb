package glfwinput

import (
	"Winter3D/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowSource polls key state from a GLFW window and records
// edge-triggered presses delivered through the key callback.
type WindowSource struct {
	window      *glfw.Window
	bindings    Bindings
	justPressed [input.ActionCount]bool
}

func NewWindowSource(window *glfw.Window, bindings Bindings) *WindowSource {
	return &WindowSource{window: window, bindings: bindings}
}

func (s *WindowSource) CursorPos() (float64, float64) {
	return s.window.GetCursorPos()
}

func (s *WindowSource) SetCursorPos(x, y float64) {
	s.window.SetCursorPos(x, y)
}

func (s *WindowSource) WindowSize() (int, int) {
	return s.window.GetSize()
}

func (s *WindowSource) Time() float64 {
	return glfw.GetTime()
}

func (s *WindowSource) Pressed(a input.Action) bool {
	for _, k := range s.bindings[a] {
		if s.window.GetKey(k) == glfw.Press {
			return true
		}
	}
	return false
}

// JustPressed reports and consumes a press seen since the last EndFrame.
func (s *WindowSource) JustPressed(a input.Action) bool {
	if a < 0 || a >= input.ActionCount {
		return false
	}
	v := s.justPressed[a]
	s.justPressed[a] = false
	return v
}

// HandleKeyEvent is meant to be called from the window's key callback.
func (s *WindowSource) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	for _, a := range s.bindings.Actions(key) {
		s.justPressed[a] = true
	}
}

// EndFrame drops presses nobody consumed this frame.
func (s *WindowSource) EndFrame() {
	s.justPressed = [input.ActionCount]bool{}
}

var _ input.EdgeSource = (*WindowSource)(nil)
