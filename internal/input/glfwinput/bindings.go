// Package glfwinput implements input.Source over a GLFW window.
package glfwinput

import (
	"fmt"
	"strings"

	"Winter3D/internal/input"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Bindings maps each action to the physical keys that trigger it.
// Several keys may share an action (both Ctrl keys move the camera down).
type Bindings map[input.Action][]glfw.Key

// DefaultBindings returns the lab key layout.
func DefaultBindings() Bindings {
	return Bindings{
		input.MoveForward:     {glfw.KeyW},
		input.MoveBackward:    {glfw.KeyS},
		input.StrafeLeft:      {glfw.KeyA},
		input.StrafeRight:     {glfw.KeyD},
		input.MoveUp:          {glfw.KeySpace},
		input.MoveDown:        {glfw.KeyLeftControl, glfw.KeyRightControl},
		input.ZoomIn:          {glfw.KeyUp},
		input.ZoomOut:         {glfw.KeyDown},
		input.TiltLeft:        {glfw.KeyQ},
		input.TiltRight:       {glfw.KeyE},
		input.LightForward:    {glfw.KeyI},
		input.LightBackward:   {glfw.KeyK},
		input.LightLeft:       {glfw.KeyJ},
		input.LightRight:      {glfw.KeyL},
		input.LightUp:         {glfw.KeyU},
		input.LightDown:       {glfw.KeyO},
		input.SelectLight1:    {glfw.Key1},
		input.SelectLight2:    {glfw.Key2},
		input.ToggleWireframe: {glfw.KeyT},
		input.ShadingPhong:    {glfw.KeyF1},
		input.ShadingGouraud:  {glfw.KeyF2},
		input.ShadingFlat:     {glfw.KeyF3},
		input.Quit:            {glfw.KeyEscape},
	}
}

// Bind replaces the keys bound to an action.
func (b Bindings) Bind(a input.Action, keys ...glfw.Key) {
	b[a] = keys
}

// Actions returns every action bound to key.
func (b Bindings) Actions(key glfw.Key) []input.Action {
	var out []input.Action
	for a, keys := range b {
		for _, k := range keys {
			if k == key {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

var keyNames = map[string]glfw.Key{
	"space": glfw.KeySpace, "escape": glfw.KeyEscape, "up": glfw.KeyUp, "down": glfw.KeyDown,
	"left": glfw.KeyLeft, "right": glfw.KeyRight, "left_control": glfw.KeyLeftControl,
	"right_control": glfw.KeyRightControl, "left_shift": glfw.KeyLeftShift,
	"right_shift": glfw.KeyRightShift, "tab": glfw.KeyTab, "enter": glfw.KeyEnter,
	"f1": glfw.KeyF1, "f2": glfw.KeyF2, "f3": glfw.KeyF3, "f4": glfw.KeyF4,
}

// ParseKey understands single letters and digits plus a few named keys.
func ParseKey(name string) (glfw.Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNames[name]; ok {
		return k, nil
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return glfw.KeyA + glfw.Key(c-'a'), nil
		case c >= '0' && c <= '9':
			return glfw.Key0 + glfw.Key(c-'0'), nil
		}
	}
	return glfw.KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// Override applies action-name → key-name overrides, typically from config.
func (b Bindings) Override(overrides map[string][]string) error {
	for actionName, keyNames := range overrides {
		a, ok := input.ParseAction(actionName)
		if !ok {
			return fmt.Errorf("unknown action %q", actionName)
		}
		keys := make([]glfw.Key, 0, len(keyNames))
		for _, n := range keyNames {
			k, err := ParseKey(n)
			if err != nil {
				return fmt.Errorf("binding %s: %w", actionName, err)
			}
			keys = append(keys, k)
		}
		b.Bind(a, keys...)
	}
	return nil
}
