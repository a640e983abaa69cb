// Package input maps physical controls to logical actions and abstracts the
// window the render loop polls every frame.
package input

// Action represents a logical control, not a physical key.
type Action int

const (
	MoveForward Action = iota
	MoveBackward
	StrafeLeft
	StrafeRight
	MoveUp
	MoveDown
	ZoomIn
	ZoomOut
	TiltLeft
	TiltRight
	LightForward
	LightBackward
	LightLeft
	LightRight
	LightUp
	LightDown
	SelectLight1
	SelectLight2
	ToggleWireframe
	ShadingPhong
	ShadingGouraud
	ShadingFlat
	Quit
	ActionCount // sentinel for array sizing
)

var actionNames = [ActionCount]string{
	"move_forward", "move_backward", "strafe_left", "strafe_right", "move_up", "move_down",
	"zoom_in", "zoom_out", "tilt_left", "tilt_right",
	"light_forward", "light_backward", "light_left", "light_right", "light_up", "light_down",
	"select_light_1", "select_light_2", "toggle_wireframe",
	"shading_phong", "shading_gouraud", "shading_flat", "quit",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction returns the action with the given name.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Source is everything a per-frame controller reads from the window.
type Source interface {
	CursorPos() (x, y float64)
	SetCursorPos(x, y float64)
	WindowSize() (width, height int)
	Pressed(a Action) bool
	// Time is the elapsed wall-clock time in seconds.
	Time() float64
}

// EdgeSource additionally reports presses that happened since the last frame.
type EdgeSource interface {
	Source
	JustPressed(a Action) bool
}
