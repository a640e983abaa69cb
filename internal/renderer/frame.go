package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrDepthPassPending is returned when the lighting pass runs before every
	// light's depth target was rendered in the current frame.
	ErrDepthPassPending = errors.New("renderer: depth pass pending")
	// ErrFrameOrder is returned when a stage runs out of order.
	ErrFrameOrder = errors.New("renderer: frame stage out of order")
	// ErrFrameIncomplete is returned when a stage lacks the camera, pass or
	// light it needs.
	ErrFrameIncomplete = errors.New("renderer: frame incomplete")
)

// Stage is the position of a Frame in its per-frame sequence.
type Stage int

const (
	StageIdle Stage = iota
	StageCameraUpdate
	StageDepthPass
	StageLightingPass
	StagePresent
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCameraUpdate:
		return "camera_update"
	case StageDepthPass:
		return "depth_pass"
	case StageLightingPass:
		return "lighting_pass"
	case StagePresent:
		return "present"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Frame sequences one rendered frame: camera update, one depth pass per
// light, the lighting pass and presentation.
type Frame struct {
	Camera   *Camera
	Lights   []ShadowLight
	Objects  []*Object
	Depth    *DepthPass
	Lighting *LightingPass

	// Present is called at the end of the frame, typically to swap buffers.
	Present func()

	stage    Stage
	rendered []bool
}

func (f *Frame) Stage() Stage {
	return f.stage
}

// Begin starts a new frame and updates the camera.
func (f *Frame) Begin() {
	f.stage = StageCameraUpdate
	if cap(f.rendered) >= len(f.Lights) {
		f.rendered = f.rendered[:len(f.Lights)]
		for i := range f.rendered {
			f.rendered[i] = false
		}
	} else {
		f.rendered = make([]bool, len(f.Lights))
	}
	if f.Camera != nil {
		f.Camera.Update()
	}
}

// RenderDepth runs the depth pass of light i.
func (f *Frame) RenderDepth(i int) error {
	if f.stage != StageCameraUpdate && f.stage != StageDepthPass {
		return fmt.Errorf("%w: depth pass during %s", ErrFrameOrder, f.stage)
	}
	if i < 0 || i >= len(f.Lights) {
		return fmt.Errorf("%w: no light %d", ErrFrameOrder, i)
	}
	if f.Depth == nil {
		return fmt.Errorf("%w: no depth pass", ErrFrameIncomplete)
	}
	light := f.Lights[i]
	if light.Light == nil || light.Target == nil {
		return fmt.Errorf("%w: light %d has no light or shadow target", ErrFrameIncomplete, i+1)
	}
	f.Depth.RenderLight(light.Light, light.Target, f.Objects)
	f.rendered[i] = true
	f.stage = StageDepthPass
	return nil
}

// RenderLighting shades the scene once every depth target is current.
func (f *Frame) RenderLighting() error {
	if f.stage != StageCameraUpdate && f.stage != StageDepthPass {
		return fmt.Errorf("%w: lighting pass during %s", ErrFrameOrder, f.stage)
	}
	for i, done := range f.rendered {
		if !done {
			return fmt.Errorf("%w: light %d", ErrDepthPassPending, i+1)
		}
	}
	if f.Camera == nil || f.Lighting == nil {
		return fmt.Errorf("%w: lighting pass needs a camera and a lighting pass", ErrFrameIncomplete)
	}
	view, projection := f.Camera.GetViewMatrix(), f.Camera.GetProjectionMatrix()
	f.Lighting.Render(view, projection, f.Lights, f.Objects)
	f.stage = StageLightingPass
	return nil
}

// Finish presents the frame and returns to idle.
func (f *Frame) Finish() error {
	if f.stage != StageLightingPass {
		return fmt.Errorf("%w: present during %s", ErrFrameOrder, f.stage)
	}
	f.stage = StagePresent
	if f.Present != nil {
		f.Present()
	}
	f.stage = StageIdle
	return nil
}

// Run executes every stage of one frame in order.
func (f *Frame) Run() error {
	f.Begin()
	for i := range f.Lights {
		if err := f.RenderDepth(i); err != nil {
			return err
		}
	}
	if err := f.RenderLighting(); err != nil {
		return err
	}
	return f.Finish()
}
