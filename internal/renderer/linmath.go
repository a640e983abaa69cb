package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/linmath"
)

// Both libraries store matrices column-major: linmath m[c][r] is mgl32 m[c*4+r].

func ToLinmath(m mgl32.Mat4) linmath.Mat4x4 {
	var out linmath.Mat4x4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c][r] = m[c*4+r]
		}
	}
	return out
}

func FromLinmath(m *linmath.Mat4x4) mgl32.Mat4 {
	var out mgl32.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[c][r]
		}
	}
	return out
}

// ViewProjectionLinmath returns the camera's combined matrix in linmath layout.
func (c *Camera) ViewProjectionLinmath() linmath.Mat4x4 {
	return ToLinmath(c.GetViewProjection())
}
