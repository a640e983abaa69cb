package renderer

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Material holds Phong reflectance coefficients.
type Material struct {
	Name string
	Ka   mgl32.Vec4
	Kd   mgl32.Vec4
	Ks   mgl32.Vec4
	Ns   float32
}

var (
	PolishedSilver = Material{
		Name: "polished_silver",
		Ka:   mgl32.Vec4{0.23125, 0.23125, 0.23125, 1},
		Kd:   mgl32.Vec4{0.2775, 0.2775, 0.2775, 1},
		Ks:   mgl32.Vec4{0.773911, 0.773911, 0.773911, 1},
		Ns:   89.6,
	}
	Gold = Material{
		Name: "gold",
		Ka:   mgl32.Vec4{0.24725, 0.1995, 0.0745, 1},
		Kd:   mgl32.Vec4{0.75164, 0.60648, 0.22648, 1},
		Ks:   mgl32.Vec4{0.628281, 0.555802, 0.366065, 1},
		Ns:   51.2,
	}
	Ruby = Material{
		Name: "ruby",
		Ka:   mgl32.Vec4{0.1745, 0.01175, 0.01175, 0.55},
		Kd:   mgl32.Vec4{0.61424, 0.04136, 0.04136, 0.55},
		Ks:   mgl32.Vec4{0.727811, 0.626959, 0.626959, 0.55},
		Ns:   76.8,
	}
	Chrome = Material{
		Name: "chrome",
		Ka:   mgl32.Vec4{0.25, 0.25, 0.25, 1},
		Kd:   mgl32.Vec4{0.4, 0.4, 0.4, 1},
		Ks:   mgl32.Vec4{0.774597, 0.774597, 0.774597, 1},
		Ns:   76.8,
	}
	Emerald = Material{
		Name: "emerald",
		Ka:   mgl32.Vec4{0.0215, 0.1745, 0.0215, 0.55},
		Kd:   mgl32.Vec4{0.07568, 0.61424, 0.07568, 0.55},
		Ks:   mgl32.Vec4{0.633, 0.727811, 0.633, 0.55},
		Ns:   76.8,
	}
	Pearl = Material{
		Name: "pearl",
		Ka:   mgl32.Vec4{0.25, 0.20725, 0.20725, 0.922},
		Kd:   mgl32.Vec4{1.0, 0.829, 0.829, 0.922},
		Ks:   mgl32.Vec4{0.296648, 0.296648, 0.296648, 0.922},
		Ns:   11.264,
	}
	Turquoise = Material{
		Name: "turquoise",
		Ka:   mgl32.Vec4{0.1, 0.18725, 0.1745, 0.8},
		Kd:   mgl32.Vec4{0.396, 0.74151, 0.69102, 0.8},
		Ks:   mgl32.Vec4{0.297254, 0.30829, 0.306678, 0.8},
		Ns:   12.8,
	}
	WhitePlaster = Material{
		Name: "white_plaster",
		Ka:   mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Kd:   mgl32.Vec4{0.8, 0.8, 0.8, 1},
		Ks:   mgl32.Vec4{0.05, 0.05, 0.05, 1},
		Ns:   4,
	}
)

var materials = []Material{PolishedSilver, Gold, Ruby, Chrome, Emerald, Pearl, Turquoise, WhitePlaster}

// MaterialByName looks up a preset, ignoring case.
func MaterialByName(name string) (Material, bool) {
	name = strings.ToLower(name)
	for _, m := range materials {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}
