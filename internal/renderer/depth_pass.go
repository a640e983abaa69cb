package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DepthPass renders shadow casters into a light's depth target.
type DepthPass struct {
	device  Device
	program Program

	vpLocation    int32
	modelLocation int32
}

func NewDepthPass(device Device, program Program) *DepthPass {
	p := &DepthPass{device: device}
	p.SetProgram(program)
	return p
}

// SetProgram swaps the depth program, for example after a shader reload.
func (p *DepthPass) SetProgram(program Program) {
	p.program = program
	p.vpLocation = program.Location("VP")
	p.modelLocation = program.Location("M")
}

func (p *DepthPass) Program() Program {
	return p.program
}

// Render clears target's depth and draws every shadow caster from the light's
// point of view. The window is bound again on return. A nil target draws
// nothing.
func (p *DepthPass) Render(view, projection mgl32.Mat4, target DepthTarget, objects []*Object) {
	if target == nil {
		return
	}
	width, height := target.Size()

	p.device.BindRenderTarget(target)
	p.device.Viewport(0, 0, width, height)
	p.device.Clear(ClearDepth)

	p.device.UseProgram(p.program)
	p.program.SetMat4(p.vpLocation, projection.Mul4(view))

	for _, object := range objects {
		if object == nil || object.Mesh == nil || !object.CastsShadow {
			continue
		}
		p.program.SetMat4(p.modelLocation, object.ModelMatrix())
		p.device.Draw(object.Mesh)
	}

	p.device.BindRenderTarget(nil)
}

// RenderLight is Render with the light's own matrices.
func (p *DepthPass) RenderLight(light *Light, target DepthTarget, objects []*Object) {
	if light == nil {
		return
	}
	p.Render(light.ViewMatrix(), light.ProjectionMatrix(), target, objects)
}
