package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxShadowLights is the number of lights the shadow_mapping program shades.
const MaxShadowLights = 2

// Texture units used by the lighting program. Shadow maps sit far above the
// material textures so the two never collide.
const (
	DiffuseTextureUnit   int32 = 0
	SpecularTextureUnit  int32 = 1
	ShadowMapUnitBase    int32 = 22
	DefaultShadowBias          = 0.005
	indicatorScale             = 0.1
)

// ShadowLight pairs a light with the depth target its depth pass fills.
type ShadowLight struct {
	*Light
	Target DepthTarget
}

type lightLocations struct {
	la, ld, ls, position int32
	vp, sampler          int32
}

// LightingPass shades the scene into the window using the lights' depth targets.
type LightingPass struct {
	device  Device
	program Program

	// Indicator, when set, is drawn unshaded at every light position.
	Indicator  Mesh
	ClearColor mgl32.Vec4
	ShadowBias float32

	width, height int32

	viewLocation       int32
	projectionLocation int32
	modelLocation      int32
	kaLocation         int32
	kdLocation         int32
	ksLocation         int32
	nsLocation         int32
	useTextureLocation int32
	diffuseLocation    int32
	specularLocation   int32
	unshadedLocation   int32
	biasLocation       int32
	lights             [MaxShadowLights]lightLocations
}

func NewLightingPass(device Device, program Program, width, height int32) *LightingPass {
	p := &LightingPass{
		device:     device,
		ShadowBias: DefaultShadowBias,
		width:      width,
		height:     height,
	}
	p.SetProgram(program)
	return p
}

// SetProgram swaps the lighting program and refreshes its uniform locations.
func (p *LightingPass) SetProgram(program Program) {
	p.program = program
	p.viewLocation = program.Location("V")
	p.projectionLocation = program.Location("P")
	p.modelLocation = program.Location("M")
	p.kaLocation = program.Location("mtl.Ka")
	p.kdLocation = program.Location("mtl.Kd")
	p.ksLocation = program.Location("mtl.Ks")
	p.nsLocation = program.Location("mtl.Ns")
	p.useTextureLocation = program.Location("useTexture")
	p.diffuseLocation = program.Location("diffuseColorSampler")
	p.specularLocation = program.Location("specularColorSampler")
	p.unshadedLocation = program.Location("ChampionOfLight")
	p.biasLocation = program.Location("shadowBias")
	for i := range p.lights {
		prefix := fmt.Sprintf("light%d", i+1)
		p.lights[i] = lightLocations{
			la:       program.Location(prefix + ".La"),
			ld:       program.Location(prefix + ".Ld"),
			ls:       program.Location(prefix + ".Ls"),
			position: program.Location(prefix + ".lightPosition_worldspace"),
			vp:       program.Location(prefix + "VP"),
			sampler:  program.Location(fmt.Sprintf("shadowMapSampler%d", i+1)),
		}
	}
}

func (p *LightingPass) Program() Program {
	return p.program
}

// SetViewport records the window size used on the next Render.
func (p *LightingPass) SetViewport(width, height int32) {
	p.width, p.height = width, height
}

// Render draws objects into the window with up to MaxShadowLights lights.
// Lights beyond that are ignored; missing lights contribute nothing.
func (p *LightingPass) Render(view, projection mgl32.Mat4, lights []ShadowLight, objects []*Object) {
	p.device.BindRenderTarget(nil)
	p.device.Viewport(0, 0, p.width, p.height)
	p.device.SetClearColor(p.ClearColor)
	p.device.Clear(ClearColor | ClearDepth)

	p.device.UseProgram(p.program)
	p.program.SetMat4(p.viewLocation, view)
	p.program.SetMat4(p.projectionLocation, projection)
	p.program.SetFloat(p.biasLocation, p.ShadowBias)
	p.program.SetInt(p.unshadedLocation, 0)
	p.program.SetInt(p.diffuseLocation, DiffuseTextureUnit)
	p.program.SetInt(p.specularLocation, SpecularTextureUnit)

	for i, locations := range p.lights {
		unit := ShadowMapUnitBase + int32(i) + 1
		p.program.SetInt(locations.sampler, unit)
		if i >= len(lights) || lights[i].Light == nil {
			p.program.SetVec4(locations.la, mgl32.Vec4{})
			p.program.SetVec4(locations.ld, mgl32.Vec4{})
			p.program.SetVec4(locations.ls, mgl32.Vec4{})
			continue
		}
		light := lights[i]
		p.program.SetVec4(locations.la, light.La)
		p.program.SetVec4(locations.ld, light.Ld)
		p.program.SetVec4(locations.ls, light.Ls)
		p.program.SetVec3(locations.position, light.Position)
		p.program.SetMat4(locations.vp, light.VP())
		if light.Target != nil {
			p.device.BindDepthTexture(unit, light.Target)
		}
	}

	for _, object := range objects {
		if object == nil || object.Mesh == nil {
			continue
		}
		p.drawObject(object)
	}

	if p.Indicator != nil {
		p.drawIndicators(lights)
	}
}

func (p *LightingPass) drawObject(object *Object) {
	p.program.SetMat4(p.modelLocation, object.ModelMatrix())
	p.setMaterial(object.Material)
	if object.Textured() {
		p.program.SetInt(p.useTextureLocation, 1)
		p.device.BindTexture(DiffuseTextureUnit, object.Diffuse)
		p.device.BindTexture(SpecularTextureUnit, object.Specular)
	} else {
		p.program.SetInt(p.useTextureLocation, 0)
	}
	p.device.Draw(object.Mesh)
}

func (p *LightingPass) setMaterial(m Material) {
	p.program.SetVec4(p.kaLocation, m.Ka)
	p.program.SetVec4(p.kdLocation, m.Kd)
	p.program.SetVec4(p.ksLocation, m.Ks)
	p.program.SetFloat(p.nsLocation, m.Ns)
}

func (p *LightingPass) drawIndicators(lights []ShadowLight) {
	p.program.SetInt(p.unshadedLocation, 1)
	p.program.SetInt(p.useTextureLocation, 0)
	for i, light := range lights {
		if i >= MaxShadowLights || light.Light == nil {
			break
		}
		model := mgl32.Translate3D(light.Position[0], light.Position[1], light.Position[2]).
			Mul4(mgl32.Scale3D(indicatorScale, indicatorScale, indicatorScale))
		p.program.SetMat4(p.modelLocation, model)
		p.setMaterial(light.Indicator())
		p.device.Draw(p.Indicator)
	}
	p.program.SetInt(p.unshadedLocation, 0)
}
