package software

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// depth

const (
	depthVP = iota
	depthM
)

type depthShader struct{}

func (depthShader) names() []string { return []string{"VP", "M"} }
func (depthShader) varyings() int   { return 0 }

func (depthShader) vertex(u []uniform, pos, _ mgl32.Vec3, _ mgl32.Vec2, _ []float32) mgl32.Vec4 {
	return u[depthVP].mat.Mul4(u[depthM].mat).Mul4x1(pos.Vec4(1))
}

func (depthShader) fragment(*Device, []uniform, []float32) (mgl32.Vec4, bool) {
	return mgl32.Vec4{}, false
}

// normals

const (
	normalsM = iota
	normalsV
	normalsP
)

type normalsShader struct{}

func (normalsShader) names() []string { return []string{"M", "V", "P"} }
func (normalsShader) varyings() int   { return 3 }

func (normalsShader) vertex(u []uniform, pos, normal mgl32.Vec3, _ mgl32.Vec2, out []float32) mgl32.Vec4 {
	n := u[normalsM].mat.Mul4x1(normal.Vec4(0)).Vec3()
	if n.Len() > 0 {
		n = n.Normalize()
	}
	out[0], out[1], out[2] = n[0]*0.5+0.5, n[1]*0.5+0.5, n[2]*0.5+0.5
	return u[normalsP].mat.Mul4(u[normalsV].mat).Mul4(u[normalsM].mat).Mul4x1(pos.Vec4(1))
}

func (normalsShader) fragment(_ *Device, _ []uniform, in []float32) (mgl32.Vec4, bool) {
	return mgl32.Vec4{in[0], in[1], in[2], 1}, true
}

// shadow_mapping

const (
	smM = iota
	smV
	smP
	smLight1VP
	smLight2VP
	smShadowMap1
	smShadowMap2
	smDiffuse
	smSpecular
	smUseTexture
	smUnshaded
	smBias
	smLight1La
	smLight1Ld
	smLight1Ls
	smLight1Position
	smLight2La
	smLight2Ld
	smLight2Ls
	smLight2Position
	smKa
	smKd
	smKs
	smNs
)

// Varying layout: camera-space position (3), camera-space normal (3), uv (2),
// light-space positions (4 each).
const (
	vPos = 0
	vNor = 3
	vUV  = 6
	vLS1 = 8
	vLS2 = 12
)

type shadowMappingShader struct{}

func (shadowMappingShader) names() []string {
	return []string{
		"M", "V", "P", "light1VP", "light2VP",
		"shadowMapSampler1", "shadowMapSampler2", "diffuseColorSampler", "specularColorSampler",
		"useTexture", "ChampionOfLight", "shadowBias",
		"light1.La", "light1.Ld", "light1.Ls", "light1.lightPosition_worldspace",
		"light2.La", "light2.Ld", "light2.Ls", "light2.lightPosition_worldspace",
		"mtl.Ka", "mtl.Kd", "mtl.Ks", "mtl.Ns",
	}
}

func (shadowMappingShader) varyings() int { return 16 }

func (shadowMappingShader) vertex(u []uniform, pos, normal mgl32.Vec3, uv mgl32.Vec2, out []float32) mgl32.Vec4 {
	world := u[smM].mat.Mul4x1(pos.Vec4(1))
	camera := u[smV].mat.Mul4x1(world)
	n := u[smV].mat.Mul4(u[smM].mat).Mul4x1(normal.Vec4(0))
	ls1 := u[smLight1VP].mat.Mul4x1(world)
	ls2 := u[smLight2VP].mat.Mul4x1(world)

	copy(out[vPos:], camera[:3])
	copy(out[vNor:], n[:3])
	out[vUV], out[vUV+1] = uv[0], uv[1]
	copy(out[vLS1:], ls1[:])
	copy(out[vLS2:], ls2[:])
	return u[smP].mat.Mul4x1(camera)
}

func (shadowMappingShader) fragment(d *Device, u []uniform, in []float32) (mgl32.Vec4, bool) {
	ka, kd, ks := u[smKa].vec, u[smKd].vec, u[smKs].vec
	if u[smUseTexture].i == 1 {
		s, t := in[vUV], in[vUV+1]
		kd = d.sampleTexture(u[smDiffuse].i, s, t)
		kd[3] = 1
		ks = d.sampleTexture(u[smSpecular].i, s, t)
		ks[3] = 1
		ka = mulVec4(mgl32.Vec4{0.1, 0.1, 0.1, 1}, kd)
	}

	if u[smUnshaded].i == 1 {
		c := mulVec4(u[smLight1La].vec, ka).Add(mulVec4(u[smLight2La].vec, ka))
		return mgl32.Vec4{c[0], c[1], c[2], ka[3]}, true
	}

	position := mgl32.Vec3{in[vPos], in[vPos+1], in[vPos+2]}
	normal := mgl32.Vec3{in[vNor], in[vNor+1], in[vNor+2]}.Normalize()
	ls1 := mgl32.Vec4{in[vLS1], in[vLS1+1], in[vLS1+2], in[vLS1+3]}
	ls2 := mgl32.Vec4{in[vLS2], in[vLS2+1], in[vLS2+2], in[vLS2+3]}

	f := fragmentState{d: d, u: u, position: position, normal: normal, ka: ka, kd: kd, ks: ks}
	c := f.phong(smLight1La, ls1, u[smShadowMap1].i).
		Add(f.phong(smLight2La, ls2, u[smShadowMap2].i))
	return mgl32.Vec4{c[0], c[1], c[2], kd[3]}, true
}

type fragmentState struct {
	d          *Device
	u          []uniform
	position   mgl32.Vec3
	normal     mgl32.Vec3
	ka, kd, ks mgl32.Vec4
}

// phong shades one light whose La, Ld, Ls and position uniforms start at base.
func (f fragmentState) phong(base int, lightspace mgl32.Vec4, shadowUnit int32) mgl32.Vec4 {
	la, ld, ls := f.u[base].vec, f.u[base+1].vec, f.u[base+2].vec
	lightWorld := f.u[base+3].vec.Vec3()

	lightCamera := f.u[smV].mat.Mul4x1(lightWorld.Vec4(1)).Vec3()
	l := lightCamera.Sub(f.position).Normalize()
	e := f.position.Mul(-1).Normalize()
	r := reflect(l.Mul(-1), f.normal)

	cosTheta := mgl32.Clamp(f.normal.Dot(l), 0, 1)
	cosAlpha := mgl32.Clamp(e.Dot(r), 0, 1)

	ambient := mulVec4(la, f.ka)
	diffuse := mulVec4(ld, f.kd).Mul(cosTheta)
	specular := mulVec4(ls, f.ks).Mul(float32(math.Pow(float64(cosAlpha), float64(f.u[smNs].f))))

	shadow := f.shadowFactor(lightspace, shadowUnit, l)
	return ambient.Add(diffuse.Add(specular).Mul(1 - shadow))
}

func (f fragmentState) shadowFactor(lightspace mgl32.Vec4, unit int32, l mgl32.Vec3) float32 {
	coords := lightspace.Vec3().Mul(1 / lightspace[3])
	coords = coords.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	if coords[2] > 1 {
		return 0
	}

	closest := f.d.sampleDepth(unit, coords[0], coords[1])
	if closest >= 1 {
		return 0
	}

	bias := f.u[smBias].f
	bias = max(10*bias*(1-f.normal.Dot(l)), bias)
	if coords[2]-bias > closest {
		return 1
	}
	return 0
}

func reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

func mulVec4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
