package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a translation, rotation and scale applied in TRS order.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	rotation := t.Rotation
	if rotation == (mgl32.Quat{}) {
		rotation = mgl32.QuatIdent()
	}
	scaleMatrix := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	translationMatrix := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	return translationMatrix.Mul4(rotation.Mat4()).Mul4(scaleMatrix)
}

// Object is one entry of a scene: a mesh placed in the world with a material.
type Object struct {
	Name        string
	Mesh        Mesh
	Transform   Transform
	Material    Material
	CastsShadow bool

	// Diffuse and Specular replace the material's colours when both are set.
	Diffuse  Texture
	Specular Texture

	modelMatrix mgl32.Mat4
	dirty       bool
}

func NewObject(name string, mesh Mesh, material Material) *Object {
	return &Object{
		Name:        name,
		Mesh:        mesh,
		Transform:   NewTransform(),
		Material:    material,
		CastsShadow: true,
		dirty:       true,
	}
}

func (o *Object) SetPosition(x, y, z float32) *Object {
	o.Transform.Position = mgl32.Vec3{x, y, z}
	o.dirty = true
	return o
}

func (o *Object) SetScale(x, y, z float32) *Object {
	o.Transform.Scale = mgl32.Vec3{x, y, z}
	o.dirty = true
	return o
}

// Rotate composes X, Y then Z rotations in degrees onto the current rotation.
func (o *Object) Rotate(angleX, angleY, angleZ float32) *Object {
	if o.Transform.Rotation == (mgl32.Quat{}) {
		o.Transform.Rotation = mgl32.QuatIdent()
	}
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	o.Transform.Rotation = o.Transform.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	o.dirty = true
	return o
}

// SetTextures attaches a diffuse/specular pair.
func (o *Object) SetTextures(diffuse, specular Texture) *Object {
	o.Diffuse, o.Specular = diffuse, specular
	return o
}

func (o *Object) Textured() bool {
	return o.Diffuse != nil && o.Specular != nil
}

// ModelMatrix caches the transform until it changes through a setter.
// Assigning Transform directly requires MarkDirty.
func (o *Object) ModelMatrix() mgl32.Mat4 {
	if o.dirty || o.modelMatrix == (mgl32.Mat4{}) {
		o.modelMatrix = o.Transform.Matrix()
		o.dirty = false
	}
	return o.modelMatrix
}

func (o *Object) MarkDirty() {
	o.dirty = true
}
