package loader

import (
	"errors"
	"fmt"

	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// LoadGLTF reads the first primitive of the first mesh of a .gltf or .glb
// file. The base colour factor of its material becomes Kd.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	model, err := modelFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	model.Name = modelName(path)

	logger.Log.Info("glTF loaded",
		zap.String("path", path),
		zap.Int("vertices", model.Data.VertexCount()),
		zap.Int("triangles", len(model.Data.Indices)/3))
	return model, nil
}

func modelFromDocument(doc *gltf.Document) (*Model, error) {
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, errors.New("no mesh primitives")
	}
	prim := doc.Meshes[0].Primitives[0]
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("%w: primitive mode %d", ErrUnsupportedFormat, prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if len(normals) != len(positions) {
		vecs := make([]mgl32.Vec3, len(positions))
		for i, p := range positions {
			vecs[i] = p
		}
		normals = normals[:0]
		for _, n := range RecalculateNormals(vecs, indices) {
			normals = append(normals, n)
		}
	}

	data := renderer.MeshData{
		Interleaved: make([]float32, 0, len(positions)*renderer.FloatsPerVertex),
		Indices:     indices,
	}
	for i, p := range positions {
		var uv [2]float32
		if i < len(uvs) {
			uv = uvs[i]
		}
		n := normals[i]
		data.Interleaved = append(data.Interleaved, p[0], p[1], p[2], uv[0], uv[1], n[0], n[1], n[2])
	}

	return &Model{Data: data, Material: gltfMaterial(doc, prim)}, nil
}

func gltfMaterial(doc *gltf.Document, prim *gltf.Primitive) renderer.Material {
	mtl := DefaultMaterial
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return mtl
	}
	src := doc.Materials[*prim.Material]
	if src.Name != "" {
		mtl.Name = src.Name
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		mtl.Kd = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		mtl.Ka = mtl.Kd.Mul(0.1)
		mtl.Ka[3] = mtl.Kd[3]
	}
	return mtl
}
