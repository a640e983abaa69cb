package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Winter3D/internal/logger"
	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// faceVertex holds zero-based indices; -1 marks an absent uv or normal.
type faceVertex struct {
	v, vt, vn int32
}

type objData struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3
	faces     []faceVertex
	mtllib    string
	usemtl    string
}

// LoadOBJ reads a Wavefront OBJ file. Faces with more than three vertices
// are triangulated as fans, v/vt/vn triplets are unified into one vertex
// buffer, and normals missing from the file are recalculated.
func LoadOBJ(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer file.Close()

	obj, err := parseOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	model := &Model{
		Name:     modelName(path),
		Data:     obj.meshData(),
		Material: DefaultMaterial,
	}

	if obj.mtllib != "" {
		mtlPath := filepath.Join(filepath.Dir(path), obj.mtllib)
		materials, err := LoadMaterials(mtlPath)
		if err != nil {
			logger.Log.Warn("Could not load material library", zap.String("path", mtlPath), zap.Error(err))
		} else if mtl, ok := materials.pick(obj.usemtl); ok {
			model.Material = mtl.Material
			model.DiffuseMap = mtl.DiffuseMap
			model.SpecularMap = mtl.SpecularMap
		} else {
			logger.Log.Debug("Material not found", zap.String("material", obj.usemtl))
		}
	}

	logger.Log.Info("OBJ loaded",
		zap.String("path", path),
		zap.Int("vertices", model.Data.VertexCount()),
		zap.Int("triangles", len(model.Data.Indices)/3))
	return model, nil
}

func parseOBJ(r io.Reader) (*objData, error) {
	obj := &objData{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			obj.positions = append(obj.positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", line, err)
			}
			obj.uvs = append(obj.uvs, mgl32.Vec2{v[0], v[1]})
		case "vn":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			obj.normals = append(obj.normals, mgl32.Vec3{v[0], v[1], v[2]})
		case "f":
			face, err := obj.parseFace(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
			obj.faces = append(obj.faces, face...)
		case "mtllib":
			if len(parts) >= 2 && obj.mtllib == "" {
				obj.mtllib = strings.Join(parts[1:], " ")
			}
		case "usemtl":
			if len(parts) >= 2 && obj.usemtl == "" {
				obj.usemtl = parts[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(obj.faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	return obj, nil
}

// parseFace returns the face as triangles.
func (o *objData) parseFace(parts []string) ([]faceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("need at least 3 vertices, got %d", len(parts))
	}

	face := make([]faceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")
		fv := faceVertex{v: -1, vt: -1, vn: -1}

		var err error
		if fv.v, err = resolveIndex(vals[0], len(o.positions)); err != nil {
			return nil, err
		}
		if fv.v < 0 {
			return nil, fmt.Errorf("missing vertex index in %q", part)
		}
		if len(vals) > 1 {
			if fv.vt, err = resolveIndex(vals[1], len(o.uvs)); err != nil {
				return nil, err
			}
		}
		if len(vals) > 2 {
			if fv.vn, err = resolveIndex(vals[2], len(o.normals)); err != nil {
				return nil, err
			}
		}
		face = append(face, fv)
	}

	if len(face) == 3 {
		return face, nil
	}
	triangles := make([]faceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		triangles = append(triangles, face[0], face[i], face[i+1])
	}
	return triangles, nil
}

// resolveIndex converts a one-based or negative (relative) OBJ index into a
// zero-based one. An empty field yields -1.
func resolveIndex(s string, count int) (int32, error) {
	if s == "" {
		return -1, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	switch {
	case n > 0 && int(n) <= count:
		return int32(n - 1), nil
	case n < 0 && count+int(n) >= 0:
		return int32(count + int(n)), nil
	}
	return 0, fmt.Errorf("index %d out of range (%d elements)", n, count)
}

// meshData unifies v/vt/vn triplets into interleaved vertices.
func (o *objData) meshData() renderer.MeshData {
	recalculated := o.smoothNormals()

	index := make(map[faceVertex]uint32, len(o.faces))
	data := renderer.MeshData{Indices: make([]uint32, 0, len(o.faces))}
	for _, fv := range o.faces {
		if i, ok := index[fv]; ok {
			data.Indices = append(data.Indices, i)
			continue
		}

		i := uint32(data.VertexCount())
		index[fv] = i
		data.Indices = append(data.Indices, i)

		p := o.positions[fv.v]
		var uv mgl32.Vec2
		if fv.vt >= 0 {
			uv = o.uvs[fv.vt]
		}
		var n mgl32.Vec3
		if fv.vn >= 0 {
			n = o.normals[fv.vn]
		} else {
			n = recalculated[fv.v]
		}
		data.Interleaved = append(data.Interleaved, p[0], p[1], p[2], uv[0], uv[1], n[0], n[1], n[2])
	}
	return data
}

// smoothNormals averages face normals per position. It returns nil when
// every face vertex already carries a normal.
func (o *objData) smoothNormals() []mgl32.Vec3 {
	missing := false
	for _, fv := range o.faces {
		if fv.vn < 0 {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}
	indices := make([]uint32, len(o.faces))
	for i, fv := range o.faces {
		indices[i] = uint32(fv.v)
	}
	return RecalculateNormals(o.positions, indices)
}

// RecalculateNormals returns area-weighted vertex normals for an indexed
// triangle list. Vertices not referenced by any triangle get (0,1,0).
func RecalculateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(positions) || int(i1) >= len(positions) || int(i2) >= len(positions) {
			continue
		}
		v0, v1, v2 := positions[i0], positions[i1], positions[i2]
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i, n := range normals {
		if n.Len() == 0 {
			normals[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		normals[i] = n.Normalize()
	}
	return normals
}

// parseFloats parses at least want values. Extra values (such as the
// optional w of a vertex) are ignored.
func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("need %d values, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
