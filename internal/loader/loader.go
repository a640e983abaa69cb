package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"Winter3D/internal/renderer"
)

// ErrUnsupportedFormat is returned for model or image files with an unknown extension.
var ErrUnsupportedFormat = errors.New("loader: unsupported format")

// DefaultMaterial is used when a model file carries no material.
var DefaultMaterial = renderer.WhitePlaster

// Model is mesh data with the material read alongside it.
type Model struct {
	Name     string
	Data     renderer.MeshData
	Material renderer.Material

	// DiffuseMap and SpecularMap are texture paths from the material file,
	// resolved against its directory. Empty when absent.
	DiffuseMap  string
	SpecularMap string
}

// Load picks the loader from the file extension.
func Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case cacheExt:
		return ReadCache(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Upload creates a device mesh from the model's data.
func (m *Model) Upload(device renderer.Device) (renderer.Mesh, error) {
	mesh, err := device.NewMesh(m.Data)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", m.Name, err)
	}
	return mesh, nil
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
