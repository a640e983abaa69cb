package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================
//
//	Shaders
//
// =============================================================

// Program names shared by the passes and every device.
const (
	DepthProgram         = "depth"
	ShadowMappingProgram = "shadow_mapping"
	NormalsProgram       = "normals"
	PhongProgram         = "phong"
	GouraudProgram       = "gouraud"
	FlatProgram          = "flat"
)

//go:embed shaders/*.vert shaders/*.frag
var embeddedShaders embed.FS

// ProgramSource is the GLSL of one vertex/fragment pair.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// LoadProgramSource returns an embedded program.
func LoadProgramSource(name string) (ProgramSource, error) {
	sub, err := fs.Sub(embeddedShaders, "shaders")
	if err != nil {
		return ProgramSource{}, err
	}
	return loadProgramSource(sub, name)
}

// LoadProgramSourceFrom reads <dir>/<name>.vert and <dir>/<name>.frag,
// falling back to the embedded copy when dir is empty.
func LoadProgramSourceFrom(dir, name string) (ProgramSource, error) {
	if dir == "" {
		return LoadProgramSource(name)
	}
	return loadProgramSource(os.DirFS(dir), name)
}

func loadProgramSource(fsys fs.FS, name string) (ProgramSource, error) {
	vertex, err := fs.ReadFile(fsys, name+".vert")
	if err != nil {
		return ProgramSource{}, fmt.Errorf("vertex shader %q: %w", name, err)
	}
	fragment, err := fs.ReadFile(fsys, name+".frag")
	if err != nil {
		return ProgramSource{}, fmt.Errorf("fragment shader %q: %w", name, err)
	}
	return ProgramSource{Name: name, Vertex: string(vertex), Fragment: string(fragment)}, nil
}

// EmbeddedPrograms lists the names of the built-in programs.
func EmbeddedPrograms() []string {
	entries, _ := fs.Glob(embeddedShaders, "shaders/*.vert")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(filepath.Base(e), ".vert"))
	}
	sort.Strings(names)
	return names
}

// programNameFromPath maps "dir/phong.frag" to "phong".
func programNameFromPath(path string) (string, bool) {
	ext := filepath.Ext(path)
	if ext != ".vert" && ext != ".frag" {
		return "", false
	}
	return strings.TrimSuffix(filepath.Base(path), ext), true
}
