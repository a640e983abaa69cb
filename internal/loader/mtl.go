package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"Winter3D/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// MTLMaterial is one newmtl block of a material library.
type MTLMaterial struct {
	renderer.Material
	DiffuseMap  string
	SpecularMap string
}

// MaterialLibrary keeps the materials of an .mtl file in file order.
type MaterialLibrary struct {
	names     []string
	materials map[string]MTLMaterial
}

func (l MaterialLibrary) Len() int { return len(l.names) }

func (l MaterialLibrary) Get(name string) (MTLMaterial, bool) {
	m, ok := l.materials[name]
	return m, ok
}

// pick returns the named material, or the first one when name is empty.
func (l MaterialLibrary) pick(name string) (MTLMaterial, bool) {
	if name != "" {
		return l.Get(name)
	}
	if len(l.names) == 0 {
		return MTLMaterial{}, false
	}
	return l.materials[l.names[0]], true
}

// LoadMaterials reads Ka, Kd, Ks, Ns, d, map_Kd and map_Ks from an .mtl
// file. Texture paths are resolved against the file's directory.
func LoadMaterials(path string) (MaterialLibrary, error) {
	file, err := os.Open(path)
	if err != nil {
		return MaterialLibrary{}, fmt.Errorf("open mtl: %w", err)
	}
	defer file.Close()

	lib, err := parseMTL(file, filepath.Dir(path))
	if err != nil {
		return MaterialLibrary{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return lib, nil
}

func parseMTL(r io.Reader, dir string) (MaterialLibrary, error) {
	lib := MaterialLibrary{materials: make(map[string]MTLMaterial)}
	var current *MTLMaterial
	flush := func() {
		if current != nil {
			lib.materials[current.Name] = *current
		}
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return lib, fmt.Errorf("line %d: newmtl without a name", line)
			}
			flush()
			current = &MTLMaterial{Material: renderer.Material{
				Name: fields[1],
				Ka:   mgl32.Vec4{0, 0, 0, 1},
				Kd:   mgl32.Vec4{0.8, 0.8, 0.8, 1},
				Ks:   mgl32.Vec4{0, 0, 0, 1},
				Ns:   1,
			}}
			lib.names = append(lib.names, fields[1])
			continue
		}
		if current == nil {
			continue
		}

		switch fields[0] {
		case "Ka", "Kd", "Ks":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return lib, fmt.Errorf("line %d: %s: %w", line, fields[0], err)
			}
			c := mgl32.Vec4{v[0], v[1], v[2], 1}
			switch fields[0] {
			case "Ka":
				c[3] = current.Ka[3]
				current.Ka = c
			case "Kd":
				c[3] = current.Kd[3]
				current.Kd = c
			case "Ks":
				c[3] = current.Ks[3]
				current.Ks = c
			}
		case "Ns", "d":
			v, err := parseFloats(fields[1:], 1)
			if err != nil {
				return lib, fmt.Errorf("line %d: %s: %w", line, fields[0], err)
			}
			if fields[0] == "Ns" {
				current.Ns = v[0]
			} else {
				current.Ka[3], current.Kd[3], current.Ks[3] = v[0], v[0], v[0]
			}
		case "map_Kd", "map_Ks":
			if len(fields) < 2 {
				continue
			}
			// Options may precede the path; the path is last.
			p := fields[len(fields)-1]
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			if fields[0] == "map_Kd" {
				current.DiffuseMap = p
			} else {
				current.SpecularMap = p
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return lib, err
	}
	flush()
	return lib, nil
}
