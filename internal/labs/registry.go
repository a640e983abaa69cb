// Package labs holds the scenes the labs command can open. Each lab
// registers itself by name from an init function.
package labs

import (
	"errors"
	"fmt"
	"sort"

	"Winter3D/internal/config"
	"Winter3D/internal/engine"
)

// ErrUnknownLab is returned by Create for names nobody registered.
var ErrUnknownLab = errors.New("labs: unknown lab")

// Constructor builds a scene from the loaded configuration.
type Constructor func(cfg *config.Config) engine.Scene

type entry struct {
	short       string
	constructor Constructor
}

var registry = make(map[string]entry)

// Register makes a lab available under name. Registering a name twice
// replaces the earlier lab.
func Register(name, short string, constructor Constructor) {
	registry[name] = entry{short: short, constructor: constructor}
}

// Names lists the registered labs in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line description a lab registered with.
func Describe(name string) string {
	return registry[name].short
}

func Create(name string, cfg *config.Config) (engine.Scene, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLab, name)
	}
	return e.constructor(cfg), nil
}
