package renderer

import (
	"fmt"
	"sort"

	"Winter3D/internal/logger"

	"go.uber.org/zap"
)

// ProgramSet owns a scene's programs by name and swaps them on reload.
type ProgramSet struct {
	device    Device
	dir       string
	programs  map[string]Program
	listeners map[string][]func(Program)
}

// NewProgramSet reads sources from dir, or the embedded copies when dir is empty.
func NewProgramSet(device Device, dir string) *ProgramSet {
	return &ProgramSet{
		device:    device,
		dir:       dir,
		programs:  make(map[string]Program),
		listeners: make(map[string][]func(Program)),
	}
}

// Load compiles a program once; later calls return the same program.
func (s *ProgramSet) Load(name string) (Program, error) {
	if p, ok := s.programs[name]; ok {
		return p, nil
	}
	p, err := s.compile(name)
	if err != nil {
		return nil, err
	}
	s.programs[name] = p
	return p, nil
}

// OnReload registers fn to receive the replacement after a successful Reload.
func (s *ProgramSet) OnReload(name string, fn func(Program)) {
	s.listeners[name] = append(s.listeners[name], fn)
}

// Reload recompiles a loaded program. On failure the old program stays in use.
func (s *ProgramSet) Reload(name string) error {
	old, ok := s.programs[name]
	if !ok {
		return nil
	}
	p, err := s.compile(name)
	if err != nil {
		logger.Log.Warn("Shader reload failed", zap.String("program", name), zap.Error(err))
		return err
	}
	s.programs[name] = p
	for _, fn := range s.listeners[name] {
		fn(p)
	}
	old.Release()
	logger.Log.Info("Shader reloaded", zap.String("program", name))
	return nil
}

func (s *ProgramSet) compile(name string) (Program, error) {
	src, err := LoadProgramSourceFrom(s.dir, name)
	if err != nil {
		return nil, err
	}
	p, err := s.device.NewProgram(src)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	return p, nil
}

// Names lists the loaded programs.
func (s *ProgramSet) Names() []string {
	names := make([]string, 0, len(s.programs))
	for name := range s.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ProgramSet) Release() {
	for name, p := range s.programs {
		p.Release()
		delete(s.programs, name)
	}
}
