// Package inputtest provides a scripted input.Source for tests.
package inputtest

import "Winter3D/internal/input"

// Source is a fake window: tests set the clock, cursor and held actions
// directly and inspect the cursor re-centring performed by controllers.
type Source struct {
	Now           float64
	X, Y          float64
	Width, Height int
	Held          map[input.Action]bool
	Edges         map[input.Action]bool

	// CursorSets counts SetCursorPos calls.
	CursorSets int
}

// New returns a fake window of the given size with the cursor centred.
func New(width, height int) *Source {
	return &Source{
		Width:  width,
		Height: height,
		X:      float64(width) / 2,
		Y:      float64(height) / 2,
		Held:   make(map[input.Action]bool),
		Edges:  make(map[input.Action]bool),
	}
}

func (s *Source) CursorPos() (float64, float64) { return s.X, s.Y }

func (s *Source) SetCursorPos(x, y float64) {
	s.X, s.Y = x, y
	s.CursorSets++
}

func (s *Source) WindowSize() (int, int) { return s.Width, s.Height }

func (s *Source) Pressed(a input.Action) bool { return s.Held[a] }

func (s *Source) Time() float64 { return s.Now }

// JustPressed reports and consumes a scripted edge.
func (s *Source) JustPressed(a input.Action) bool {
	v := s.Edges[a]
	delete(s.Edges, a)
	return v
}

// Hold marks actions as held until Release.
func (s *Source) Hold(actions ...input.Action) {
	for _, a := range actions {
		s.Held[a] = true
	}
}

// Release clears held actions; with no arguments it clears all of them.
func (s *Source) Release(actions ...input.Action) {
	if len(actions) == 0 {
		s.Held = make(map[input.Action]bool)
		return
	}
	for _, a := range actions {
		delete(s.Held, a)
	}
}

// Tap schedules a single edge-triggered press.
func (s *Source) Tap(a input.Action) {
	s.Edges[a] = true
}

// Advance moves the clock forward by dt seconds.
func (s *Source) Advance(dt float64) {
	s.Now += dt
}

// MoveCursor offsets the cursor from the window centre.
func (s *Source) MoveCursor(dx, dy float64) {
	s.X = float64(s.Width)/2 + dx
	s.Y = float64(s.Height)/2 + dy
}

var _ input.EdgeSource = (*Source)(nil)
