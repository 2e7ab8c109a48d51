// Package pedalstate tracks the current pressed/released state of each
// known button — the source of truth the matcher consults for sanity checks
// and release-pop decisions. Snapshot exposes a copy of the held buttons
// for the read-only status surface.
package pedalstate

import "github.com/larsks/airdancer/internal/pedalevent"

// State is a mapping from Button to whether it is currently held.
type State struct {
	pressed map[pedalevent.Button]bool
}

// New creates an empty State; every button starts released.
func New() *State {
	return &State{pressed: make(map[pedalevent.Button]bool)}
}

// Apply updates state for an incoming event: Down sets the flag, Up clears
// it. Called by the matcher before rule scanning.
func (s *State) Apply(ev pedalevent.ButtonEvent) {
	s.pressed[ev.Button] = ev.Action == pedalevent.Down
}

// IsPressed reports whether button is currently held.
func (s *State) IsPressed(button pedalevent.Button) bool {
	return s.pressed[button]
}

// Snapshot returns a copy of the currently-held buttons, for callers (the
// status surface) that must not race with concurrent Apply calls.
func (s *State) Snapshot() map[pedalevent.Button]bool {
	out := make(map[pedalevent.Button]bool, len(s.pressed))
	for b, held := range s.pressed {
		if held {
			out[b] = true
		}
	}
	return out
}
