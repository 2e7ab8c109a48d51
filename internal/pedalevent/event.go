// Package pedalevent defines the small, shared data model that flows between
// the device layer and the pattern engine: buttons, actions, and the events
// built from them.
package pedalevent

import (
	"fmt"
	"time"
)

// Button is a small positive integer identifying a physical input, assigned
// by the device layer via cross-device flattening. The pattern engine treats
// it as opaque.
type Button int

// Action is the polarity of a button event.
type Action int

const (
	// Down is a press.
	Down Action = iota
	// Up is a release.
	Up
)

// String renders the action the way the pattern grammar spells it: "v" for a
// press-only element and "^" for a release-only one.
func (a Action) String() string {
	switch a {
	case Down:
		return "v"
	case Up:
		return "^"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ButtonEvent is a single, immutable (button, action, timestamp) triple
// delivered by the device layer into the matcher.
type ButtonEvent struct {
	Button Button
	Action Action
	Time   time.Time
}

func (e ButtonEvent) String() string {
	return fmt.Sprintf("%d%s@%s", e.Button, e.Action, e.Time.Format(time.RFC3339Nano))
}
