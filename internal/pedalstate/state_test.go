package pedalstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/larsks/airdancer/internal/pedalevent"
)

func TestState_ApplyAndIsPressed(t *testing.T) {
	s := New()
	assert.False(t, s.IsPressed(1))

	s.Apply(pedalevent.ButtonEvent{Button: 1, Action: pedalevent.Down})
	assert.True(t, s.IsPressed(1))

	s.Apply(pedalevent.ButtonEvent{Button: 1, Action: pedalevent.Up})
	assert.False(t, s.IsPressed(1))
}

func TestState_Snapshot_OnlyIncludesHeldButtons(t *testing.T) {
	s := New()
	s.Apply(pedalevent.ButtonEvent{Button: 1, Action: pedalevent.Down})
	s.Apply(pedalevent.ButtonEvent{Button: 2, Action: pedalevent.Down})
	s.Apply(pedalevent.ButtonEvent{Button: 2, Action: pedalevent.Up})

	got := s.Snapshot()
	assert.Equal(t, map[pedalevent.Button]bool{1: true}, got)
}

func TestState_Snapshot_IsACopy(t *testing.T) {
	s := New()
	s.Apply(pedalevent.ButtonEvent{Button: 1, Action: pedalevent.Down})

	got := s.Snapshot()
	got[1] = false
	s.Apply(pedalevent.ButtonEvent{Button: 2, Action: pedalevent.Down})

	assert.True(t, s.IsPressed(1), "mutating the snapshot must not affect live state")
}
