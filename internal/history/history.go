// Package history implements the ordered, append-only (with scoped pop on
// release) sequence of button events the matcher consults, together with its
// per-entry usage-accounting invariants.
package history

import (
	"github.com/larsks/airdancer/internal/pedalevent"
)

// Entry wraps a ButtonEvent with the mutable use counter the matcher
// increments each time a rule consumes it as one of the rule's sequence
// elements. Used is monotonically non-decreasing and the event itself is
// never re-timestamped.
type Entry struct {
	Event pedalevent.ButtonEvent
	Used  uint32
}

// History is the chronological, insertion-ordered record of recent button
// events. It is owned exclusively by the matcher; no other component
// mutates it.
type History struct {
	entries []*Entry
}

// New creates an empty History.
func New() *History {
	return &History{}
}

// Append adds a new Entry for ev at the tail and returns it so the caller can
// reference it directly (e.g. to bump Used during rule commit).
func (h *History) Append(ev pedalevent.ButtonEvent) *Entry {
	e := &Entry{Event: ev}
	h.entries = append(h.entries, e)
	return e
}

// Snapshot exposes the current ordered entries read-only to the matcher.
// Callers must not mutate the returned slice's backing array, though Used on
// an individual *Entry may still be bumped by the matcher that owns it.
func (h *History) Snapshot() []*Entry {
	return h.entries
}

// Len returns the number of entries currently retained.
func (h *History) Len() int {
	return len(h.entries)
}

// ReleasePop is called once the matcher has fully processed an Up event for
// button: it removes the just-appended Up and, if no other button's entries
// separate them, the Down that paired with it. If intervening entries for
// other buttons exist, the Down is left in place — it is still "live" and
// may anchor future combination matches.
func (h *History) ReleasePop(button pedalevent.Button) {
	n := len(h.entries)
	if n == 0 {
		return
	}
	last := h.entries[n-1]
	if last.Event.Button != button || last.Event.Action != pedalevent.Up {
		return
	}
	h.entries = h.entries[:n-1]

	for j := len(h.entries) - 1; j >= 0; j-- {
		e := h.entries[j]
		if e.Event.Button != button {
			// Another button's entry sits between the Up and the Down:
			// the Down stays live.
			return
		}
		if e.Event.Action == pedalevent.Down {
			h.entries = append(h.entries[:j], h.entries[j+1:]...)
			return
		}
	}
}

// TailTrim is an optional compaction pass: it drops trailing entries whose
// button is currently released and whose use count has reached ceiling.
// isPressed reports live pedal state.
func (h *History) TailTrim(ceiling uint32, isPressed func(pedalevent.Button) bool) {
	n := len(h.entries)
	for n > 0 {
		e := h.entries[n-1]
		if isPressed(e.Event.Button) || e.Used < ceiling {
			break
		}
		n--
	}
	h.entries = h.entries[:n]
}

// TrimOldest enforces the soft cap on history size: once history exceeds
// softCap, the oldest entries whose button is not currently
// held are dropped. An entry whose button is still held is never dropped,
// since that Down must remain live to anchor future combination matches.
func (h *History) TrimOldest(softCap int, isPressed func(pedalevent.Button) bool) {
	for len(h.entries) > softCap {
		if isPressed(h.entries[0].Event.Button) {
			// The oldest entry is still live; stop rather than skip past it,
			// so only a prefix of history is ever dropped.
			break
		}
		h.entries = h.entries[1:]
	}
}
