// Package matcher implements the dispatcher that ties the pattern engine,
// event history, and pedal state together: for every incoming ButtonEvent it
// decides which configured rules fire and hands their commands to a sink.
package matcher

import (
	"log"
	"sync"

	"github.com/larsks/airdancer/internal/history"
	"github.com/larsks/airdancer/internal/patternengine"
	"github.com/larsks/airdancer/internal/pedalevent"
	"github.com/larsks/airdancer/internal/pedalstate"
)

// CommandSink is the one-method capability the matcher dispatches matched
// commands through. Implementations must not call back into the Matcher, and
// if they execute asynchronously they must still preserve the declaration
// order in which Dispatch was called for a single event.
type CommandSink interface {
	Dispatch(cmd string) error
}

// DefaultSoftCap bounds history length when the caller doesn't configure one
// explicitly.
const DefaultSoftCap = 256

// Matcher owns the history and pedal state for one set of rules and drives
// them through the ingest/scan/commit/release/trim cycle on every event.
//
// Handle is only ever called from the single goroutine that drains the
// device event channel, but Snapshot may be called concurrently from a
// status server's request handlers, so both take mu.
type Matcher struct {
	mu      sync.RWMutex
	rules   []patternengine.Rule
	history *history.History
	state   *pedalstate.State
	sink    CommandSink
	softCap int
}

// New builds a Matcher for rules, dispatching matched commands to sink.
// rules is used exactly as given; the matcher never reorders it.
func New(rules []patternengine.Rule, sink CommandSink) *Matcher {
	return &Matcher{
		rules:   rules,
		history: history.New(),
		state:   pedalstate.New(),
		sink:    sink,
		softCap: DefaultSoftCap,
	}
}

// SetSoftCap overrides the default history soft cap.
func (m *Matcher) SetSoftCap(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.softCap = n
}

// Rules returns the configured rules, in declaration order. The slice is
// shared and must not be mutated by the caller.
func (m *Matcher) Rules() []patternengine.Rule {
	return m.rules
}

// HistoryEntry is a read-only copy of a history.Entry, safe to hold after
// Snapshot returns.
type HistoryEntry struct {
	Event pedalevent.ButtonEvent
	Used  uint32
}

// Snapshot captures the matcher's held buttons and retained history under a
// single read lock, for a status surface that must not race with Handle.
func (m *Matcher) Snapshot() (pressed map[pedalevent.Button]bool, hist []HistoryEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pressed = m.state.Snapshot()

	entries := m.history.Snapshot()
	hist = make([]HistoryEntry, len(entries))
	for i, e := range entries {
		hist[i] = HistoryEntry{Event: e.Event, Used: e.Used}
	}
	return pressed, hist
}

// firing pairs a matched rule with the history entries its sequence bound to,
// in sequence order, so Handle can increment their use counts on commit.
type firing struct {
	rule    patternengine.Rule
	entries []*history.Entry
}

// Handle runs the full ingest/scan/commit/release/trim cycle for one
// incoming event.
func (m *Matcher) Handle(ev pedalevent.ButtonEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Apply(ev)
	m.history.Append(ev)
	entries := m.history.Snapshot()

	var fired []firing
	for _, rule := range m.rules {
		eligible := (ev.Action == pedalevent.Down && rule.FiresOnPress()) ||
			(ev.Action == pedalevent.Up && rule.FiresOnRelease())
		if !eligible {
			continue
		}
		matched := tailAlignedInjection(rule, entries)
		if matched == nil {
			continue
		}
		if rule.TimeLimit != nil {
			earliest := matched[0].Event.Time
			latest := matched[len(matched)-1].Event.Time
			if latest.Sub(earliest) > *rule.TimeLimit {
				continue
			}
		}
		fired = append(fired, firing{rule: rule, entries: matched})
	}

	for _, f := range fired {
		for _, e := range f.entries {
			e.Used++
		}
		if err := m.sink.Dispatch(f.rule.Command); err != nil {
			log.Printf("command sink: %v", err)
		}
	}

	if ev.Action == pedalevent.Up {
		m.history.ReleasePop(ev.Button)
	}

	m.history.TrimOldest(m.softCap, m.state.IsPressed)
}

// tailAlignedInjection finds the greedy-from-tail injection of rule's
// sequence into entries, anchored on entries' last element (the event just
// ingested). It returns the matched entries in sequence order, or nil if no
// injection exists.
//
// The last pattern element must match the tail entry exactly; earlier
// elements are matched scanning right to left, each picking the rightmost
// still-available entry that accepts it. This prefers a fresher, unused
// entry over an older already-used one whenever both are eligible, and is
// the only greedy choice consistent with picking the latest possible earlier
// entries at every position.
func tailAlignedInjection(rule patternengine.Rule, entries []*history.Entry) []*history.Entry {
	n := len(rule.Sequence)
	if n == 0 || len(entries) == 0 {
		return nil
	}

	tail := entries[len(entries)-1]
	last := rule.Sequence[n-1]
	if !elementMatches(last, tail) {
		return nil
	}

	matched := make([]*history.Entry, n)
	matched[n-1] = tail

	pos := len(entries) - 2
	for i := n - 2; i >= 0; i-- {
		elem := rule.Sequence[i]
		found := false
		for j := pos; j >= 0; j-- {
			if elementMatches(elem, entries[j]) {
				matched[i] = entries[j]
				pos = j - 1
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	return matched
}

// elementMatches reports whether pattern element e accepts history entry h:
// same button, an accepted action, and an unexceeded use count.
func elementMatches(e patternengine.PatternElement, h *history.Entry) bool {
	if e.Button != h.Event.Button {
		return false
	}
	if !e.ActionFilter.Accepts(h.Event.Action) {
		return false
	}
	return e.AcceptsUse(h.Used)
}
