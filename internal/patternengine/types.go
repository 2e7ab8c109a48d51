// Package patternengine implements the grammar and parser for the
// pattern/command configuration language: it turns a configuration file into
// an ordered list of compiled Rules plus a list of DeviceBindings. Rules and
// DeviceBindings are immutable once parsed.
package patternengine

import (
	"time"

	"github.com/larsks/airdancer/internal/events"
	"github.com/larsks/airdancer/internal/pedalevent"
)

// ActionFilter restricts which polarity of a button event a PatternElement
// accepts.
type ActionFilter int

const (
	// DownOnly accepts only a Down (press) event.
	DownOnly ActionFilter = iota
	// UpOnly accepts only an Up (release) event.
	UpOnly
	// Any accepts either polarity.
	Any
)

// Accepts reports whether the filter admits the given action.
func (f ActionFilter) Accepts(a pedalevent.Action) bool {
	switch f {
	case DownOnly:
		return a == pedalevent.Down
	case UpOnly:
		return a == pedalevent.Up
	default:
		return true
	}
}

func (f ActionFilter) String() string {
	switch f {
	case DownOnly:
		return "v"
	case UpOnly:
		return "^"
	default:
		return ""
	}
}

// PatternElement is one position within a Rule's sequence.
type PatternElement struct {
	Button       pedalevent.Button
	ActionFilter ActionFilter

	// MaxUse caps how many times the HistoryEntry matched by this element
	// may have previously participated in other rule matches. nil means no
	// cap; a pointer to 0 means "only if never used".
	MaxUse *uint32
}

// AcceptsUse reports whether a HistoryEntry with the given prior use count
// still satisfies this element's MaxUse cap.
func (e PatternElement) AcceptsUse(used uint32) bool {
	return e.MaxUse == nil || used <= *e.MaxUse
}

// Rule is one compiled (sequence, time_limit?, command) entry.
type Rule struct {
	Sequence   []PatternElement
	TimeLimit  *time.Duration
	Command    string
	SourceLine int
}

// FiresOnPress reports whether the rule's last element requires a Down to be
// tail-aligned.
func (r Rule) FiresOnPress() bool {
	return r.lastFilter() == DownOnly
}

// FiresOnRelease reports whether the rule's last element requires an Up to
// be tail-aligned. An Any last element closes on the Up half of its button's
// cycle: the Down side already anchored earlier elements, so treating the
// press as a second, independent trigger would double-fire the same
// physical gesture.
func (r Rule) FiresOnRelease() bool {
	last := r.lastFilter()
	return last == UpOnly || last == Any
}

func (r Rule) lastFilter() ActionFilter {
	if len(r.Sequence) == 0 {
		return Any
	}
	return r.Sequence[len(r.Sequence)-1].ActionFilter
}

// EventCodeSpec identifies one evdev (type, code[, value]) triple a
// DeviceBinding listens for. A bare key code desugars to {Type: EV_KEY}.
type EventCodeSpec struct {
	Type events.EventType
	Code uint16

	// Value, when set, restricts EV_REL and EV_ABS matching to that signed
	// value (for EV_REL specs the sign picks a direction). EV_KEY specs
	// ignore it. Nil on an EV_REL spec accepts any non-zero value; an EV_ABS
	// spec with a nil Value never fires.
	Value *int32

	// AutoRelease is true for relative-axis (EV_REL) specs: the device
	// layer synthesizes a Down immediately followed by an Up rather than
	// waiting for a real release event.
	AutoRelease bool
}

// DeviceBinding is one "dev:" line: a device path, the ordered list of event
// codes it contributes buttons for, and whether the device should be opened
// without an exclusive grab.
type DeviceBinding struct {
	Path   string
	Codes  []EventCodeSpec
	Shared bool
}

// Config is the result of parsing one configuration file: a device list and
// an ordered rule list. No reordering is ever performed; declaration order
// is the tie-break the matcher relies on.
type Config struct {
	Devices []DeviceBinding
	Rules   []Rule
}
