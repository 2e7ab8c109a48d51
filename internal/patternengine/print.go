package patternengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/larsks/airdancer/internal/events"
)

// FormatConfig renders a Config back into the line-oriented grammar. Parsing
// the result reproduces an identical compiled Config (property 6): desugared
// bare-N rules print as "N" again rather than as the expanded "Nv,N^" pair.
func FormatConfig(cfg *Config) string {
	var b strings.Builder

	for _, dev := range cfg.Devices {
		b.WriteString(FormatDeviceBinding(dev))
		b.WriteByte('\n')
	}
	for _, rule := range cfg.Rules {
		b.WriteString(FormatRule(rule))
		b.WriteByte('\n')
	}

	return b.String()
}

// FormatDeviceBinding renders one "dev:" line.
func FormatDeviceBinding(dev DeviceBinding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dev: %s", dev.Path)

	if len(dev.Codes) > 0 {
		specs := make([]string, len(dev.Codes))
		for i, c := range dev.Codes {
			specs[i] = FormatEventCodeSpec(c)
		}
		b.WriteByte(' ')
		b.WriteString(strings.Join(specs, ", "))
	}

	if dev.Shared {
		b.WriteString(" [shared]")
	}

	return b.String()
}

// FormatEventCodeSpec renders one device-line event code token in its
// canonical "TYPE/CODE[=VALUE]" form, preferring symbolic names where known.
func FormatEventCodeSpec(c EventCodeSpec) string {
	typeName := events.GetEventTypeCode(c.Type)

	var codeName string
	switch c.Type {
	case events.EV_KEY:
		codeName = events.GetKeyName(c.Code)
	case events.EV_REL:
		codeName = events.GetRelName(c.Code)
	case events.EV_ABS:
		codeName = events.GetAbsName(c.Code)
	default:
		codeName = fmt.Sprintf("%d", c.Code)
	}

	if c.Value == nil {
		return fmt.Sprintf("%s/%s", typeName, codeName)
	}
	return fmt.Sprintf("%s/%s=%d", typeName, codeName, *c.Value)
}

// FormatRule renders one compiled Rule as a "pattern: command" line.
func FormatRule(r Rule) string {
	var b strings.Builder
	b.WriteString(FormatPattern(r))

	b.WriteString(": ")
	b.WriteString(r.Command)

	return b.String()
}

// FormatPattern renders just the sequence and optional time limit of a Rule
// — the part of FormatRule before the "command" separator — for callers
// (the status surface) that report the pattern and command as separate
// fields.
func FormatPattern(r Rule) string {
	var b strings.Builder
	b.WriteString(formatSequence(r.Sequence))

	if r.TimeLimit != nil {
		secs := r.TimeLimit.Seconds()
		fmt.Fprintf(&b, " < %s", strconv.FormatFloat(secs, 'g', -1, 64))
	}

	return b.String()
}

func formatSequence(seq []PatternElement) string {
	if isDesugaredBare(seq) {
		return fmt.Sprintf("%d", seq[0].Button)
	}

	parts := make([]string, len(seq))
	for i, e := range seq {
		parts[i] = fmt.Sprintf("%d%s", e.Button, e.ActionFilter)
	}
	return strings.Join(parts, ",")
}

// isDesugaredBare reports whether seq is exactly the press/release pair the
// parser produces for a whole-pattern bare integer token.
func isDesugaredBare(seq []PatternElement) bool {
	if len(seq) != 2 {
		return false
	}
	down, up := seq[0], seq[1]
	if down.Button != up.Button {
		return false
	}
	if down.ActionFilter != DownOnly || up.ActionFilter != UpOnly {
		return false
	}
	if down.MaxUse == nil || up.MaxUse == nil {
		return false
	}
	return *down.MaxUse == 0 && *up.MaxUse == 0
}
