package patternengine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/larsks/airdancer/internal/events"
	"github.com/larsks/airdancer/internal/pedalevent"
)

// Parse reads and compiles a configuration file from disk. Syntax and
// semantic errors abort with a diagnostic referencing the offending line;
// partial configs are never returned.
func Parse(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return ParseReader(path, f)
}

// ParseReader compiles a configuration from r. The file name is used only
// for diagnostics, which lets tests feed in-memory readers.
func ParseReader(file string, r io.Reader) (*Config, error) {
	cfg := &Config{}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "dev:"); ok {
			dev, err := parseDeviceLine(file, lineNum, strings.TrimSpace(rest))
			if err != nil {
				return nil, err
			}
			cfg.Devices = append(cfg.Devices, dev)
			continue
		}

		rule, err := parseRuleLine(file, lineNum, line)
		if err != nil {
			return nil, err
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	if err := checkDuplicateRules(file, cfg.Rules); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stripComment cuts a line at the first '#' that isn't inside a double-quoted
// region.
func stripComment(s string) string {
	inQuote := false
	for i, r := range s {
		if r == '"' {
			inQuote = !inQuote
		} else if r == '#' && !inQuote {
			return s[:i]
		}
	}
	return s
}

// findFirstUnquotedColon returns the byte index of the first ':' outside a
// double-quoted region, or -1.
func findFirstUnquotedColon(s string) int {
	inQuote := false
	for i, r := range s {
		if r == '"' {
			inQuote = !inQuote
		} else if r == ':' && !inQuote {
			return i
		}
	}
	return -1
}

func parseDeviceLine(file string, lineNum int, rest string) (DeviceBinding, error) {
	if rest == "" {
		return DeviceBinding{}, syntaxErrorf(file, lineNum, "device line has no path")
	}

	var path, tail string
	if idx := strings.IndexFunc(rest, unicode.IsSpace); idx < 0 {
		path = rest
	} else {
		path = rest[:idx]
		tail = strings.TrimSpace(rest[idx:])
	}
	if path == "" {
		return DeviceBinding{}, syntaxErrorf(file, lineNum, "device line has no path")
	}

	shared := false
	if strings.HasSuffix(tail, "[shared]") {
		shared = true
		tail = strings.TrimSpace(strings.TrimSuffix(tail, "[shared]"))
	}

	var codes []EventCodeSpec
	if tail != "" {
		for _, tok := range strings.Split(tail, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			spec, err := parseEventCodeSpec(file, lineNum, tok)
			if err != nil {
				return DeviceBinding{}, err
			}
			codes = append(codes, spec)
		}
	}

	return DeviceBinding{Path: path, Codes: codes, Shared: shared}, nil
}

func parseEventCodeSpec(file string, lineNum int, tok string) (EventCodeSpec, error) {
	if !strings.Contains(tok, "/") {
		code, err := parseCodeForType(events.EV_KEY, tok)
		if err != nil {
			return EventCodeSpec{}, syntaxErrorf(file, lineNum, "%v", err)
		}
		return EventCodeSpec{Type: events.EV_KEY, Code: code}, nil
	}

	parts := strings.SplitN(tok, "/", 2)
	typeTok := strings.TrimSpace(parts[0])

	var typ events.EventType
	if n, err := strconv.ParseUint(typeTok, 10, 16); err == nil {
		typ = events.EventType(n)
	} else if t, ok := events.GetEventTypeName(strings.ToUpper(typeTok)); ok {
		typ = t
	} else {
		return EventCodeSpec{}, syntaxErrorf(file, lineNum, "unknown event type: %s", typeTok)
	}

	codeStr := parts[1]
	var value *int32
	if i := strings.Index(codeStr, "="); i >= 0 {
		valStr := strings.TrimSpace(codeStr[i+1:])
		codeStr = codeStr[:i]

		v, err := strconv.ParseInt(valStr, 10, 32)
		if err != nil {
			return EventCodeSpec{}, syntaxErrorf(file, lineNum, "invalid event value %q: %v", valStr, err)
		}
		v32 := int32(v)
		value = &v32
	}

	code, err := parseCodeForType(typ, strings.TrimSpace(codeStr))
	if err != nil {
		return EventCodeSpec{}, syntaxErrorf(file, lineNum, "%v", err)
	}

	return EventCodeSpec{
		Type:        typ,
		Code:        code,
		Value:       value,
		AutoRelease: typ == events.EV_REL,
	}, nil
}

func parseCodeForType(typ events.EventType, s string) (uint16, error) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return uint16(n), nil
	}

	switch typ {
	case events.EV_KEY:
		if c, ok := events.GetKeyCode(s); ok {
			return c, nil
		}
	case events.EV_REL:
		if c, ok := events.GetRelCode(s); ok {
			return c, nil
		}
	case events.EV_ABS:
		if c, ok := events.GetAbsCode(s); ok {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown event code: %s", s)
}

func parseRuleLine(file string, lineNum int, line string) (Rule, error) {
	idx := findFirstUnquotedColon(line)
	if idx < 0 {
		return Rule{}, syntaxErrorf(file, lineNum, "missing ':' separating pattern from command")
	}

	patternPart := strings.TrimSpace(line[:idx])
	command := strings.TrimLeft(line[idx+1:], " \t")

	if patternPart == "" {
		return Rule{}, syntaxErrorf(file, lineNum, "empty pattern")
	}

	timeLimitStr := ""
	if ltIdx := strings.IndexByte(patternPart, '<'); ltIdx >= 0 {
		timeLimitStr = strings.TrimSpace(patternPart[ltIdx+1:])
		patternPart = strings.TrimSpace(patternPart[:ltIdx])
	}

	tokens := strings.Split(patternPart, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	var seq []PatternElement
	if len(tokens) == 1 {
		btn, kind, err := parseToken(tokens[0])
		if err != nil {
			return Rule{}, syntaxErrorf(file, lineNum, "%v", err)
		}
		if btn <= 0 {
			return Rule{}, semanticErrorf(file, lineNum, "button number must be positive: %d", btn)
		}

		if kind == 'b' {
			// A pattern that is the whole bare integer desugars into a
			// press/release pair that can only match an entry that has
			// never participated in another rule.
			zero := uint32(0)
			seq = []PatternElement{
				{Button: pedalevent.Button(btn), ActionFilter: DownOnly, MaxUse: &zero},
				{Button: pedalevent.Button(btn), ActionFilter: UpOnly, MaxUse: &zero},
			}
		} else {
			seq = []PatternElement{elementFor(btn, kind)}
		}
	} else {
		for _, tok := range tokens {
			if tok == "" {
				return Rule{}, syntaxErrorf(file, lineNum, "empty pattern token")
			}
			btn, kind, err := parseToken(tok)
			if err != nil {
				return Rule{}, syntaxErrorf(file, lineNum, "%v", err)
			}
			if btn <= 0 {
				return Rule{}, semanticErrorf(file, lineNum, "button number must be positive: %d", btn)
			}
			seq = append(seq, elementFor(btn, kind))
		}
	}

	rule := Rule{Sequence: seq, Command: command, SourceLine: lineNum}

	if timeLimitStr != "" {
		secs, err := strconv.ParseFloat(timeLimitStr, 64)
		if err != nil {
			return Rule{}, syntaxErrorf(file, lineNum, "invalid time limit %q: %v", timeLimitStr, err)
		}
		if secs <= 0 {
			return Rule{}, semanticErrorf(file, lineNum, "time limit must be positive: %v", secs)
		}
		d := time.Duration(secs * float64(time.Second))
		rule.TimeLimit = &d
	}

	return rule, nil
}

// elementFor builds the PatternElement for a non-desugared token; only the
// whole-pattern bare-integer form carries a MaxUse cap (see parseRuleLine).
func elementFor(btn int, kind byte) PatternElement {
	switch kind {
	case 'v':
		return PatternElement{Button: pedalevent.Button(btn), ActionFilter: DownOnly}
	case '^':
		return PatternElement{Button: pedalevent.Button(btn), ActionFilter: UpOnly}
	default:
		return PatternElement{Button: pedalevent.Button(btn), ActionFilter: Any}
	}
}

// parseToken splits a pattern token into its button number and kind: 'v'
// (DownOnly), '^' (UpOnly), or 'b' (bare).
func parseToken(tok string) (int, byte, error) {
	if tok == "" {
		return 0, 0, fmt.Errorf("empty pattern token")
	}

	kind := byte('b')
	numPart := tok
	switch {
	case strings.HasSuffix(tok, "^"):
		kind = '^'
		numPart = strings.TrimSuffix(tok, "^")
	case strings.HasSuffix(tok, "v") || strings.HasSuffix(tok, "V"):
		kind = 'v'
		numPart = tok[:len(tok)-1]
	}

	n, err := strconv.Atoi(strings.TrimSpace(numPart))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pattern token %q", tok)
	}

	return n, kind, nil
}

func checkDuplicateRules(file string, rules []Rule) error {
	for i := 1; i < len(rules); i++ {
		for j := 0; j < i; j++ {
			if rulesEqual(rules[i], rules[j]) {
				return semanticErrorf(file, rules[i].SourceLine, "duplicate rule (identical to line %d)", rules[j].SourceLine)
			}
		}
	}
	return nil
}

func rulesEqual(a, b Rule) bool {
	if a.Command != b.Command {
		return false
	}
	if (a.TimeLimit == nil) != (b.TimeLimit == nil) {
		return false
	}
	if a.TimeLimit != nil && *a.TimeLimit != *b.TimeLimit {
		return false
	}
	if len(a.Sequence) != len(b.Sequence) {
		return false
	}
	for i := range a.Sequence {
		if !elementsEqual(a.Sequence[i], b.Sequence[i]) {
			return false
		}
	}
	return true
}

func elementsEqual(a, b PatternElement) bool {
	if a.Button != b.Button || a.ActionFilter != b.ActionFilter {
		return false
	}
	if (a.MaxUse == nil) != (b.MaxUse == nil) {
		return false
	}
	return a.MaxUse == nil || *a.MaxUse == *b.MaxUse
}
