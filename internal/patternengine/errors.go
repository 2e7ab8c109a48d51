package patternengine

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, matched with errors.Is by callers that want to
// distinguish a malformed file from one that merely failed to open.
var (
	// ErrConfigSyntax covers malformed lines and unknown token shapes.
	ErrConfigSyntax = errors.New("config syntax error")

	// ErrConfigSemantic covers well-formed lines that are invalid once
	// interpreted: duplicate rules, zero button numbers, bad max_use.
	ErrConfigSemantic = errors.New("config semantic error")
)

// lineError wraps a sentinel error with the offending file and line so the
// diagnostic reads "file:line: message".
type lineError struct {
	kind error
	file string
	line int
	msg  string
}

func (e *lineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.file, e.line, e.msg)
}

func (e *lineError) Unwrap() error {
	return e.kind
}

func syntaxErrorf(file string, line int, format string, args ...any) error {
	return &lineError{kind: ErrConfigSyntax, file: file, line: line, msg: fmt.Sprintf(format, args...)}
}

func semanticErrorf(file string, line int, format string, args ...any) error {
	return &lineError{kind: ErrConfigSemantic, file: file, line: line, msg: fmt.Sprintf(format, args...)}
}
