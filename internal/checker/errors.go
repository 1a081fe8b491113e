package checker

import (
	"errors"
	"fmt"
	"strings"
)

// ProcessError means the checker could not be run to a usable end: it did
// not start, timed out, or exited abnormally without a report on stdout.
type ProcessError struct {
	Op       string // "check" or "reduce"
	Err      error
	ExitCode int // -1 when the process never exited normally
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("checker %s: %v", e.Op, e.Err)
	if e.Stderr != "" {
		msg += ": " + firstLine(e.Stderr)
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// MalformedOutputError means the checker ran but stdout is not a report.
type MalformedOutputError struct {
	Op      string
	Err     error
	Snippet string // start of stdout, for logs
}

func (e *MalformedOutputError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("checker %s: malformed output: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("checker %s: malformed output: %v (stdout starts with %q)", e.Op, e.Err, e.Snippet)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// ErrEmptyReport is wrapped by MalformedOutputError when stdout is a JSON
// object with neither "result" nor "errors".
var ErrEmptyReport = errors.New("report has neither result nor errors")

// IsFailure reports whether err is one of the two checker failure kinds.
func IsFailure(err error) bool {
	var pe *ProcessError
	var me *MalformedOutputError
	return errors.As(err, &pe) || errors.As(err, &me)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func snippet(data []byte) string {
	const max = 64
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}
