package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevError Severity = iota
	SevWarning
	SevInfo
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Wire is the lower-case form used in JSON.
func (s Severity) Wire() string {
	return strings.ToLower(s.String())
}

// ParseSeverity reads the checker's severity; anything unrecognised is an error.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "warning", "warn":
		return SevWarning
	case "info", "note":
		return SevInfo
	default:
		return SevError
	}
}
