package diag

import (
	"encoding/json"

	"nuprlnav/internal/source"
)

// Diagnostic is one checker complaint. Span is nil when the checker could
// not attribute the problem to a location.
type Diagnostic struct {
	Severity Severity
	Message  string
	Span     *source.Span
}

type wireDiagnostic struct {
	Message  string       `json:"message"`
	Span     *source.Span `json:"span"`
	Severity string       `json:"severity,omitempty"`
}

// UnmarshalJSON reads {message, span, severity?}. A missing severity means
// an error.
func (d *Diagnostic) UnmarshalJSON(data []byte) error {
	var w wireDiagnostic
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Diagnostic{Severity: ParseSeverity(w.Severity), Message: w.Message, Span: w.Span}
	return nil
}

// MarshalJSON writes the same layout back.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireDiagnostic{Message: d.Message, Span: d.Span, Severity: d.Severity.Wire()})
}
