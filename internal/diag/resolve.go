package diag

import (
	"nuprlnav/internal/source"
)

// Report is the user-facing rendering of one diagnostic.
type Report struct {
	Message string
	Path    string
	Span    source.Span

	// HasLocation is false when the diagnostic had no span or its source
	// is unknown.
	HasLocation bool
}

// String renders "Error in `path` at line L:C – L:C: message", or
// "Error: message" without a location.
func (r Report) String() string {
	if !r.HasLocation {
		return "Error: " + r.Message
	}
	return "Error in `" + r.Path + "` at line " + r.Span.Human() + ": " + r.Message
}

// First formats the first diagnostic. It reports false for an empty list.
func First(sources map[source.SourceID]source.Source, diags []Diagnostic) (Report, bool) {
	if len(diags) == 0 {
		return Report{}, false
	}
	d := diags[0]
	r := Report{Message: d.Message}
	if d.Span == nil {
		return r, true
	}
	src, ok := sources[d.Span.Source]
	if !ok {
		return r, true
	}
	r.Path = src.Path
	r.Span = *d.Span
	r.HasLocation = true
	return r, true
}
