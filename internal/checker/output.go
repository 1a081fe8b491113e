package checker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"nuprlnav/internal/diag"
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// CheckOutput is one decoded "check" report. Library is nil when the
// report carried no result. Sources is always usable for locating Errors.
type CheckOutput struct {
	Library *proof.Library
	Sources map[source.SourceID]source.Source
	Errors  []diag.Diagnostic
	Raw     []byte
}

// FirstError formats the first diagnostic of the report.
func (o *CheckOutput) FirstError() (diag.Report, bool) {
	if o == nil {
		return diag.Report{}, false
	}
	return diag.First(o.Sources, o.Errors)
}

// ReduceOutput is one decoded "reduce" report.
type ReduceOutput struct {
	Original *proof.Term
	Reduced  *proof.Term
	Errors   []diag.Diagnostic
}

type wireReport struct {
	Result  json.RawMessage   `json:"result"`
	Errors  []diag.Diagnostic `json:"errors"`
	Sources json.RawMessage   `json:"sources"`
}

type wireReduce struct {
	Original *proof.Term `json:"original"`
	Reduced  *proof.Term `json:"reduced"`
}

func decodeReport(op string, data []byte) (*wireReport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &MalformedOutputError{Op: op, Err: errors.New("stdout is not a JSON object"), Snippet: snippet(data)}
	}
	var w wireReport
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, &MalformedOutputError{Op: op, Err: err, Snippet: snippet(data)}
	}
	if isNull(w.Result) && w.Errors == nil {
		return nil, &MalformedOutputError{Op: op, Err: ErrEmptyReport, Snippet: snippet(data)}
	}
	// a checker that reports the same failure through several paths
	// repeats it verbatim
	bag := diag.FromSlice(w.Errors)
	bag.Dedup()
	w.Errors = bag.Items()
	return &w, nil
}

// DecodeCheckOutput parses a "check" report. A result that is present but
// unreadable makes the whole report malformed: a partial library is never
// adopted from a broken result.
func DecodeCheckOutput(data []byte) (*CheckOutput, error) {
	w, err := decodeReport("check", data)
	if err != nil {
		return nil, err
	}
	out := &CheckOutput{Errors: w.Errors, Raw: data}
	if !isNull(w.Result) {
		lib, err := proof.Decode(w.Result, w.Sources)
		if err != nil {
			return nil, &MalformedOutputError{Op: "check", Err: fmt.Errorf("result: %w", err), Snippet: snippet(data)}
		}
		out.Library = lib
		out.Sources = lib.Sources
		return out, nil
	}
	// no result: the sources member, if any, still locates the errors
	sources, err := proof.DecodeSources(w.Sources)
	if err != nil {
		return nil, &MalformedOutputError{Op: "check", Err: err, Snippet: snippet(data)}
	}
	out.Sources = sources
	return out, nil
}

// DecodeReduceOutput parses a "reduce" report.
func DecodeReduceOutput(data []byte) (*ReduceOutput, error) {
	w, err := decodeReport("reduce", data)
	if err != nil {
		return nil, err
	}
	out := &ReduceOutput{Errors: w.Errors}
	if !isNull(w.Result) {
		var r wireReduce
		if err := json.Unmarshal(w.Result, &r); err != nil {
			return nil, &MalformedOutputError{Op: "reduce", Err: fmt.Errorf("result: %w", err), Snippet: snippet(data)}
		}
		out.Original, out.Reduced = r.Original, r.Reduced
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
