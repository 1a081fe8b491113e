package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/source"
	"nuprlnav/internal/version"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    source.Position
		wantErr bool
	}{
		{"1:1", source.Position{}, false},
		{"12:7", source.Position{Line: 11, Col: 6}, false},
		{" 3 ", source.Position{Line: 2}, false},
		{"0:1", source.Position{}, true},
		{"2:0", source.Position{}, true},
		{"a:b", source.Position{}, true},
		{"-1:2", source.Position{}, true},
	}
	for _, tt := range tests {
		got, err := parsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePosition(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePosition(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestResolveUI(t *testing.T) {
	tests := []struct {
		in          string
		interactive bool
		want        bool
	}{
		{"", true, true},
		{"auto", false, false},
		{"ON", false, true},
		{"off", true, false},
	}
	for _, tt := range tests {
		got, err := resolveUI(tt.in, func() bool { return tt.interactive })
		if err != nil || got != tt.want {
			t.Errorf("resolveUI(%q, %v) = %v, %v", tt.in, tt.interactive, got, err)
		}
	}
	if _, err := resolveUI("sometimes", nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := version.Info{Version: "1.2.3", GitCommit: "abc"}
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["tool"] != "nuprlnav" || payload["version"] != "1.2.3" || payload["git_commit"] != "abc" {
		t.Fatalf("payload = %v", payload)
	}
	if _, ok := payload["build_date"]; ok {
		t.Fatal("build_date emitted without --date")
	}
}

// fakeChecker writes a shell script that prints a report for path.
func fakeChecker(t *testing.T, dir, docPath string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	report := `{"result":{"sources":{"0":{"path":"` + docPath + `"}},"lib":{"objects":{"t":{"id":1,"kind":{"tag":"thm","proof":[` +
		`{"node_id":0,"goal":{"hys":[],"concl":"P"},"extract":null,"children":null,"conflict":false}]}}}},` +
		`"meta":{"1":{"span":{"source_id":0,"visual":{"start":{"line":0,"col":0},"end":{"line":2,"col":0}}},` +
		`"kind":{"thm":{"root_id":0,"nodes":{"0":{"span":{"source_id":0,"visual":{"start":{"line":1,"col":0},"end":{"line":2,"col":0}}}}}}}}}},` +
		`"errors":[{"message":"unsolved goal","span":{"source_id":0,"visual":{"start":{"line":1,"col":2},"end":{"line":1,"col":6}}}}]}`
	script := filepath.Join(dir, "nuprl")
	body := "#!/bin/sh\ncat >/dev/null\ncat <<'EOF'\n" + report + "\nEOF\nexit 1\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return script
}

func TestCheckOneReportsDiagnosticAndHoles(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.nup")
	if err := os.WriteFile(doc, []byte("theorem t : P\n  by ?\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	e := &env{runner: checker.NewProcessRunner(fakeChecker(t, dir, doc), 10*time.Second)}

	report, err := checkOne(context.Background(), e, doc, checkOptions{strict: true, timings: true})
	if err != nil {
		t.Fatalf("checkOne: %v", err)
	}
	if report.Holes == nil || *report.Holes != 1 {
		t.Fatalf("holes = %v", report.Holes)
	}
	want := "Error in `" + doc + "` at line 2:3 – 2:7: unsolved goal"
	if report.Diagnostic != want {
		t.Fatalf("diagnostic = %q, want %q", report.Diagnostic, want)
	}
	if report.Failure != "" || report.Violation != "" {
		t.Fatalf("report = %+v", report)
	}
	if report.Timings == nil || len(report.Timings.Phases) != 3 || report.Timings.Phases[0].Name != "check" {
		t.Fatalf("timings = %+v", report.Timings)
	}

	var buf bytes.Buffer
	printCheckReports(&buf, []checkReport{report})
	if !strings.Contains(buf.String(), "1 hole") {
		t.Fatalf("pretty output:\n%s", buf.String())
	}
}

func TestCheckOneMissingChecker(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "a.nup")
	if err := os.WriteFile(doc, nil, 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	e := &env{runner: checker.NewProcessRunner(filepath.Join(dir, "missing"), time.Second)}
	report, err := checkOne(context.Background(), e, doc, checkOptions{})
	if err != nil {
		t.Fatalf("checkOne: %v", err)
	}
	if report.Failure == "" || report.Holes != nil || !report.failed() || report.Timings != nil {
		t.Fatalf("report = %+v", report)
	}
}

func TestPrintHolesShowsFirstSourceLine(t *testing.T) {
	var buf bytes.Buffer
	printHoles(&buf, "a.nup", []holeEntry{
		{Line: 2, Col: 3, Object: "t", Goal: "P", Source: "by auto\n  then ?"},
		{Line: 5, Col: 1, Object: "u", Goal: "Q"},
	})
	want := "a.nup:2:3: t ⊢ P\n    by auto\na.nup:5:1: u ⊢ Q\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
