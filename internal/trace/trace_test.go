package trace

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelOff, false},
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelDebug, false},
		{"loud", LevelOff, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if !LevelPhase.Allows(ScopeCheck) {
		t.Fatal("phase level should emit check scope")
	}
	if LevelPhase.Allows(ScopeEvent) {
		t.Fatal("phase level should not emit event scope")
	}
	if LevelDetail.Allows(ScopeQuery) {
		t.Fatal("detail level should not emit query scope")
	}
	failed := &Event{Scope: ScopeQuery, Extra: map[string]string{"error": "boom"}}
	if !LevelError.Keeps(failed) {
		t.Fatal("error level should keep failed events")
	}
	if LevelError.Keeps(&Event{Scope: ScopeSession}) {
		t.Fatal("error level should drop plain events")
	}
}

func TestStreamTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := Start(ctx, ScopeCheck, "check")
	_, inner := Start(ctx, ScopeQuery, "holes")
	inner.WithExtra("count", "3").End("")
	outer.End("ok")

	out := buf.String()
	for _, want := range []string{"→ check", "→ holes", "← holes {count=3}", "← check (ok)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestFailedSpanSurvivesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)
	_, failed := Start(ctx, ScopeCheck, "check")
	failed.Fail(errors.New("exit status 2")).End("")
	_, ok := Start(ctx, ScopeCheck, "check")
	ok.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"error":"exit status 2"`) {
		t.Fatalf("unexpected line: %s", lines[0])
	}
}

func TestRingTracerWrapsAround(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeEvent, Name: name})
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr != Nop {
		t.Fatalf("New(off) = %T, want Nop", tr)
	}
	ctx, sp := Start(WithTracer(context.Background(), tr), ScopeSession, "serve")
	if sp.WithExtra("k", "v").End("") != 0 || FromContext(ctx) != Nop {
		t.Fatal("disabled span recorded something")
	}
}

func TestNewBothExposesRing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, OutputPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer tr.Close()
	if FindRing(tr) == nil {
		t.Fatal("expected ring tracer inside fan-out")
	}
}

func TestPointCarriesParent(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx, sp := Start(WithTracer(context.Background(), ring), ScopeEvent, "session.open")
	Point(ctx, ScopeCheck, "snapcache.hit", "/w/a.nup")
	sp.End("")

	got := ring.Snapshot()
	if len(got) != 3 {
		t.Fatalf("snapshot = %+v", got)
	}
	if got[1].Kind != KindPoint || got[1].ParentID != got[0].SpanID || got[0].SpanID == 0 {
		t.Fatalf("point = %+v, span = %+v", got[1], got[0])
	}
	if got[0].Seq >= got[1].Seq || got[1].Seq >= got[2].Seq {
		t.Fatalf("sequence not increasing: %d %d %d", got[0].Seq, got[1].Seq, got[2].Seq)
	}
}

func TestParseFormatAndMode(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if formatFor(FormatAuto, "/tmp/t.jsonl") != FormatNDJSON || formatFor(FormatAuto, "-") != FormatText {
		t.Fatal("auto format not resolved by extension")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatal("expected error for disk")
	}
}
