package observ

import (
	"bytes"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.Measure("read", func() string { return "12 bytes" })
	idx := timer.Begin("check")
	timer.End(idx, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "read" || report.Phases[0].Note != "12 bytes" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Fatalf("total %v below phase %v", report.TotalMS, report.Phases[0].DurationMS)
	}

	var buf bytes.Buffer
	report.WriteSummary(&buf, "  ")
	out := buf.String()
	if !strings.Contains(out, "  read") || !strings.Contains(out, "(12 bytes)") || !strings.Contains(out, "  total") {
		t.Fatalf("summary:\n%s", out)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report = %+v", r)
	}
}
