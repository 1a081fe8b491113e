package checker

import (
	"errors"
	"os"
	"testing"
)

func TestDecodeCheckOutputAdoptsPartialResult(t *testing.T) {
	data, err := os.ReadFile("testdata/report.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	out, err := DecodeCheckOutput(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Library == nil || len(out.Library.Objects) != 1 {
		t.Fatalf("library = %+v", out.Library)
	}
	r, ok := out.FirstError()
	if !ok {
		t.Fatal("expected a diagnostic")
	}
	if r.String() != "Error in `/w/a.nup` at line 2:3 – 2:7: unsolved goal" {
		t.Fatalf("first error = %q", r.String())
	}
}

func TestDecodeCheckOutputErrorsOnly(t *testing.T) {
	out, err := DecodeCheckOutput([]byte(`{"errors":[{"message":"parse error","span":{"source_id":0,"visual":{"start":{"line":0,"col":0},"end":{"line":0,"col":1}}}}],"sources":{"0":{"path":"/w/a.nup"}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Library != nil {
		t.Fatal("no result means no library")
	}
	r, _ := out.FirstError()
	if !r.HasLocation || r.Path != "/w/a.nup" {
		t.Fatalf("top-level sources should locate the error: %+v", r)
	}
}

func TestDecodeCheckOutputDropsRepeatedErrors(t *testing.T) {
	out, err := DecodeCheckOutput([]byte(`{"errors":[{"message":"m","span":null},{"message":"m","span":null},{"message":"n","span":null}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Errors) != 2 || out.Errors[0].Message != "m" || out.Errors[1].Message != "n" {
		t.Fatalf("errors = %+v", out.Errors)
	}
}

func TestDecodeCheckOutputMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "panic: index out of range"},
		{"array", "[]"},
		{"truncated", `{"result":{"lib":`},
		{"empty object", `{}`},
		{"result without lib", `{"result":{"sources":{}}}`},
		{"bad objects", `{"result":{"lib":{"objects":[1]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCheckOutput([]byte(tt.data))
			var me *MalformedOutputError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want MalformedOutputError", err)
			}
			if !IsFailure(err) {
				t.Fatal("malformed output is a checker failure")
			}
		})
	}
}

func TestDecodeReduceOutput(t *testing.T) {
	out, err := DecodeReduceOutput([]byte(`{"result":{"original":"(λx.x) y","reduced":"y"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Original.Text() != "(λx.x) y" || out.Reduced.Text() != "y" {
		t.Fatalf("reduce = %+v", out)
	}
	out, err = DecodeReduceOutput([]byte(`{"errors":[{"message":"unbound y","span":null}]}`))
	if err != nil {
		t.Fatalf("decode errors-only: %v", err)
	}
	if out.Reduced != nil || len(out.Errors) != 1 {
		t.Fatalf("reduce errors = %+v", out)
	}
}

func TestReduceArgs(t *testing.T) {
	two := 2
	zero := 0
	tests := []struct {
		name string
		req  ReduceRequest
		want string
	}{
		{"normal form", ReduceRequest{}, "reduce"},
		{"steps", ReduceRequest{MaxSteps: &two}, "reduce -s 2"},
		{"zero steps kept", ReduceRequest{MaxSteps: &zero}, "reduce -s 0"},
		{"library", ReduceRequest{WorkDir: "/w"}, "reduce -l /w"},
		{"library and file", ReduceRequest{WorkDir: "/w", File: "/w/a.nup"}, "reduce -l /w -f /w/a.nup"},
		{"file needs library", ReduceRequest{File: "/w/a.nup"}, "reduce"},
	}
	for _, tt := range tests {
		got := joinArgs(tt.req.Args())
		if got != tt.want {
			t.Errorf("%s: args = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
