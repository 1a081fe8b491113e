package source

import (
	"encoding/json"
	"slices"
	"testing"
)

func pos(line, col uint32) Position { return Position{Line: line, Col: col} }

func span(src SourceID, sl, sc, el, ec uint32) Span {
	return Span{Source: src, Start: pos(sl, sc), End: pos(el, ec)}
}

func TestContainsIsInclusive(t *testing.T) {
	s := span(0, 2, 4, 5, 1)
	tests := []struct {
		name string
		p    Position
		want bool
	}{
		{"at start", pos(2, 4), true},
		{"at end", pos(5, 1), true},
		{"inside first line", pos(2, 10), true},
		{"middle line any column", pos(3, 0), true},
		{"before start column", pos(2, 3), false},
		{"after end column", pos(5, 2), false},
		{"line before", pos(1, 99), false},
		{"line after", pos(6, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(s, tt.p); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", s, tt.p, got, tt.want)
			}
		})
	}
}

func TestContainsZeroWidth(t *testing.T) {
	s := span(0, 3, 3, 3, 3)
	if !Contains(s, pos(3, 3)) {
		t.Fatal("zero-width span should contain its own position")
	}
	if Contains(s, pos(3, 4)) {
		t.Fatal("zero-width span should not contain the next column")
	}
}

func TestIsBeforeIsStrict(t *testing.T) {
	tests := []struct {
		p, anchor Position
		want      bool
	}{
		{pos(1, 0), pos(1, 0), false},
		{pos(1, 0), pos(1, 1), true},
		{pos(0, 99), pos(1, 0), true},
		{pos(2, 0), pos(1, 5), false},
	}
	for _, tt := range tests {
		if got := IsBefore(tt.p, tt.anchor); got != tt.want {
			t.Errorf("IsBefore(%v, %v) = %v, want %v", tt.p, tt.anchor, got, tt.want)
		}
	}
}

func TestCompareOrdersByStartThenEnd(t *testing.T) {
	a := span(0, 1, 0, 1, 5)
	b := span(0, 1, 0, 2, 0)
	c := span(0, 0, 9, 9, 9)
	if Compare(a, b) >= 0 {
		t.Fatal("equal start should order by end")
	}
	if Compare(c, a) >= 0 {
		t.Fatal("earlier start should sort first")
	}
	if Compare(a, a) != 0 {
		t.Fatal("identical spans should compare equal")
	}
}

func TestCompareStableForTies(t *testing.T) {
	first := Span{Source: 1, Start: pos(4, 0), End: pos(4, 0)}
	second := Span{Source: 2, Start: pos(4, 0), End: pos(4, 0)}
	list := []Span{first, second, span(0, 0, 0, 0, 0)}
	slices.SortStableFunc(list, Compare)
	if list[1].Source != 1 || list[2].Source != 2 {
		t.Fatalf("ties should keep input order, got %+v", list)
	}
}

func TestEncloses(t *testing.T) {
	outer := span(0, 0, 0, 10, 0)
	if !Encloses(outer, span(0, 3, 0, 5, 0)) {
		t.Fatal("expected nested span to be enclosed")
	}
	if Encloses(outer, span(1, 3, 0, 5, 0)) {
		t.Fatal("spans on other sources are never enclosed")
	}
	if Encloses(span(0, 3, 0, 5, 0), outer) {
		t.Fatal("outer span is not enclosed by inner")
	}
}

func TestHumanIsOneBased(t *testing.T) {
	if got := span(0, 4, 2, 4, 10).Human(); got != "5:3 – 5:11" {
		t.Fatalf("Human() = %q", got)
	}
}

func TestSpanJSONWireShape(t *testing.T) {
	data := []byte(`{"source_id":2,"visual":{"start":{"line":3,"col":1},"end":{"line":5,"col":0}},"range":{"start":40,"end":90}}`)
	var s Span
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Span{Source: 2, Start: pos(3, 1), End: pos(5, 0), Range: ByteRange{Start: 40, End: 90}, HasRange: true}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(data) {
		t.Fatalf("marshal = %s", out)
	}
}

func TestSpanJSONClampsBadCoordinates(t *testing.T) {
	data := []byte(`{"source_id":0,"visual":{"start":{"line":-1,"col":4},"end":{"line":0,"col":2}}}`)
	var s Span
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Start != pos(0, 4) {
		t.Fatalf("start = %+v", s.Start)
	}
	if s.End != s.Start {
		t.Fatalf("reversed span should collapse to start, got end %+v", s.End)
	}
	if s.HasRange {
		t.Fatal("range absent on the wire")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5) != 0 {
		t.Fatal("negative should clamp to 0")
	}
	if Clamp(1<<40) != ^uint32(0) {
		t.Fatal("overflow should clamp to max")
	}
	if Clamp(17) != 17 {
		t.Fatal("in-range value should pass through")
	}
}
