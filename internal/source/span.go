package source

import (
	"encoding/json"
	"fmt"

	"fortio.org/safecast"
)

// Span is a closed region of one source file. Start <= End.
type Span struct {
	Source   SourceID
	Start    Position
	End      Position
	Range    ByteRange
	HasRange bool
}

// Contains reports whether pos lies within [Start, End]; both ends count.
func Contains(span Span, pos Position) bool {
	return ComparePositions(span.Start, pos) <= 0 && ComparePositions(pos, span.End) <= 0
}

// Encloses reports whether inner lies entirely within outer on the same source.
func Encloses(outer, inner Span) bool {
	return outer.Source == inner.Source &&
		ComparePositions(outer.Start, inner.Start) <= 0 &&
		ComparePositions(inner.End, outer.End) <= 0
}

// Compare orders spans by start, then by end. Equal spans compare 0 so a
// stable sort keeps their input order.
func Compare(a, b Span) int {
	if c := ComparePositions(a.Start, b.Start); c != 0 {
		return c
	}
	return ComparePositions(a.End, b.End)
}

// Human renders "L1:C1 – L2:C2" with 1-based coordinates.
func (s Span) Human() string {
	return s.Start.Human() + " – " + s.End.Human()
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%s", s.Source, s.Human())
}

// wireSpan is the checker's JSON layout.
type wireSpan struct {
	SourceID int64      `json:"source_id"`
	Visual   wireVisual `json:"visual"`
	Range    *wireRange `json:"range,omitempty"`
}

type wireVisual struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wirePosition struct {
	Line int64 `json:"line"`
	Col  int64 `json:"col"`
}

type wireRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// MarshalJSON writes the checker's span layout.
func (s Span) MarshalJSON() ([]byte, error) {
	w := wireSpan{
		SourceID: int64(s.Source),
		Visual: wireVisual{
			Start: wirePosition{Line: int64(s.Start.Line), Col: int64(s.Start.Col)},
			End:   wirePosition{Line: int64(s.End.Line), Col: int64(s.End.Col)},
		},
	}
	if s.HasRange {
		w.Range = &wireRange{Start: int64(s.Range.Start), End: int64(s.Range.End)}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the checker's span layout. Negative or oversized
// coordinates are clamped, and a reversed span is collapsed onto its start.
func (s *Span) UnmarshalJSON(data []byte) error {
	var w wireSpan
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Span{
		Source: SourceID(Clamp(w.SourceID)),
		Start:  Position{Line: Clamp(w.Visual.Start.Line), Col: Clamp(w.Visual.Start.Col)},
		End:    Position{Line: Clamp(w.Visual.End.Line), Col: Clamp(w.Visual.End.Col)},
	}
	if w.Range != nil {
		out.HasRange = true
		out.Range = ByteRange{Start: Clamp(w.Range.Start), End: Clamp(w.Range.End)}
	}
	if ComparePositions(out.End, out.Start) < 0 {
		out.End = out.Start
	}
	*s = out
	return nil
}

// Clamp converts a wire integer to uint32, saturating at both ends.
func Clamp(v int64) uint32 {
	if v < 0 {
		return 0
	}
	out, err := safecast.Conv[uint32](v)
	if err != nil {
		return ^uint32(0)
	}
	return out
}
