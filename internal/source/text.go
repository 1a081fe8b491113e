package source

import (
	"bytes"
	"slices"
)

// Text is a document body with a line index, used to show the source line a
// hole sits on.
type Text struct {
	content []byte
	lineIdx []uint32 // offsets of '\n'
}

// NewText strips a UTF-8 BOM and folds CRLF to LF before indexing.
func NewText(content []byte) *Text {
	content = removeBOM(content)
	content = normalizeCRLF(content)
	return &Text{content: content, lineIdx: buildLineIndex(content)}
}

// LineCount returns the number of lines, counting a trailing partial line.
func (t *Text) LineCount() int {
	if t == nil {
		return 0
	}
	return len(t.lineIdx) + 1
}

// Line returns zero-based line n without its terminator, or "" when out of range.
func (t *Text) Line(n uint32) string {
	if t == nil || int(n) > len(t.lineIdx) {
		return ""
	}
	var start uint32
	if n > 0 {
		start = t.lineIdx[n-1] + 1
	}
	end := Clamp(int64(len(t.content)))
	if int(n) < len(t.lineIdx) {
		end = t.lineIdx[n]
	}
	return string(t.content[start:end])
}

// Slice returns the text covered by span on this document, clipped to the
// available lines. Multi-line spans keep their newlines.
func (t *Text) Slice(span Span) string {
	if t == nil || int(span.Start.Line) > len(t.lineIdx) {
		return ""
	}
	var buf bytes.Buffer
	for line := span.Start.Line; line <= span.End.Line && int(line) <= len(t.lineIdx); line++ {
		text := []rune(t.Line(line))
		from, to := 0, len(text)
		if line == span.Start.Line {
			from = min(int(span.Start.Col), len(text))
		}
		if line == span.End.Line {
			to = min(int(span.End.Col), len(text))
		}
		if from < to {
			buf.WriteString(string(text[from:to]))
		}
		if line != span.End.Line {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func normalizeCRLF(content []byte) []byte {
	if !slices.Contains(content, '\r') {
		return content
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}

func removeBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, Clamp(int64(i)))
		}
	}
	return out
}
