package source

import "fmt"

// SourceID identifies a file within one proof library snapshot.
type SourceID uint32

// Source is one file known to the checker.
type Source struct {
	ID   SourceID
	Path string
}

// Position is a zero-based line/column pair.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Human renders the position 1-based, as editors show it.
func (p Position) Human() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
}

// ComparePositions orders positions lexicographically by line then column.
func ComparePositions(a, b Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Col < b.Col:
		return -1
	case a.Col > b.Col:
		return 1
	default:
		return 0
	}
}

// IsBefore reports whether pos is strictly before anchor.
func IsBefore(pos, anchor Position) bool {
	return ComparePositions(pos, anchor) < 0
}

// ByteRange is the optional linear offset pair reported next to the
// visual coordinates.
type ByteRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}
