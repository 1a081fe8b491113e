// Package holes lists the unfinished proof nodes of a file and steps
// through them in document order, wrapping at both ends.
package holes

import (
	"slices"

	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// Hole is an unfinished node together with its location.
type Hole struct {
	Object *proof.Object
	Node   *proof.ProofNode
	Span   source.Span
}

// Collect returns every hole located on src, in document order. Holes with
// identical spans keep declaration and arena order.
func Collect(lib *proof.Library, src source.SourceID) []Hole {
	var out []Hole
	lib.Theorems(func(obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta) bool {
		for i := range thm.Proof.Nodes {
			node := &thm.Proof.Nodes[i]
			if !node.IsHole() {
				continue
			}
			nm, ok := meta.Thm.Nodes[node.ID]
			if !ok || nm.Span.Source != src {
				continue
			}
			out = append(out, Hole{Object: obj, Node: node, Span: nm.Span})
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b Hole) int {
		return source.Compare(a.Span, b.Span)
	})
	return out
}

// In returns the spans of the holes on src, in document order.
func In(lib *proof.Library, src source.SourceID) []source.Span {
	found := Collect(lib, src)
	if len(found) == 0 {
		return nil
	}
	spans := make([]source.Span, len(found))
	for i := range found {
		spans[i] = found[i].Span
	}
	return spans
}

// Count returns the number of holes on src.
func Count(lib *proof.Library, src source.SourceID) int {
	return len(Collect(lib, src))
}

// NextIndex returns the index of the first hole starting strictly after
// cursor, wrapping to 0. It returns -1 only for an empty list.
func NextIndex(spans []source.Span, cursor source.Position) int {
	if len(spans) == 0 {
		return -1
	}
	for i := range spans {
		if source.IsBefore(cursor, spans[i].Start) {
			return i
		}
	}
	return 0
}

// PreviousIndex returns the index of the last hole starting strictly
// before cursor, wrapping to the last hole. It returns -1 only for an
// empty list.
func PreviousIndex(spans []source.Span, cursor source.Position) int {
	if len(spans) == 0 {
		return -1
	}
	for i := len(spans) - 1; i >= 0; i-- {
		if source.IsBefore(spans[i].Start, cursor) {
			return i
		}
	}
	return len(spans) - 1
}

// Next returns the hole after cursor, cyclically.
func Next(spans []source.Span, cursor source.Position) (source.Span, bool) {
	i := NextIndex(spans, cursor)
	if i < 0 {
		return source.Span{}, false
	}
	return spans[i], true
}

// Previous returns the hole before cursor, cyclically.
func Previous(spans []source.Span, cursor source.Position) (source.Span, bool) {
	i := PreviousIndex(spans, cursor)
	if i < 0 {
		return source.Span{}, false
	}
	return spans[i], true
}
