package testkit

import (
	"fmt"

	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// CheckLibraryInvariants reports layout problems the navigator tolerates
// but that point at a checker bug:
//  1. every node span has start <= end and refers to a known source
//  2. every node with metadata exists in the proof arena
//  3. the root node has metadata
//  4. a child's span is enclosed by its parent's span
//
// The first problem found is returned.
func CheckLibraryInvariants(lib *proof.Library) error {
	if lib == nil {
		return fmt.Errorf("nil library")
	}
	var err error
	lib.Theorems(func(obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta) bool {
		err = checkTheorem(lib, obj, thm, meta)
		return err == nil
	})
	return err
}

func checkTheorem(lib *proof.Library, obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta) error {
	for id, nm := range meta.Thm.Nodes {
		if source.ComparePositions(nm.Span.Start, nm.Span.End) > 0 {
			return fmt.Errorf("%s: node %d span %s is reversed", obj.Name, id, nm.Span.Human())
		}
		if _, ok := lib.Sources[nm.Span.Source]; !ok {
			return fmt.Errorf("%s: node %d refers to unknown source %d", obj.Name, id, nm.Span.Source)
		}
		if _, ok := thm.Proof.Node(id); !ok {
			return fmt.Errorf("%s: metadata for node %d which is not in the proof", obj.Name, id)
		}
	}
	if _, ok := meta.Thm.Nodes[meta.Thm.RootID]; !ok {
		return fmt.Errorf("%s: root node %d has no span", obj.Name, meta.Thm.RootID)
	}
	for i := range thm.Proof.Nodes {
		parent := &thm.Proof.Nodes[i]
		outer, ok := meta.Thm.Nodes[parent.ID]
		if !ok {
			continue
		}
		for _, child := range parent.Children {
			if !child.HasID {
				continue
			}
			inner, ok := meta.Thm.Nodes[child.ID]
			if !ok {
				continue
			}
			if !source.Encloses(outer.Span, inner.Span) {
				return fmt.Errorf("%s: node %d span %s escapes parent %d span %s",
					obj.Name, child.ID, inner.Span.Human(), parent.ID, outer.Span.Human())
			}
		}
	}
	return nil
}
