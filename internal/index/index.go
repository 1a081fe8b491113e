// Package index answers "which proof node is the cursor in".
package index

import (
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// Match is the proof context found at a position.
type Match struct {
	Object     *proof.Object
	ObjectMeta proof.ObjectMeta
	Node       *proof.ProofNode
	NodeMeta   proof.NodeMeta

	// HasNodeMeta is false only for a header match on a root node the
	// checker gave no span.
	HasNodeMeta bool
}

// Resolve finds the most specific proof node whose span contains pos on
// src. Among the nodes of one theorem a later start wins, then an earlier
// end, then arena order. A position inside the theorem's declaration but
// before its root node's span resolves to the root. Theorems are tried in
// declaration order and the first one with a match wins.
func Resolve(lib *proof.Library, src source.SourceID, pos source.Position) (Match, bool) {
	if lib == nil {
		return Match{}, false
	}
	if _, known := lib.Sources[src]; !known {
		return Match{}, false
	}
	var (
		found Match
		ok    bool
	)
	lib.Theorems(func(obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta) bool {
		found, ok = resolveTheorem(obj, thm, meta, src, pos)
		return !ok
	})
	return found, ok
}

func resolveTheorem(obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta, src source.SourceID, pos source.Position) (Match, bool) {
	var (
		best     *proof.ProofNode
		bestMeta proof.NodeMeta
	)
	for i := range thm.Proof.Nodes {
		node := &thm.Proof.Nodes[i]
		nm, ok := meta.Thm.Nodes[node.ID]
		if !ok || nm.Span.Source != src || !source.Contains(nm.Span, pos) {
			continue
		}
		if best == nil || narrower(nm.Span, bestMeta.Span) {
			best, bestMeta = node, nm
		}
	}
	if best != nil {
		return Match{Object: obj, ObjectMeta: *meta, Node: best, NodeMeta: bestMeta, HasNodeMeta: true}, true
	}
	return resolveHeader(obj, thm, meta, src, pos)
}

// resolveHeader covers the theorem statement written before its proof.
func resolveHeader(obj *proof.Object, thm *proof.Theorem, meta *proof.ObjectMeta, src source.SourceID, pos source.Position) (Match, bool) {
	if !meta.HasSpan || meta.Span.Source != src || !source.Contains(meta.Span, pos) {
		return Match{}, false
	}
	root, ok := thm.Proof.Node(meta.Thm.RootID)
	if !ok {
		return Match{}, false
	}
	rootMeta, hasRootMeta := meta.Thm.Nodes[root.ID]
	if hasRootMeta && !source.IsBefore(pos, rootMeta.Span.Start) {
		return Match{}, false
	}
	return Match{Object: obj, ObjectMeta: *meta, Node: root, NodeMeta: rootMeta, HasNodeMeta: hasRootMeta}, true
}

// narrower reports whether a is more specific than b. Both contain the
// same position, so for well-nested spans a later start or an earlier end
// means a sits inside b.
func narrower(a, b source.Span) bool {
	if c := source.ComparePositions(a.Start, b.Start); c != 0 {
		return c > 0
	}
	return source.ComparePositions(a.End, b.End) < 0
}

// Lookup finds a node by object and node id, for jumps from the proof view.
func Lookup(lib *proof.Library, objID proof.ObjectID, nodeID proof.NodeID) (Match, bool) {
	obj, ok := lib.ObjectByID(objID)
	if !ok {
		return Match{}, false
	}
	thm, ok := obj.Theorem()
	if !ok {
		return Match{}, false
	}
	meta, ok := lib.ObjectMeta(objID)
	if !ok || meta.Thm == nil {
		return Match{}, false
	}
	node, ok := thm.Proof.Node(nodeID)
	if !ok {
		return Match{}, false
	}
	nm, ok := meta.Thm.Nodes[nodeID]
	if !ok {
		return Match{}, false
	}
	return Match{Object: obj, ObjectMeta: meta, Node: node, NodeMeta: nm, HasNodeMeta: true}, true
}
