package testkit

import (
	"nuprlnav/internal/proof"
	"nuprlnav/internal/source"
)

// Span builds a span on src from zero-based coordinates.
func Span(src source.SourceID, startLine, startCol, endLine, endCol uint32) source.Span {
	return source.Span{
		Source: src,
		Start:  source.Position{Line: startLine, Col: startCol},
		End:    source.Position{Line: endLine, Col: endCol},
	}
}

// Node describes one proof node for Theorem.
type Node struct {
	ID       proof.NodeID
	Span     source.Span
	NoMeta   bool   // leave the node without a recorded span
	Extract  string // non-empty closes the node
	Children []proof.NodeID
	Concl    string
	Conflict bool
}

// LibraryBuilder assembles proof libraries for tests without JSON.
type LibraryBuilder struct {
	sources map[source.SourceID]source.Source
	objects []proof.Object
	meta    map[proof.ObjectID]proof.ObjectMeta
}

// NewLibrary starts a builder.
func NewLibrary() *LibraryBuilder {
	return &LibraryBuilder{
		sources: make(map[source.SourceID]source.Source),
		meta:    make(map[proof.ObjectID]proof.ObjectMeta),
	}
}

// Source registers a file.
func (b *LibraryBuilder) Source(id source.SourceID, path string) *LibraryBuilder {
	b.sources[id] = source.Source{ID: id, Path: path}
	return b
}

// Theorem adds a theorem whose first node is the root. A node is a hole
// unless it has an extract or children.
func (b *LibraryBuilder) Theorem(id proof.ObjectID, name string, span source.Span, nodes ...Node) *LibraryBuilder {
	arena := make([]proof.ProofNode, 0, len(nodes))
	thm := &proof.ThmMeta{Nodes: make(map[proof.NodeID]proof.NodeMeta, len(nodes))}
	if len(nodes) > 0 {
		thm.RootID = nodes[0].ID
	}
	byID := make(map[proof.NodeID]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, n := range nodes {
		pn := proof.ProofNode{
			ID:       n.ID,
			Goal:     proof.Goal{Concl: proof.Term(n.Concl)},
			Conflict: n.Conflict,
		}
		if n.Extract != "" {
			ext := proof.Term(n.Extract)
			pn.Extract = &ext
		}
		if len(n.Children) > 0 {
			pn.Expanded = true
			for _, cid := range n.Children {
				c := byID[cid]
				child := proof.Child{ID: cid, HasID: true, Goal: proof.Goal{Concl: proof.Term(c.Concl)}, Expanded: len(c.Children) > 0}
				if c.Extract != "" {
					ext := proof.Term(c.Extract)
					child.Extract = &ext
				}
				pn.Children = append(pn.Children, child)
			}
		}
		arena = append(arena, pn)
		if !n.NoMeta {
			thm.Nodes[n.ID] = proof.NodeMeta{Span: n.Span}
		}
	}
	b.objects = append(b.objects, proof.Object{ID: id, Name: name, Kind: &proof.Theorem{Proof: proof.NewProof(arena)}})
	b.meta[id] = proof.ObjectMeta{Span: span, HasSpan: true, Tag: proof.TagTheorem, Thm: thm}
	return b
}

// Definition adds a non-theorem object with a declaration span.
func (b *LibraryBuilder) Definition(id proof.ObjectID, name string, span source.Span) *LibraryBuilder {
	b.objects = append(b.objects, proof.Object{ID: id, Name: name, Kind: &proof.OpaqueKind{Name: "def"}})
	b.meta[id] = proof.ObjectMeta{Span: span, HasSpan: true, Tag: "def"}
	return b
}

// DropMeta removes an object's metadata, as in a half-written report.
func (b *LibraryBuilder) DropMeta(id proof.ObjectID) *LibraryBuilder {
	delete(b.meta, id)
	return b
}

// Build returns the library.
func (b *LibraryBuilder) Build() *proof.Library {
	return proof.NewLibrary(b.sources, b.objects, b.meta)
}
