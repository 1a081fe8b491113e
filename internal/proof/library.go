package proof

import (
	"nuprlnav/internal/source"
)

// NodeMeta is the location the checker attributes to one proof node.
type NodeMeta struct {
	Span source.Span
}

// ThmMeta is the theorem-specific part of ObjectMeta.
type ThmMeta struct {
	RootID NodeID
	Nodes  map[NodeID]NodeMeta
}

// ObjectMeta locates an object's declaration. Thm is set only for theorems
// whose proof tree has been laid out.
type ObjectMeta struct {
	Span    source.Span
	HasSpan bool
	Tag     string
	Thm     *ThmMeta
}

// NodeMeta returns the metadata of one node of a theorem.
func (m *ObjectMeta) NodeMeta(id NodeID) (NodeMeta, bool) {
	if m == nil || m.Thm == nil {
		return NodeMeta{}, false
	}
	nm, ok := m.Thm.Nodes[id]
	return nm, ok
}

// Library is one decoded checker report.
type Library struct {
	Sources map[source.SourceID]source.Source
	Objects []Object // declaration order
	Meta    map[ObjectID]ObjectMeta

	byName map[string]int
	byID   map[ObjectID]int
}

// NewLibrary builds the lookup tables over already decoded parts.
func NewLibrary(sources map[source.SourceID]source.Source, objects []Object, meta map[ObjectID]ObjectMeta) *Library {
	if sources == nil {
		sources = map[source.SourceID]source.Source{}
	}
	if meta == nil {
		meta = map[ObjectID]ObjectMeta{}
	}
	lib := &Library{
		Sources: sources,
		Objects: objects,
		Meta:    meta,
		byName:  make(map[string]int, len(objects)),
		byID:    make(map[ObjectID]int, len(objects)),
	}
	for i := range objects {
		if _, dup := lib.byName[objects[i].Name]; !dup {
			lib.byName[objects[i].Name] = i
		}
		if _, dup := lib.byID[objects[i].ID]; !dup {
			lib.byID[objects[i].ID] = i
		}
	}
	return lib
}

// Object looks an object up by name.
func (l *Library) Object(name string) (*Object, bool) {
	if l == nil {
		return nil, false
	}
	i, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return &l.Objects[i], true
}

// ObjectByID looks an object up by id.
func (l *Library) ObjectByID(id ObjectID) (*Object, bool) {
	if l == nil {
		return nil, false
	}
	i, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	return &l.Objects[i], true
}

// ObjectMeta returns the metadata recorded for an object.
func (l *Library) ObjectMeta(id ObjectID) (ObjectMeta, bool) {
	if l == nil {
		return ObjectMeta{}, false
	}
	m, ok := l.Meta[id]
	return m, ok
}

// SourcePath returns the path of a source id.
func (l *Library) SourcePath(id source.SourceID) (string, bool) {
	if l == nil {
		return "", false
	}
	src, ok := l.Sources[id]
	if !ok {
		return "", false
	}
	return src.Path, true
}

// SourceByPath maps an editor path to the source id the checker gave it.
// The lowest id wins if two sources normalize to the same path.
func (l *Library) SourceByPath(path string) (source.SourceID, bool) {
	if l == nil || path == "" {
		return 0, false
	}
	want := source.NormalizePath(path)
	var (
		found bool
		best  source.SourceID
	)
	for id, src := range l.Sources {
		if source.NormalizePath(src.Path) != want {
			continue
		}
		if !found || id < best {
			best, found = id, true
		}
	}
	return best, found
}

// Theorems calls fn for each theorem object that has theorem metadata, in
// declaration order, until fn returns false.
func (l *Library) Theorems(fn func(obj *Object, thm *Theorem, meta *ObjectMeta) bool) {
	if l == nil {
		return
	}
	for i := range l.Objects {
		obj := &l.Objects[i]
		thm, ok := obj.Theorem()
		if !ok {
			continue
		}
		meta, ok := l.Meta[obj.ID]
		if !ok || meta.Thm == nil {
			continue
		}
		if !fn(obj, thm, &meta) {
			return
		}
	}
}
