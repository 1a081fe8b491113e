package proof

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"nuprlnav/internal/source"
)

type wireResult struct {
	Sources json.RawMessage            `json:"sources"`
	Lib     *wireLib                   `json:"lib"`
	Meta    map[string]json.RawMessage `json:"meta"`
}

type wireLib struct {
	Objects json.RawMessage `json:"objects"`
}

type wireSource struct {
	ID   *int64 `json:"id,omitempty"`
	Path string `json:"path"`
}

type wireObject struct {
	ID   int64           `json:"id"`
	Kind json.RawMessage `json:"kind"`
}

type wireKind struct {
	Tag   string     `json:"tag"`
	Proof []wireNode `json:"proof"`
}

type wireNode struct {
	NodeID   *int64      `json:"node_id"`
	Goal     Goal        `json:"goal"`
	Extract  *Term       `json:"extract"`
	Children *[]wireNode `json:"children"`
	Conflict bool        `json:"conflict"`
}

type wireObjectMeta struct {
	Span *source.Span    `json:"span"`
	Kind json.RawMessage `json:"kind"`
}

type wireThmMeta struct {
	RootID int64                   `json:"root_id"`
	Nodes  map[string]wireNodeMeta `json:"nodes"`
}

type wireNodeMeta struct {
	Span *source.Span `json:"span"`
}

// ErrNoLibrary is returned when the result lacks the "lib" member.
var ErrNoLibrary = errors.New("result has no lib")

// Decode builds a Library from the checker's "result" member. fallback
// holds a "sources" member found outside "result"; it is used when result
// carries none.
func Decode(result, fallback json.RawMessage) (*Library, error) {
	var w wireResult
	if err := json.Unmarshal(result, &w); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if w.Lib == nil {
		return nil, ErrNoLibrary
	}
	rawSources := w.Sources
	if isNull(rawSources) {
		rawSources = fallback
	}
	sources, err := DecodeSources(rawSources)
	if err != nil {
		return nil, err
	}
	objects, err := decodeObjects(w.Lib.Objects)
	if err != nil {
		return nil, err
	}
	meta := make(map[ObjectID]ObjectMeta, len(w.Meta))
	for key, raw := range w.Meta {
		id, ok := parseID(key)
		if !ok {
			continue
		}
		m, err := decodeObjectMeta(raw)
		if err != nil {
			// half-written metadata only costs this object its location
			continue
		}
		meta[ObjectID(id)] = m
	}
	return NewLibrary(sources, objects, meta), nil
}

// DecodeSources accepts either an object keyed by source id or an array
// indexed by source id.
func DecodeSources(raw json.RawMessage) (map[source.SourceID]source.Source, error) {
	out := make(map[source.SourceID]source.Source)
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return out, nil
	}
	if raw[0] == '[' {
		var list []wireSource
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		for i, ws := range list {
			id := source.Clamp(int64(i))
			if ws.ID != nil {
				id = source.Clamp(*ws.ID)
			}
			out[source.SourceID(id)] = source.Source{ID: source.SourceID(id), Path: ws.Path}
		}
		return out, nil
	}
	var byKey map[string]wireSource
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	for key, ws := range byKey {
		id, ok := parseID(key)
		if !ok {
			continue
		}
		out[source.SourceID(id)] = source.Source{ID: source.SourceID(id), Path: ws.Path}
	}
	return out, nil
}

// decodeObjects walks lib.objects token by token so the declaration order
// of the JSON object survives.
func decodeObjects(raw json.RawMessage) ([]Object, error) {
	if isNull(raw) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode objects: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode objects: expected object, got %v", tok)
	}
	var objects []Object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode objects: %w", err)
		}
		name, _ := tok.(string)
		var wo wireObject
		if err := dec.Decode(&wo); err != nil {
			return nil, fmt.Errorf("decode object %q: %w", name, err)
		}
		kind, err := decodeKind(wo.Kind)
		if err != nil {
			return nil, fmt.Errorf("decode object %q: %w", name, err)
		}
		objects = append(objects, Object{
			ID:   ObjectID(source.Clamp(wo.ID)),
			Name: name,
			Kind: kind,
		})
	}
	return objects, nil
}

func decodeKind(raw json.RawMessage) (ObjectKind, error) {
	var wk wireKind
	if isNull(raw) {
		return &OpaqueKind{}, nil
	}
	if err := json.Unmarshal(raw, &wk); err != nil {
		return nil, err
	}
	if wk.Tag != TagTheorem {
		return &OpaqueKind{Name: wk.Tag, Raw: raw}, nil
	}
	return &Theorem{Proof: buildProof(wk.Proof)}, nil
}

// buildProof lays the listed nodes out first, in checker order, then adds
// nested children that the list did not already contain. Nodes without an
// id cannot carry metadata and stay out of the arena.
func buildProof(list []wireNode) *Proof {
	nodes := make([]ProofNode, 0, len(list))
	seen := make(map[NodeID]struct{}, len(list))
	for i := range list {
		if list[i].NodeID == nil {
			continue
		}
		id := NodeID(source.Clamp(*list[i].NodeID))
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		nodes = append(nodes, toNode(id, &list[i]))
	}
	var nested func(children *[]wireNode)
	nested = func(children *[]wireNode) {
		if children == nil {
			return
		}
		for i := range *children {
			child := &(*children)[i]
			if child.NodeID != nil {
				id := NodeID(source.Clamp(*child.NodeID))
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					nodes = append(nodes, toNode(id, child))
				}
			}
			nested(child.Children)
		}
	}
	for i := range list {
		nested(list[i].Children)
	}
	return NewProof(nodes)
}

func toNode(id NodeID, w *wireNode) ProofNode {
	n := ProofNode{
		ID:       id,
		Goal:     w.Goal,
		Extract:  w.Extract,
		Expanded: w.Children != nil,
		Conflict: w.Conflict,
	}
	if w.Children != nil {
		n.Children = make([]Child, 0, len(*w.Children))
		for i := range *w.Children {
			c := &(*w.Children)[i]
			child := Child{
				Goal:     c.Goal,
				Extract:  c.Extract,
				Expanded: c.Children != nil,
				Conflict: c.Conflict,
			}
			if c.NodeID != nil {
				child.ID = NodeID(source.Clamp(*c.NodeID))
				child.HasID = true
			}
			n.Children = append(n.Children, child)
		}
	}
	return n
}

func decodeObjectMeta(raw json.RawMessage) (ObjectMeta, error) {
	var wm wireObjectMeta
	if err := json.Unmarshal(raw, &wm); err != nil {
		return ObjectMeta{}, err
	}
	var m ObjectMeta
	if wm.Span != nil {
		m.Span = *wm.Span
		m.HasSpan = true
	}
	kind := bytes.TrimSpace(wm.Kind)
	switch {
	case isNull(kind):
	case kind[0] == '"':
		if err := json.Unmarshal(kind, &m.Tag); err != nil {
			return ObjectMeta{}, err
		}
	case kind[0] == '{':
		var variants map[string]json.RawMessage
		if err := json.Unmarshal(kind, &variants); err != nil {
			return ObjectMeta{}, err
		}
		if thmRaw, ok := variants[TagTheorem]; ok {
			m.Tag = TagTheorem
			thm, err := decodeThmMeta(thmRaw)
			if err != nil {
				return ObjectMeta{}, err
			}
			m.Thm = thm
			break
		}
		keys := make([]string, 0, len(variants))
		for k := range variants {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			m.Tag = keys[0]
		}
	}
	return m, nil
}

func decodeThmMeta(raw json.RawMessage) (*ThmMeta, error) {
	if isNull(raw) {
		return nil, nil
	}
	var wt wireThmMeta
	if err := json.Unmarshal(raw, &wt); err != nil {
		return nil, err
	}
	thm := &ThmMeta{
		RootID: NodeID(source.Clamp(wt.RootID)),
		Nodes:  make(map[NodeID]NodeMeta, len(wt.Nodes)),
	}
	for key, nm := range wt.Nodes {
		id, ok := parseID(key)
		if !ok || nm.Span == nil {
			continue
		}
		thm.Nodes[NodeID(id)] = NodeMeta{Span: *nm.Span}
	}
	return thm, nil
}

func parseID(key string) (uint32, bool) {
	v, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
