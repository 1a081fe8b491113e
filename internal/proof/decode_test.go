package proof

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"nuprlnav/internal/source"
)

func loadResult(t *testing.T, name string) (json.RawMessage, json.RawMessage) {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var top struct {
		Result  json.RawMessage `json:"result"`
		Sources json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return top.Result, top.Sources
}

func TestDecodeKeepsDeclarationOrder(t *testing.T) {
	result, fallback := loadResult(t, "check_ok.json")
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var names []string
	for _, obj := range lib.Objects {
		names = append(names, obj.Name)
	}
	if got := strings.Join(names, ","); got != "zeta,and_comm,alpha" {
		t.Fatalf("object order = %s", got)
	}
}

func TestDecodeSealedKinds(t *testing.T) {
	result, fallback := loadResult(t, "check_ok.json")
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	zeta, ok := lib.Object("zeta")
	if !ok {
		t.Fatal("zeta missing")
	}
	switch kind := zeta.Kind.(type) {
	case *OpaqueKind:
		if kind.Tag() != "def" || len(kind.Raw) == 0 {
			t.Fatalf("unexpected opaque kind: %+v", kind)
		}
	default:
		t.Fatalf("zeta kind = %T", kind)
	}
	thm, ok := lib.Object("and_comm")
	if !ok {
		t.Fatal("and_comm missing")
	}
	if _, ok := thm.Theorem(); !ok {
		t.Fatalf("and_comm kind = %T", thm.Kind)
	}
}

func TestDecodeProofArena(t *testing.T) {
	result, fallback := loadResult(t, "check_ok.json")
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj, _ := lib.Object("and_comm")
	thm, _ := obj.Theorem()
	if thm.Proof.Len() != 2 {
		t.Fatalf("arena size = %d, want 2 (duplicate id ignored)", thm.Proof.Len())
	}
	root, ok := thm.Proof.Node(0)
	if !ok {
		t.Fatal("root missing")
	}
	if root.IsHole() {
		t.Fatal("root has children and is not a hole")
	}
	if len(root.Children) != 2 || !root.Children[0].HasID || root.Children[1].HasID {
		t.Fatalf("children = %+v", root.Children)
	}
	if root.Children[1].Extract.Text() != "a" {
		t.Fatalf("second child extract = %q", root.Children[1].Extract.Text())
	}
	leaf, ok := thm.Proof.Node(1)
	if !ok || !leaf.IsHole() {
		t.Fatalf("node 1 should be a hole: %+v", leaf)
	}
	if len(root.Goal.Hyps) != 1 || root.Goal.Hyps[0].Var != "A" {
		t.Fatalf("hyps = %+v", root.Goal.Hyps)
	}
}

func TestDecodeMeta(t *testing.T) {
	result, fallback := loadResult(t, "check_ok.json")
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	meta, ok := lib.ObjectMeta(3)
	if !ok || meta.Thm == nil {
		t.Fatalf("theorem meta missing: %+v", meta)
	}
	if meta.Thm.RootID != 0 || len(meta.Thm.Nodes) != 2 {
		t.Fatalf("thm meta = %+v", meta.Thm)
	}
	nm, ok := meta.NodeMeta(1)
	if !ok || nm.Span.Start != (source.Position{Line: 3, Col: 2}) {
		t.Fatalf("node 1 meta = %+v", nm)
	}
	def, ok := lib.ObjectMeta(7)
	if !ok || def.Tag != "def" || def.Thm != nil || !def.HasSpan {
		t.Fatalf("def meta = %+v", def)
	}
	if _, ok := lib.ObjectMeta(5); ok {
		t.Fatal("alpha has no metadata in the fixture")
	}
}

func TestDecodeSourcesLookup(t *testing.T) {
	result, fallback := loadResult(t, "check_ok.json")
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	id, ok := lib.SourceByPath("/work/lib.nup")
	if !ok || id != 1 {
		t.Fatalf("SourceByPath = %d, %v", id, ok)
	}
	if _, ok := lib.SourceByPath("/work/other.nup"); ok {
		t.Fatal("unknown path should not resolve")
	}
	if p, ok := lib.SourcePath(0); !ok || p != "/work/a.nup" {
		t.Fatalf("SourcePath(0) = %q, %v", p, ok)
	}
}

func TestDecodeFallbackSources(t *testing.T) {
	result := json.RawMessage(`{"lib":{"objects":{}},"meta":{}}`)
	fallback := json.RawMessage(`[{"path":"/x/first.nup"},{"path":"/x/second.nup"}]`)
	lib, err := Decode(result, fallback)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p, _ := lib.SourcePath(1); p != "/x/second.nup" {
		t.Fatalf("fallback sources not used: %+v", lib.Sources)
	}
}

func TestDecodeRejectsMissingLib(t *testing.T) {
	if _, err := Decode(json.RawMessage(`{"sources":{}}`), nil); err != ErrNoLibrary {
		t.Fatalf("err = %v, want ErrNoLibrary", err)
	}
	if _, err := Decode(json.RawMessage(`[1,2]`), nil); err == nil {
		t.Fatal("expected error for non-object result")
	}
}

func TestDecodeTreeShapedChildren(t *testing.T) {
	result := json.RawMessage(`{"lib":{"objects":{"t":{"id":1,"kind":{"tag":"thm","proof":[
		{"node_id":10,"goal":{"concl":"P"},"extract":null,"children":[
			{"node_id":11,"goal":{"concl":"Q"},"extract":null,"children":[
				{"node_id":12,"goal":{"concl":"R"},"extract":null,"children":null}
			]}
		]}
	]}}}},"meta":{}}`)
	lib, err := Decode(result, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj, _ := lib.Object("t")
	thm, _ := obj.Theorem()
	for _, id := range []NodeID{10, 11, 12} {
		if _, ok := thm.Proof.Node(id); !ok {
			t.Fatalf("node %d not registered", id)
		}
	}
	n12, _ := thm.Proof.Node(12)
	if !n12.IsHole() {
		t.Fatal("innermost node is a hole")
	}
}

func TestHolePredicate(t *testing.T) {
	ext := Term("x")
	tests := []struct {
		name string
		node ProofNode
		want bool
	}{
		{"no children no extract", ProofNode{}, true},
		{"extract only", ProofNode{Extract: &ext}, false},
		{"empty children list", ProofNode{Expanded: true}, false},
		{"children and extract", ProofNode{Expanded: true, Extract: &ext}, false},
	}
	for _, tt := range tests {
		if got := tt.node.IsHole(); got != tt.want {
			t.Errorf("%s: IsHole = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTermAcceptsStructuredJSON(t *testing.T) {
	var g Goal
	if err := json.Unmarshal([]byte(`{"hys":[],"concl":{"app":["f", "x"]}}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(g.Concl) != `{"app":["f","x"]}` {
		t.Fatalf("concl = %q", g.Concl)
	}
	var missing *Term
	if missing.Text() != "??" {
		t.Fatal("unknown term renders as ??")
	}
}

func TestNodeViewJSON(t *testing.T) {
	ext := Term("a")
	node := ProofNode{
		ID:       4,
		Goal:     Goal{Concl: "A"},
		Expanded: true,
		Children: []Child{{ID: 5, HasID: true, Goal: Goal{Concl: "B"}}, {Goal: Goal{Concl: "C"}, Extract: &ext}},
	}
	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"node_id":4`, `"node_id":5`, `"extract":"a"`, `"concl":"C"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
	obj := Object{ID: 3, Name: "t", Kind: &Theorem{}}
	data, err = json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal object: %v", err)
	}
	if string(data) != `{"id":3,"name":"t","kind":{"tag":"thm"}}` {
		t.Fatalf("object json = %s", data)
	}
}
