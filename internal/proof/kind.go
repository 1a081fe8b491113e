package proof

import "encoding/json"

// ObjectKind is the tagged payload of a library object. The set of
// implementations is closed: *Theorem and *OpaqueKind.
type ObjectKind interface {
	Tag() string
	isObjectKind()
}

// TagTheorem is the checker tag of theorem objects.
const TagTheorem = "thm"

// Theorem carries a proof tree.
type Theorem struct {
	Proof *Proof
}

func (*Theorem) Tag() string   { return TagTheorem }
func (*Theorem) isObjectKind() {}

// OpaqueKind is any object the navigator does not look into (definitions,
// rules, comments). Raw keeps the payload for display.
type OpaqueKind struct {
	Name string
	Raw  json.RawMessage
}

func (k *OpaqueKind) Tag() string { return k.Name }
func (*OpaqueKind) isObjectKind() {}

// Object is one top-level library entry.
type Object struct {
	ID   ObjectID
	Name string
	Kind ObjectKind
}

// Theorem returns the object's proof tree when it is a theorem.
func (o *Object) Theorem() (*Theorem, bool) {
	thm, ok := o.Kind.(*Theorem)
	return thm, ok && thm != nil
}
