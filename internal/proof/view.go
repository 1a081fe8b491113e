package proof

import "encoding/json"

// viewNode is the node layout the proof view understands.
type viewNode struct {
	NodeID   *NodeID     `json:"node_id,omitempty"`
	Goal     Goal        `json:"goal"`
	Extract  *Term       `json:"extract"`
	Children *[]viewNode `json:"children"`
	Conflict bool        `json:"conflict"`
}

// MarshalJSON emits the node in the checker's layout, with children
// reduced to their summaries.
func (n ProofNode) MarshalJSON() ([]byte, error) {
	id := n.ID
	out := viewNode{NodeID: &id, Goal: n.Goal, Extract: n.Extract, Conflict: n.Conflict}
	if n.Expanded {
		children := make([]viewNode, 0, len(n.Children))
		for _, c := range n.Children {
			vc := viewNode{Goal: c.Goal, Extract: c.Extract, Conflict: c.Conflict}
			if c.HasID {
				cid := c.ID
				vc.NodeID = &cid
			}
			if c.Expanded {
				vc.Children = &[]viewNode{}
			}
			children = append(children, vc)
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

// MarshalJSON emits the object header without its proof.
func (o Object) MarshalJSON() ([]byte, error) {
	tag := ""
	if o.Kind != nil {
		tag = o.Kind.Tag()
	}
	return json.Marshal(struct {
		ID   ObjectID `json:"id"`
		Name string   `json:"name"`
		Kind struct {
			Tag string `json:"tag"`
		} `json:"kind"`
	}{ID: o.ID, Name: o.Name, Kind: struct {
		Tag string `json:"tag"`
	}{Tag: tag}})
}
