package proof

import (
	"bytes"
	"encoding/json"
)

// Term is a checker-rendered expression. The engine never inspects it.
// Strings are kept as-is; any other JSON value is kept in compact form.
type Term string

func (t *Term) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Term(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*t = Term(buf.String())
	return nil
}

// Text returns the term, or "??" for an unknown term.
func (t *Term) Text() string {
	if t == nil {
		return "??"
	}
	return string(*t)
}
