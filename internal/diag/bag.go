package diag

// Bag is an ordered list of diagnostics.
type Bag struct {
	items []Diagnostic
}

// FromSlice wraps diagnostics in checker order.
func FromSlice(items []Diagnostic) *Bag {
	return &Bag{items: items}
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns the diagnostics. Callers must not modify the slice.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

type dedupKey struct {
	message string
	span    string
}

// Dedup drops repeats of a message at the same location. The first
// occurrence stays, so First reports the same diagnostic afterwards.
func (b *Bag) Dedup() {
	if b == nil {
		return
	}
	seen := make(map[dedupKey]struct{}, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		k := dedupKey{message: d.Message}
		if d.Span != nil {
			k.span = d.Span.String()
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, d)
	}
	b.items = kept
}
