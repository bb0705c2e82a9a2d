package document

import "fmt"

// Filters is a filter document: a top-level array of facet objects, each
// carrying display names under "options" and upstream ids under "ids".
type Filters struct {
	root *Node
}

func ParseFilters(data []byte) (*Filters, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse filters: %w", err)
	}
	if root.Kind != KindArray {
		return nil, fmt.Errorf("parse filters: top-level value is not an array")
	}
	return &Filters{root: root}, nil
}

func (f *Filters) entries() []*Node {
	out := make([]*Node, 0, len(f.root.Items))
	for _, item := range f.root.Items {
		if item.Kind == KindObject {
			out = append(out, item)
		}
	}
	return out
}

// Find returns every filter matching sel, in document order.
func (f *Filters) Find(sel Selector) []*Node {
	var out []*Node
	for _, entry := range f.entries() {
		if sel.matches(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// Options returns the current options of the first filter matching sel.
func (f *Filters) Options(sel Selector) ([]string, error) {
	matches := f.Find(sel)
	if len(matches) == 0 {
		return nil, notFound(sel, f.entries())
	}
	options, _ := matches[0].Get("options").Strings()
	return options, nil
}

// SetOptions overwrites "options" (and "ids" when ids is not nil) of every
// filter matching sel. It returns the options of the first match as they
// were before the update.
func (f *Filters) SetOptions(sel Selector, options []string, ids []string) ([]string, error) {
	if ids != nil && len(ids) != len(options) {
		return nil, fmt.Errorf("set options %s: %d options but %d ids", sel, len(options), len(ids))
	}

	matches := f.Find(sel)
	if len(matches) == 0 {
		return nil, notFound(sel, f.entries())
	}

	before, _ := matches[0].Get("options").Strings()
	for _, entry := range matches {
		entry.Set("options", NewStringArray(options))
		if ids != nil {
			entry.Set("ids", NewStringArray(ids))
		}
	}
	return before, nil
}

func (f *Filters) Encode(opts EncodeOptions) []byte {
	return f.root.Encode(opts)
}
