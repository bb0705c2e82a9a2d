package document

import "fmt"

// Settings is a settings document: nested entries addressed by "key", with
// groups and pages holding their children under "items". Multi-select
// entries keep ids in "values" and display names in "titles".
type Settings struct {
	root *Node
}

func ParseSettings(data []byte) (*Settings, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if root.Kind != KindArray && root.Kind != KindObject {
		return nil, fmt.Errorf("parse settings: top-level value is neither an array nor an object")
	}
	return &Settings{root: root}, nil
}

// entries walks the tree depth first, descending into arrays and into the
// "items" member of objects.
func (s *Settings) entries() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case KindArray:
			for _, item := range n.Items {
				walk(item)
			}
		case KindObject:
			out = append(out, n)
			if items := n.Get("items"); items != nil {
				walk(items)
			}
		}
	}
	walk(s.root)
	return out
}

func (s *Settings) Find(sel Selector) []*Node {
	var out []*Node
	for _, entry := range s.entries() {
		if sel.matches(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// Values returns the current values of the first entry matching sel.
func (s *Settings) Values(sel Selector) ([]string, error) {
	matches := s.Find(sel)
	if len(matches) == 0 {
		return nil, notFound(sel, s.entries())
	}
	values, _ := matches[0].Get("values").Strings()
	return values, nil
}

// SetValues overwrites "values" (and "titles" when titles is not nil) of
// every entry matching sel, returning the values of the first match as they
// were before.
func (s *Settings) SetValues(sel Selector, values []string, titles []string) ([]string, error) {
	if titles != nil && len(titles) != len(values) {
		return nil, fmt.Errorf("set values %s: %d values but %d titles", sel, len(values), len(titles))
	}

	matches := s.Find(sel)
	if len(matches) == 0 {
		return nil, notFound(sel, s.entries())
	}

	before, _ := matches[0].Get("values").Strings()
	for _, entry := range matches {
		entry.Set("values", NewStringArray(values))
		if titles != nil {
			entry.Set("titles", NewStringArray(titles))
		}
	}
	return before, nil
}

func (s *Settings) Encode(opts EncodeOptions) []byte {
	return s.root.Encode(opts)
}
