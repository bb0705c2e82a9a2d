package document

import (
	"errors"
	"fmt"

	"tagsync/lib/textutil"
)

// ErrEntryNotFound is returned when no entry of a document matches a selector.
var ErrEntryNotFound = errors.New("entry not found")

// Selector addresses document entries by the string value of one of their
// fields, ex. {Field: "title", Value: "Genre"}.
type Selector struct {
	Field string
	Value string
}

func ByTitle(title string) Selector {
	return Selector{Field: "title", Value: title}
}

func ByID(id string) Selector {
	return Selector{Field: "id", Value: id}
}

func ByKey(key string) Selector {
	return Selector{Field: "key", Value: key}
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%q", s.Field, s.Value)
}

func (s Selector) matches(n *Node) bool {
	v, ok := n.GetString(s.Field)
	return ok && v == s.Value
}

// NotFoundError carries the selector that matched nothing and, when the
// document has entries with the same field, the closest existing value.
type NotFoundError struct {
	Selector Selector
	Hint     string
}

func (e *NotFoundError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s: %s", ErrEntryNotFound, e.Selector)
	}
	return fmt.Sprintf("%s: %s (did you mean %q?)", ErrEntryNotFound, e.Selector, e.Hint)
}

func (e *NotFoundError) Unwrap() error {
	return ErrEntryNotFound
}

func notFound(sel Selector, entries []*Node) error {
	var candidates []string
	for _, entry := range entries {
		if v, ok := entry.GetString(sel.Field); ok {
			candidates = append(candidates, v)
		}
	}
	hint, _ := textutil.ClosestMatch(sel.Value, candidates)
	return &NotFoundError{Selector: sel, Hint: hint}
}
