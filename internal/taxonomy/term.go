// Package taxonomy holds the classification terms fetched from upstream
// sources and the list operations shared by every source.
package taxonomy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"tagsync/lib/textutil"
)

// Term is one upstream classification label. ID is empty for sources that
// only expose names, Count is zero unless the source ranks by popularity.
type Term struct {
	Name  string
	ID    string
	Count int
}

// ID is an upstream identifier that may be encoded as a JSON number or a
// JSON string, it is always kept in its string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("taxonomy: id is neither a string nor a number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// SortByName sorts terms in place by case-folded name, keeping the relative
// order of terms whose names fold to the same key.
func SortByName(terms []Term) {
	slices.SortStableFunc(terms, func(a, b Term) int {
		return strings.Compare(textutil.FoldKey(a.Name), textutil.FoldKey(b.Name))
	})
}

// MinCount returns the terms with a count of at least n.
func MinCount(terms []Term, n int) []Term {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.Count >= n {
			out = append(out, t)
		}
	}
	return out
}

// Dedupe drops every term whose (id, name) pair already appeared earlier.
func Dedupe(terms []Term) []Term {
	type key struct{ id, name string }
	seen := make(map[key]struct{}, len(terms))
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		k := key{id: t.ID, name: t.Name}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func Names(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Name
	}
	return out
}

func IDs(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.ID
	}
	return out
}

// HasIDs reports whether every term carries an identifier.
func HasIDs(terms []Term) bool {
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		if t.ID == "" {
			return false
		}
	}
	return true
}

// ParseCount parses a scraped popularity count such as "12,345", "1.2K" or
// "3M". Anything unparsable, negative or too large counts as zero.
func ParseCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return 0
	}

	multiplier := 0.0
	switch {
	case strings.HasSuffix(text, "K"):
		multiplier = 1_000
	case strings.HasSuffix(text, "M"):
		multiplier = 1_000_000
	}

	if multiplier > 0 {
		mantissa, err := strconv.ParseFloat(text[:len(text)-1], 64)
		if err != nil {
			return 0
		}
		count := mantissa * multiplier
		// NaN fails both comparisons
		if !(count >= 0 && count < math.MaxInt32) {
			return 0
		}
		return int(count)
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
