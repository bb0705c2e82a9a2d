// Package sources defines what an upstream term source is and keeps the
// registry the CLI resolves source ids against.
package sources

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"
	"tagsync/internal/document"
	"tagsync/internal/httpclient"
	"tagsync/internal/taxonomy"
)

// Source fetches the current term list of one upstream site.
type Source interface {
	ID() string
	Fetch(ctx context.Context) ([]taxonomy.Term, error)
}

// Params are the per-run knobs a source may honor. Zero values mean the
// source default.
type Params struct {
	MaxPages int
	MinCount int
}

// Definition is the static description of a source: where it lives, which
// filter entry it owns, and how to build it.
type Definition struct {
	ID          string
	Description string
	BaseURL     string
	// UserAgent overrides the client default when the site needs a specific one.
	UserAgent string
	// Filter selects the filter document entry the terms are written to.
	Filter document.Selector
	// FilterIDs is false for sources whose filter only stores names.
	FilterIDs bool
	New       func(client httpclient.Client, params Params, tel telemetry.API) Source
}

// Registry maps source ids to their definitions.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: map[string]Definition{}}
	for _, def := range defs {
		r.Register(def)
	}
	return r
}

func (r *Registry) Register(def Definition) {
	assert.NotEmptyStr(def.ID)
	assert.NotEmptyStr(def.BaseURL)
	if def.New == nil {
		panic("sources: definition needs a constructor")
	}
	if _, exists := r.defs[def.ID]; exists {
		panic(fmt.Sprintf("sources: %s registered twice", def.ID))
	}
	r.defs[def.ID] = def
}

func (r *Registry) Lookup(id string) (Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, fmt.Errorf("unknown source %q (known: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return def, nil
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns every definition sorted by id.
func (r *Registry) All() []Definition {
	ids := r.IDs()
	out := make([]Definition, len(ids))
	for i, id := range ids {
		out[i] = r.defs[id]
	}
	return out
}
