// Package updater applies the terms of one source to the documents that
// mirror it.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"
	"tagsync/internal/document"
	"tagsync/internal/sources"
	"tagsync/internal/taxonomy"
)

// ErrNoTerms is returned when a source yields nothing, an empty list is never
// written over an existing one.
var ErrNoTerms = errors.New("source returned no terms")

const (
	report_run_fetch = "run.fetch"
	report_run_apply = "run.apply"
)

type Kind string

const (
	KindFilters  Kind = "filters"
	KindSettings Kind = "settings"
)

// Target is one document entry that receives the terms of a source.
type Target struct {
	Kind     Kind
	Path     string
	Selector document.Selector
	// WithIDs writes the term ids next to the names: "ids" for filters and
	// "values" (with names as "titles") for settings. Without ids, settings
	// store the names as values.
	WithIDs bool
}

func (t Target) String() string {
	return fmt.Sprintf("%s %s [%s]", t.Kind, t.Path, t.Selector)
}

type Options struct {
	DryRun bool
	Encode document.EncodeOptions
}

// Change is the outcome of applying terms to a single target.
type Change struct {
	Target  Target
	Before  []string
	After   []string
	Added   []string
	Removed []string
	Result  document.EditResult
}

// Status is one of "unchanged", "dry-run" or "written".
func (c Change) Status() string {
	switch {
	case !c.Result.Changed:
		return "unchanged"
	case !c.Result.Written:
		return "dry-run"
	default:
		return "written"
	}
}

type Report struct {
	Source  string
	Terms   []taxonomy.Term
	Changes []Change
}

// Run fetches the terms of source once and applies them to every target in
// order, stopping at the first target that fails.
func Run(ctx context.Context, source sources.Source, targets []Target, opts Options, tel telemetry.API) (Report, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI(source.ID(), tel)

	report := Report{Source: source.ID()}

	terms, err := source.Fetch(ctx)
	if err != nil {
		tel.ReportBroken(report_run_fetch, err)
		return report, fmt.Errorf("%s: fetch: %w", source.ID(), err)
	}
	if len(terms) == 0 {
		tel.ReportBroken(report_run_fetch, ErrNoTerms)
		return report, fmt.Errorf("%s: %w", source.ID(), ErrNoTerms)
	}
	report.Terms = terms
	tel.ReportCount("run.terms", int64(len(terms)))

	for _, target := range targets {
		change, err := Apply(ctx, terms, target, opts)
		if err != nil {
			tel.ReportBroken(report_run_apply, err, target.String())
			return report, fmt.Errorf("%s: %w", source.ID(), err)
		}
		tel.ReportDebug(
			"applied terms",
			target.String(),
			change.Status(),
			len(change.Added),
			len(change.Removed),
		)
		report.Changes = append(report.Changes, change)
	}

	return report, nil
}

// Apply writes terms to a single target.
func Apply(ctx context.Context, terms []taxonomy.Term, target Target, opts Options) (Change, error) {
	if target.WithIDs && !taxonomy.HasIDs(terms) {
		return Change{}, fmt.Errorf("%s: terms have no ids", target)
	}

	change := Change{Target: target, After: taxonomy.Names(terms)}

	var edit document.EditFunc
	switch target.Kind {
	case KindFilters:
		edit = func(current []byte) ([]byte, error) {
			doc, err := document.ParseFilters(current)
			if err != nil {
				return nil, err
			}
			var ids []string
			if target.WithIDs {
				ids = taxonomy.IDs(terms)
			}
			change.Before, err = doc.SetOptions(target.Selector, change.After, ids)
			if err != nil {
				return nil, err
			}
			return doc.Encode(opts.Encode), nil
		}
	case KindSettings:
		values := change.After
		var titles []string
		if target.WithIDs {
			values = taxonomy.IDs(terms)
			titles = change.After
		}
		edit = func(current []byte) ([]byte, error) {
			doc, err := document.ParseSettings(current)
			if err != nil {
				return nil, err
			}
			before, err := doc.SetValues(target.Selector, values, titles)
			if err != nil {
				return nil, err
			}
			change.Before = before
			// values are ids here, compare ids against ids
			change.After = values
			return doc.Encode(opts.Encode), nil
		}
	default:
		return Change{}, fmt.Errorf("%s: unknown target kind", target)
	}

	result, err := document.Edit(ctx, target.Path, opts.DryRun, edit)
	change.Result = result
	if errors.Is(err, os.ErrNotExist) {
		return change, fmt.Errorf("%s: document does not exist: %w", target, err)
	}
	if err != nil {
		return change, fmt.Errorf("%s: %w", target, err)
	}

	change.Added, change.Removed = diff(change.Before, change.After)
	return change, nil
}

// diff returns the values only present in after and the values only
// present in before, each in the order they appear.
func diff(before, after []string) (added, removed []string) {
	inBefore := make(map[string]struct{}, len(before))
	for _, v := range before {
		inBefore[v] = struct{}{}
	}
	inAfter := make(map[string]struct{}, len(after))
	for _, v := range after {
		inAfter[v] = struct{}{}
	}

	for _, v := range after {
		if _, ok := inBefore[v]; !ok {
			added = append(added, v)
		}
	}
	for _, v := range before {
		if _, ok := inAfter[v]; !ok {
			removed = append(removed, v)
		}
	}
	return added, removed
}
