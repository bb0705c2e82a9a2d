// Package comix fetches the genre, theme and format terms of Comix. All three
// term types share the single "Genres" filter of the catalog.
package comix

import (
	"context"
	"fmt"
	"net/url"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"
	"tagsync/internal/document"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/taxonomy"

	"golang.org/x/sync/errgroup"
)

const (
	ID             = "en.comix"
	DefaultBaseURL = "https://comix.to"
	termsEndpoint  = "/api/v2/terms"
)

const (
	report_client_fetch_terms = "client.fetch-terms"
)

// TermTypes are fetched in this order and concatenated in this order.
var TermTypes = []string{"genre", "theme", "format"}

func Definition() sources.Definition {
	return sources.Definition{
		ID:          ID,
		Description: "Comix genres, themes and formats (JSON API)",
		BaseURL:     DefaultBaseURL,
		Filter:      document.ByTitle("Genres"),
		FilterIDs:   true,
		New: func(client httpclient.Client, _ sources.Params, tel telemetry.API) sources.Source {
			return NewClient(client, tel)
		},
	}
}

type Client struct {
	http httpclient.Client
	tel  telemetry.API
}

func NewClient(http httpclient.Client, tel telemetry.API) Client {
	assert.NotNil(tel)
	return Client{
		http: http,
		tel:  telemetry.NewScopedAPI("comix", tel),
	}
}

func (c Client) ID() string {
	return ID
}

type term struct {
	TermID taxonomy.ID `json:"term_id"`
	Title  string      `json:"title"`
}

type termsResponse struct {
	Result struct {
		Items []term `json:"items"`
	} `json:"result"`
}

// FetchTerms fetches the terms of a single type, ex. "theme".
func (c Client) FetchTerms(ctx context.Context, termType string) ([]taxonomy.Term, error) {
	endpoint := fmt.Sprintf("%s?%s", termsEndpoint, url.Values{"type": {termType}}.Encode())
	c.tel.ReportDebug("fetch terms", termType)

	var res termsResponse
	err := c.http.GetJSON(ctx, endpoint, &res)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_terms, err, termType)
		return nil, fmt.Errorf("comix: fetch %s terms: %w", termType, err)
	}

	terms := make([]taxonomy.Term, 0, len(res.Result.Items))
	for _, item := range res.Result.Items {
		if item.Title == "" {
			c.tel.ReportWarning(report_client_fetch_terms, "term without a title", termType, item.TermID)
			continue
		}
		terms = append(terms, taxonomy.Term{
			Name: item.Title,
			ID:   item.TermID.String(),
		})
	}
	return terms, nil
}

// Fetch fetches every term type concurrently, failing if any of them fails,
// and returns them concatenated in TermTypes order.
func (c Client) Fetch(ctx context.Context) ([]taxonomy.Term, error) {
	results := make([][]taxonomy.Term, len(TermTypes))

	group, ctx := errgroup.WithContext(ctx)
	for i, termType := range TermTypes {
		i, termType := i, termType
		group.Go(func() error {
			terms, err := c.FetchTerms(ctx, termType)
			if err != nil {
				return err
			}
			results[i] = terms
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []taxonomy.Term
	for _, terms := range results {
		out = append(out, terms...)
	}
	c.tel.ReportCount("client.terms", int64(len(out)))
	return out, nil
}
