// Package asurascans fetches the genre list of Asura Scans from its series
// filters API.
package asurascans

import (
	"context"
	"fmt"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"
	"tagsync/internal/document"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/taxonomy"
)

const (
	ID              = "en.asurascans"
	DefaultBaseURL  = "https://gg.asuracomic.net"
	filtersEndpoint = "/api/series/filters"
)

const (
	report_client_fetch = "client.fetch"
)

func Definition() sources.Definition {
	return sources.Definition{
		ID:          ID,
		Description: "Asura Scans genres (JSON API)",
		BaseURL:     DefaultBaseURL,
		Filter:      document.ByTitle("Genre"),
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
		tel:  telemetry.NewScopedAPI("asurascans", tel),
	}
}

func (c Client) ID() string {
	return ID
}

type genre struct {
	ID   taxonomy.ID `json:"id"`
	Name string      `json:"name"`
}

type filtersResponse struct {
	Genres []genre `json:"genres"`
}

func (c Client) Fetch(ctx context.Context) ([]taxonomy.Term, error) {
	var res filtersResponse
	err := c.http.GetJSON(ctx, filtersEndpoint, &res)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err)
		return nil, fmt.Errorf("asurascans: fetch genres: %w", err)
	}

	terms := make([]taxonomy.Term, 0, len(res.Genres))
	for _, g := range res.Genres {
		if g.Name == "" {
			c.tel.ReportWarning(report_client_fetch, "genre without a name", g.ID)
			continue
		}
		terms = append(terms, taxonomy.Term{
			Name: g.Name,
			ID:   g.ID.String(),
		})
	}

	c.tel.ReportCount("client.genres", int64(len(terms)))
	return terms, nil
}
