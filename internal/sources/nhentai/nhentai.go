// Package nhentai scrapes the popular tags listing of nhentai, page by page,
// since the site has no API for it.
package nhentai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"tagsync/internal/components/assert"
	"tagsync/internal/components/telemetry"
	"tagsync/internal/document"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/taxonomy"
	"tagsync/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	ID             = "multi.nhentai"
	DefaultBaseURL = "https://nhentai.net"
	// the site rejects requests without a browser user agent
	UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) GSA/300.0.598994205 Mobile/15E148 Safari/604"

	DefaultMaxPages = 100
	DefaultMinCount = 10
)

const (
	report_client_fetch_page = "client.fetch-page"
	report_client_fetch      = "client.fetch"
)

func Definition() sources.Definition {
	return sources.Definition{
		ID:          ID,
		Description: "nhentai popular tags (HTML, paginated)",
		BaseURL:     DefaultBaseURL,
		UserAgent:   UserAgent,
		Filter:      document.ByID("tags"),
		FilterIDs:   false,
		New: func(client httpclient.Client, params sources.Params, tel telemetry.API) sources.Source {
			return NewClient(client, params, tel)
		},
	}
}

type Client struct {
	http     httpclient.Client
	tel      telemetry.API
	maxPages int
	minCount int
}

func NewClient(http httpclient.Client, params sources.Params, tel telemetry.API) Client {
	assert.NotNil(tel)

	maxPages := params.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	minCount := params.MinCount
	if minCount <= 0 {
		minCount = DefaultMinCount
	}

	return Client{
		http:     http,
		tel:      telemetry.NewScopedAPI("nhentai", tel),
		maxPages: maxPages,
		minCount: minCount,
	}
}

func (c Client) ID() string {
	return ID
}

// ParseTags extracts every tag anchor of a listing page, before any count
// filtering.
func ParseTags(doc *goquery.Document) []taxonomy.Term {
	var tags []taxonomy.Term
	doc.Find(`a[href^="/tag/"]`).Each(func(_ int, a *goquery.Selection) {
		var name string
		if span := a.Find("span.name").First(); span.Length() > 0 {
			name = htmlutil.CleanText(span.Text())
		} else {
			name = htmlutil.CleanText(htmlutil.OwnText(a, "span"))
		}
		if name == "" {
			return
		}

		count := 0
		if span := a.Find("span.count").First(); span.Length() > 0 {
			count = taxonomy.ParseCount(span.Text())
		}

		tags = append(tags, taxonomy.Term{Name: name, Count: count})
	})
	return tags
}

// FetchPage fetches a single page of the popular tags listing and returns the
// tags on it that reach the minimum count.
func (c Client) FetchPage(ctx context.Context, page int) ([]taxonomy.Term, error) {
	endpoint := fmt.Sprintf("/tags/popular?page=%d", page)

	res, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_page,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		return nil, err
	}

	return taxonomy.MinCount(ParseTags(doc), c.minCount), nil
}

// Fetch walks the listing from page 1 until a request fails, a page has no
// tags left after filtering, or the page limit is reached. A 404 is how the
// site answers past its last page and is not reported as a failure. Whatever was
// collected up to that point is returned sorted by name.
func (c Client) Fetch(ctx context.Context) ([]taxonomy.Term, error) {
	var tags []taxonomy.Term

	for page := 1; page <= c.maxPages; page++ {
		pageTags, err := c.FetchPage(ctx, page)
		if err != nil {
			// a cancelled run is not the end of the listing
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var statusErr *httpclient.StatusError
			if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
				c.tel.ReportDebug("stopped at missing page", page)
				break
			}
			c.tel.ReportWarning(report_client_fetch, "stopped at failed page", page, err)
			break
		}
		if len(pageTags) == 0 {
			c.tel.ReportDebug("stopped at empty page", page)
			break
		}

		tags = append(tags, pageTags...)
		c.tel.ReportDebug("fetched page", page, len(pageTags))
	}

	tags = taxonomy.Dedupe(tags)
	taxonomy.SortByName(tags)

	c.tel.ReportCount("client.tags", int64(len(tags)))
	return tags, nil
}
