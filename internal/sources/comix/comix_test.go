package comix

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tagsync/internal/components/telemetry"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/taxonomy"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var fixtures = map[string]string{
	"genre":  `{"status": 200, "result": {"items": [{"term_id": 87264, "title": "Action", "slug": "action"}, {"term_id": 87265, "title": "Adult"}]}}`,
	"theme":  `{"status": 200, "result": {"items": [{"term_id": 87320, "title": "Aliens"}]}}`,
	"format": `{"status": 200, "result": {"items": [{"term_id": 87300, "title": "4-Koma"}, {"term_id": 1, "title": ""}]}}`,
}

func newTestSource(t *testing.T, failType string) sources.Source {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		termType := r.URL.Query().Get("type")
		body, ok := fixtures[termType]
		if r.URL.Path != termsEndpoint || !ok || termType == failType {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	tel := &telemetry.RecordingAPI{}
	client := httpclient.New(httpclient.Options{BaseURL: server.URL}, tel)
	return Definition().New(client, sources.Params{}, tel)
}

func TestFetchConcatenatesInOrder(t *testing.T) {
	source := newTestSource(t, "")

	terms, err := source.Fetch(context.Background())
	require.NoError(t, err)

	expected := []taxonomy.Term{
		{Name: "Action", ID: "87264"},
		{Name: "Adult", ID: "87265"},
		{Name: "Aliens", ID: "87320"},
		{Name: "4-Koma", ID: "87300"},
	}
	if diff := cmp.Diff(expected, terms); diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchFailsWhenAnyTypeFails(t *testing.T) {
	source := newTestSource(t, "theme")

	_, err := source.Fetch(context.Background())
	require.ErrorIs(t, err, httpclient.ErrStatus)
}

func TestFetchTermsSingleType(t *testing.T) {
	source := newTestSource(t, "").(Client)

	terms, err := source.FetchTerms(context.Background(), "theme")
	require.NoError(t, err)
	require.Equal(t, []string{"Aliens"}, taxonomy.Names(terms))
}
