package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &RecordingAPI{}
	scoped := NewScopedAPI("nhentai", rec)

	scoped.ReportBroken("client.fetch-page", "boom")
	scoped.ReportWarning("client.parse-tag", 1, 2)
	scoped.ReportCount("client.tags", 42)

	broken := rec.Broken()
	require.Len(t, broken, 1)
	require.Equal(t, "nhentai: client.fetch-page", broken[0].ID)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	warnings := rec.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, "nhentai: client.parse-tag", warnings[0].ID)

	n, ok := rec.Count("nhentai: client.tags")
	require.True(t, ok)
	require.EqualValues(t, 42, n)
}

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages == nil {
		m.messages = map[string]string{}
	}
	m.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	rec := &RecordingAPI{}
	out := &memoryOutput{}
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, rec, out)

	res, err := client.R().Get("/api/series/filters")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	require.Empty(t, rec.Broken())
	require.Len(t, out.messages, 1)
	msg := out.messages["1"]
	require.True(t, strings.HasPrefix(msg, "---- REQUEST ----"))
	require.Contains(t, msg, "---- RESPONSE ----")
	require.Contains(t, msg, `{"ok":true}`)
}

func TestInstrumentRestyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	rec := &RecordingAPI{}
	client := resty.New()
	InstrumentResty(client, rec, nil)

	_, err := client.R().Get(url)
	require.Error(t, err)

	broken := rec.Broken()
	require.Len(t, broken, 1)
	require.Equal(t, report_resty_response, broken[0].ID)
}

func TestRestyLoggerReportsDebug(t *testing.T) {
	rec := &RecordingAPI{}
	var logger resty.Logger = restyLogger{tel: rec}

	logger.Errorf("%v, Attempt %v\n", "EOF", 1)
	logger.Warnf("retrying")

	require.Empty(t, rec.Broken())
	require.Empty(t, rec.Warnings())
	require.Equal(t, []string{"resty: EOF, Attempt 1", "resty: retrying"}, rec.Debug())
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(
		t,
		"Accept: a\nUser-Agent: b\nUser-Agent: c",
		formatHeaders(http.Header{
			"User-Agent": {"b", "c"},
			"Accept":     {"a"},
		}),
	)
}
