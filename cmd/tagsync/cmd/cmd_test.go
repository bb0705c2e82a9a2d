package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const filtersFixture = `[
	{
		"type": "multi-select",
		"title": "Genre",
		"options": [],
		"ids": []
	}
]
`

func setup(t *testing.T) (dir string, configFile string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"genres": [{"id": 2, "name": "Adventure"}, {"id": 1, "name": "Action"}]}`)
	}))
	t.Cleanup(server.Close)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filters.json"), []byte(filtersFixture), 0644))

	configFile = filepath.Join(dir, "tagsync.json5")
	config := fmt.Sprintf(`{
		sources: {
			"en.asurascans": { base_url: %q, filters: "filters.json" },
		},
	}`, server.URL)
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0644))
	return dir, configFile
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, verbose, dumpDir = "", false, ""
	updateAll, updateDryRun = false, false
	updateFilters, updateSettings, updateSettingsKey = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUpdate(t *testing.T) {
	dir, configFile := setup(t)
	filtersPath := filepath.Join(dir, "filters.json")

	out, err := execute(t, "update", "en.asurascans", "--dry-run", "--config", configFile)
	require.NoError(t, err)
	require.Contains(t, out, "dry-run")
	contents, err := os.ReadFile(filtersPath)
	require.NoError(t, err)
	require.Equal(t, filtersFixture, string(contents))

	out, err = execute(t, "update", "en.asurascans", "--config", configFile, "--dump-http", filepath.Join(dir, "dump"))
	require.NoError(t, err)
	require.Contains(t, out, "written")
	contents, err = os.ReadFile(filtersPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "\"Adventure\",\n\t\t\t\"Action\"")
	require.FileExists(t, filepath.Join(dir, "dump", "en.asurascans", "1.txt"))
}

func TestUpdateSettingsKeyUsesDefaultPath(t *testing.T) {
	dir, configFile := setup(t)
	settingsPath := filepath.Join(dir, "sources", "en.asurascans", "res", "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(settingsPath), 0755))
	require.NoError(t, os.WriteFile(settingsPath, []byte(`[{"key": "blocked_genres", "values": []}]`), 0644))

	_, err := execute(t, "update", "en.asurascans", "--settings-key", "blocked_genres", "--config", configFile)
	require.NoError(t, err)

	contents, err := os.ReadFile(settingsPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "\"values\": [\n\t\t\t\"2\",\n\t\t\t\"1\"\n\t\t]")
	require.Contains(t, string(contents), "\"titles\": [\n\t\t\t\"Adventure\",")
}

func TestUpdateErrors(t *testing.T) {
	_, configFile := setup(t)

	_, err := execute(t, "update", "--config", configFile)
	require.ErrorContains(t, err, "no source given")

	_, err = execute(t, "update", "en.mangadex", "--config", configFile)
	require.ErrorContains(t, err, "unknown source")

	_, err = execute(t, "update", "--all", "--filters", "x.json", "--config", configFile)
	require.ErrorContains(t, err, "single source")

	_, err = execute(t, "update", "en.asurascans", "--settings", "s.json", "--config", configFile)
	require.ErrorContains(t, err, "--settings-key")
}

func TestShow(t *testing.T) {
	_, configFile := setup(t)

	out, err := execute(t, "show", "en.asurascans", "--config", configFile)
	require.NoError(t, err)
	require.Contains(t, out, "Adventure")
	require.Contains(t, out, "TOTAL")
}

func TestSources(t *testing.T) {
	dir, configFile := setup(t)

	out, err := execute(t, "sources", "--config", configFile)
	require.NoError(t, err)
	require.Contains(t, out, "multi.nhentai")
	require.Contains(t, out, filepath.Join(dir, "filters.json"))
	require.Contains(t, out, "https://comix.to")
}
