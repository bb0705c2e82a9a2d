package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tagsync/internal/document"
	"tagsync/internal/sources/comix"
	"tagsync/internal/sources/nhentai"
	"tagsync/internal/updater"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var known = []string{comix.ID, nhentai.ID}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(known))

	require.Equal(t, dir, cfg.Root)
	require.Empty(t, cfg.Path)
	require.Equal(t, document.DefaultEncodeOptions, cfg.EncodeOptions())
	require.Equal(t, filepath.Join(dir, "sources", "en.comix", "res", "filters.json"), cfg.FiltersPath(comix.ID))

	opts := cfg.ClientOptions(nhentai.Definition())
	require.Equal(t, nhentai.UserAgent, opts.UserAgent)
	require.Equal(t, nhentai.DefaultBaseURL, opts.BaseURL)
	require.Equal(t, 30*time.Second, opts.Timeout)
}

func TestLoadFromParentWithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{
		// shared settings
		root: "catalog",
		timeout_seconds: 10,
		retries: 2,
		escape_non_ascii: false,
		sources: {
			"en.comix": {
				settings_key: "blocked_genres",
			},
		},
	}`)
	writeFile(t, filepath.Join(dir, "tagsync.local.json5"), `{ retries: 0, rate_per_second: 1.5 }`)

	start := filepath.Join(dir, "sources", "en.comix")
	require.NoError(t, os.MkdirAll(start, 0755))

	cfg, err := Load(start, "")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(known))

	require.Equal(t, filepath.Join(dir, FileName), cfg.Path)
	require.Equal(t, filepath.Join(dir, "catalog"), cfg.Root)
	require.Equal(t, 2, cfg.Retries)
	require.Equal(t, 1.5, cfg.RatePerSecond)
	require.False(t, cfg.EncodeOptions().EscapeNonASCII)

	expected := []updater.Target{
		{
			Kind:     updater.KindFilters,
			Path:     filepath.Join(dir, "catalog", "sources", "en.comix", "res", "filters.json"),
			Selector: document.ByTitle("Genres"),
			WithIDs:  true,
		},
		{
			Kind:     updater.KindSettings,
			Path:     filepath.Join(dir, "catalog", "sources", "en.comix", "res", "settings.json"),
			Selector: document.ByKey("blocked_genres"),
			WithIDs:  true,
		},
	}
	if diff := cmp.Diff(expected, cfg.Targets(comix.Definition())); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json5")
	writeFile(t, path, `{
		user_agent: "tagsync-test",
		sources: {
			"multi.nhentai": {
				base_url: "http://localhost:8080",
				filters: "/abs/filters.json",
				max_pages: 3,
				min_count: 50,
			},
		},
	}`)

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Root)

	require.Equal(t, "/abs/filters.json", cfg.FiltersPath(nhentai.ID))
	require.Equal(t, 3, cfg.Params(nhentai.ID).MaxPages)
	require.Equal(t, 50, cfg.Params(nhentai.ID).MinCount)

	opts := cfg.ClientOptions(nhentai.Definition())
	require.Equal(t, "http://localhost:8080", opts.BaseURL)
	require.Equal(t, nhentai.UserAgent, opts.UserAgent)

	opts = cfg.ClientOptions(comix.Definition())
	require.Equal(t, "tagsync-test", opts.UserAgent)
	require.Len(t, cfg.Targets(comix.Definition()), 1)

	_, err = Load(dir, filepath.Join(dir, "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name  string
		cfg   Config
		valid bool
	}{
		{name: "defaults", cfg: Default("/catalog"), valid: true},
		{name: "zero timeout", cfg: Config{}},
		{name: "negative retries", cfg: Config{TimeoutSeconds: 1, Retries: -1}},
		{name: "negative rate", cfg: Config{TimeoutSeconds: 1, RatePerSecond: -0.5}},
		{
			name: "unknown source",
			cfg:  Config{TimeoutSeconds: 1, Sources: map[string]SourceConfig{"en.mangadex": {}}},
		},
		{
			name: "settings without key",
			cfg:  Config{TimeoutSeconds: 1, Sources: map[string]SourceConfig{comix.ID: {Settings: "s.json"}}},
		},
		{
			name:  "known source",
			cfg:   Config{TimeoutSeconds: 1, Sources: map[string]SourceConfig{comix.ID: {MaxPages: 2}}},
			valid: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate(known)
			if test.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
