package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Root    string            `json:"root"`
	Retries int               `json:"retries"`
	Paths   map[string]string `json:"paths"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLocalName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "tagsync.json5", expected: "tagsync.local.json5"},
		{name: "/etc/tagsync.json5", expected: "/etc/tagsync.local.json5"},
		{name: "dir/config", expected: "dir/config.local"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, LocalName(test.name))
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "tagsync.json5")
	writeFile(t, name, `{
		// comments and trailing commas are fine
		root: "catalog",
		retries: 1,
		paths: {a: "1", b: "2"},
	}`)
	writeFile(t, filepath.Join(dir, "tagsync.local.json5"), `{retries: 3, paths: {b: "override"}}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "catalog", cfg.Root)
	require.Equal(t, 3, cfg.Retries)
	require.Equal(t, map[string]string{"a": "1", "b": "override"}, cfg.Paths)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "tagsync.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tagsync.local.json5"), `{root: "local"}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "tagsync.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Root)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tagsync.json5"), `{root: "."}`)
	nested := filepath.Join(dir, "sources", "en.comix", "res")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := ReadRecursively[testConfig](nested, "tagsync.json5")
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Root)

	expected, err := filepath.Abs(filepath.Join(dir, "tagsync.json5"))
	require.NoError(t, err)
	require.Equal(t, expected, path)
}
