// Package config reads tagsync.json5 and resolves it into what the sources
// and the updater need.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tagsync/internal/document"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/updater"
	"tagsync/lib/configutil"
)

const FileName = "tagsync.json5"

type SourceConfig struct {
	BaseURL   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	// Filters and Settings are document paths, relative to the root.
	Filters     string `json:"filters"`
	Settings    string `json:"settings"`
	SettingsKey string `json:"settings_key"`
	MaxPages    int    `json:"max_pages"`
	MinCount    int    `json:"min_count"`
}

type Config struct {
	Root             string                  `json:"root"`
	UserAgent        string                  `json:"user_agent"`
	TimeoutSeconds   float64                 `json:"timeout_seconds"`
	RatePerSecond    float64                 `json:"rate_per_second"`
	Retries          int                     `json:"retries"`
	CloudflareBypass bool                    `json:"cloudflare_bypass"`
	EscapeNonASCII   *bool                   `json:"escape_non_ascii"`
	Sources          map[string]SourceConfig `json:"sources"`

	// Path is the file the config was read from, empty for built-in defaults.
	Path string `json:"-"`
}

func Default(root string) Config {
	return Config{
		Root:           root,
		TimeoutSeconds: httpclient.DefaultTimeout.Seconds(),
	}
}

// Load reads the config at path or, when path is empty, the first
// tagsync.json5 found walking up from start. A missing config falls back to
// the defaults rooted at start, an explicitly given one must exist.
func Load(start, path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		cfg.Path = path
	} else {
		var found string
		cfg, found, err = configutil.ReadRecursively[Config](start, FileName)
		switch {
		case errors.Is(err, os.ErrNotExist):
			cfg = Default(start)
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			cfg.Path = found
		}
	}

	base := start
	if cfg.Path != "" {
		base = filepath.Dir(cfg.Path)
	}
	if cfg.Root == "" {
		cfg.Root = base
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(base, cfg.Root)
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = httpclient.DefaultTimeout.Seconds()
	}

	return cfg, nil
}

// Validate rejects settings no run could succeed with. known is the list of
// registered source ids.
func (c Config) Validate(known []string) error {
	var errs []error
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("timeout_seconds must be positive, got %v", c.TimeoutSeconds))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("rate_per_second must not be negative, got %v", c.RatePerSecond))
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}
	for id, src := range c.Sources {
		if _, ok := knownSet[id]; !ok {
			errs = append(errs, fmt.Errorf("sources: unknown source %q", id))
		}
		if src.MaxPages < 0 || src.MinCount < 0 {
			errs = append(errs, fmt.Errorf("sources.%s: max_pages and min_count must not be negative", id))
		}
		if src.Settings != "" && src.SettingsKey == "" {
			errs = append(errs, fmt.Errorf("sources.%s: settings needs a settings_key", id))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config %s: %w", c.Path, errors.Join(errs...))
	}
	return nil
}

func (c Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// FiltersPath is the filter document of a source,
// <root>/sources/<id>/res/filters.json unless overridden.
func (c Config) FiltersPath(id string) string {
	if p := c.Sources[id].Filters; p != "" {
		return c.resolve(p)
	}
	return filepath.Join(c.Root, "sources", id, "res", "filters.json")
}

func (c Config) SettingsPath(id string) string {
	if p := c.Sources[id].Settings; p != "" {
		return c.resolve(p)
	}
	return filepath.Join(c.Root, "sources", id, "res", "settings.json")
}

func (c Config) EncodeOptions() document.EncodeOptions {
	opts := document.DefaultEncodeOptions
	if c.EscapeNonASCII != nil {
		opts.EscapeNonASCII = *c.EscapeNonASCII
	}
	return opts
}

func (c Config) ClientOptions(def sources.Definition) httpclient.Options {
	src := c.Sources[def.ID]

	opts := httpclient.Options{
		BaseURL:          def.BaseURL,
		UserAgent:        c.UserAgent,
		Timeout:          time.Duration(c.TimeoutSeconds * float64(time.Second)),
		Retries:          c.Retries,
		RatePerSecond:    c.RatePerSecond,
		CloudflareBypass: c.CloudflareBypass,
	}
	if def.UserAgent != "" {
		opts.UserAgent = def.UserAgent
	}
	if src.UserAgent != "" {
		opts.UserAgent = src.UserAgent
	}
	if src.BaseURL != "" {
		opts.BaseURL = src.BaseURL
	}
	return opts
}

func (c Config) Params(id string) sources.Params {
	src := c.Sources[id]
	return sources.Params{MaxPages: src.MaxPages, MinCount: src.MinCount}
}

// Targets lists where the terms of a source go: its filter entry, plus a
// settings entry when a settings_key is configured.
func (c Config) Targets(def sources.Definition) []updater.Target {
	targets := []updater.Target{{
		Kind:     updater.KindFilters,
		Path:     c.FiltersPath(def.ID),
		Selector: def.Filter,
		WithIDs:  def.FilterIDs,
	}}
	if key := c.Sources[def.ID].SettingsKey; key != "" {
		targets = append(targets, updater.Target{
			Kind:     updater.KindSettings,
			Path:     c.SettingsPath(def.ID),
			Selector: document.ByKey(key),
			WithIDs:  def.FilterIDs,
		})
	}
	return targets
}
