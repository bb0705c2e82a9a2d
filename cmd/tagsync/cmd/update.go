package cmd

import (
	"fmt"

	"tagsync/internal/document"
	"tagsync/internal/sources"
	"tagsync/internal/updater"

	"github.com/spf13/cobra"
)

var (
	updateAll         bool
	updateDryRun      bool
	updateFilters     string
	updateSettings    string
	updateSettingsKey string
)

func init() {
	flags := updateCmd.Flags()
	flags.BoolVar(&updateAll, "all", false, "update every registered source")
	flags.BoolVarP(&updateDryRun, "dry-run", "n", false, "compute the changes without writing anything")
	flags.StringVar(&updateFilters, "filters", "", "filter document to write to (single source only)")
	flags.StringVar(&updateSettings, "settings", "", "settings document to write to (single source only)")
	flags.StringVar(&updateSettingsKey, "settings-key", "", "key of the settings entry receiving the terms")

	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [source...]",
	Short: "Fetches the terms of the given sources and rewrites their documents.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := args
		if updateAll {
			ids = registry.IDs()
		}
		defs, err := lookupAll(ids)
		if err != nil {
			return err
		}
		overriding := updateFilters != "" || updateSettings != "" || updateSettingsKey != ""
		if overriding && len(defs) > 1 {
			return fmt.Errorf("--filters, --settings and --settings-key only apply to a single source")
		}

		opts := updater.Options{
			DryRun: updateDryRun,
			Encode: cfg.EncodeOptions(),
		}

		for _, def := range defs {
			source, err := newSource(def)
			if err != nil {
				return err
			}

			targets, err := overrideTargets(def, cfg.Targets(def))
			if err != nil {
				return err
			}

			report, err := updater.Run(cmd.Context(), source, targets, opts, tel)
			if len(report.Changes) > 0 {
				report.Render(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
		}
		return nil
	},
}

// overrideTargets applies the path flags to the configured targets of def,
// adding a settings target when none is configured. The settings path
// defaults to the source's settings document, the key has no default.
func overrideTargets(def sources.Definition, targets []updater.Target) ([]updater.Target, error) {
	hasSettings := false
	for i := range targets {
		switch targets[i].Kind {
		case updater.KindFilters:
			if updateFilters != "" {
				targets[i].Path = updateFilters
			}
		case updater.KindSettings:
			hasSettings = true
			if updateSettings != "" {
				targets[i].Path = updateSettings
			}
			if updateSettingsKey != "" {
				targets[i].Selector = document.ByKey(updateSettingsKey)
			}
		}
	}

	if !hasSettings && (updateSettings != "" || updateSettingsKey != "") {
		if updateSettingsKey == "" {
			return nil, fmt.Errorf("--settings needs --settings-key unless %s has a configured settings_key", def.ID)
		}
		path := updateSettings
		if path == "" {
			path = cfg.SettingsPath(def.ID)
		}
		targets = append(targets, updater.Target{
			Kind:     updater.KindSettings,
			Path:     path,
			Selector: document.ByKey(updateSettingsKey),
			WithIDs:  def.FilterIDs,
		})
	}
	return targets, nil
}
