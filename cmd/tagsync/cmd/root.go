package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"tagsync/internal/components/telemetry"
	"tagsync/internal/config"
	"tagsync/internal/httpclient"
	"tagsync/internal/sources"
	"tagsync/internal/sources/builtin"
	"tagsync/lib/restyutil"
	"tagsync/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpDir    string
)

var (
	registry = builtin.Registry()
	tel      telemetry.API = telemetry.SlogAPI{}
	cfg      config.Config
	dump     *restyutil.FilesystemOutput
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: nearest tagsync.json5)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages and every http request")
	flags.StringVar(&dumpDir, "dump-http", "", "write every http exchange to this directory")
}

var rootCmd = &cobra.Command{
	Use:           "tagsync",
	Short:         "tagsync keeps the catalog's filter and settings documents in sync with upstream taxonomies.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(os.Stderr, verbose)

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err = config.Load(wd, configPath)
		if err != nil {
			return err
		}
		err = cfg.Validate(registry.IDs())
		if err != nil {
			return err
		}

		dump = nil
		if dumpDir != "" {
			output, err := restyutil.NewFilesystemOutput(dumpDir)
			if err != nil {
				return err
			}
			dump = &output
		}
		return nil
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("tagsync failed", err)
	}
}

// newSource builds the client and source of def according to the loaded
// config.
func newSource(def sources.Definition) (sources.Source, error) {
	opts := cfg.ClientOptions(def)
	if dump != nil {
		output, err := dump.Sub(def.ID)
		if err != nil {
			return nil, err
		}
		opts.Output = output
	}
	client := httpclient.New(opts, tel)
	return def.New(client, cfg.Params(def.ID), tel), nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func lookupAll(ids []string) ([]sources.Definition, error) {
	defs := make([]sources.Definition, 0, len(ids))
	for _, id := range ids {
		def, err := registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no source given, pass source ids or --all (known: %v)", registry.IDs())
	}
	return defs, nil
}
