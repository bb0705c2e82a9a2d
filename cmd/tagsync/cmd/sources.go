package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the registered sources and the documents they write to.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Description", "Base URL", "Targets"})
		for _, def := range registry.All() {
			var targets []string
			for _, target := range cfg.Targets(def) {
				targets = append(targets, target.String())
			}
			t.AppendRow(table.Row{
				def.ID,
				def.Description,
				cfg.ClientOptions(def).BaseURL,
				strings.Join(targets, "\n"),
			})
		}
		t.Render()
		return nil
	},
}
