package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Fetches and prints the terms of a source without writing anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := registry.Lookup(args[0])
		if err != nil {
			return err
		}
		source, err := newSource(def)
		if err != nil {
			return err
		}
		terms, err := source.Fetch(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.SetTitle(def.ID)
		t.AppendHeader(table.Row{"#", "Name", "ID", "Count"})
		for i, term := range terms {
			var count any = ""
			if term.Count > 0 {
				count = term.Count
			}
			t.AppendRow(table.Row{i + 1, term.Name, term.ID, count})
		}
		t.AppendFooter(table.Row{"", "total", len(terms), ""})
		t.Render()
		return nil
	},
}
