package updater

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// maxListed caps how many added or removed values are spelled out per row.
const maxListed = 5

func summarize(values []string) string {
	if len(values) <= maxListed {
		return strings.Join(values, ", ")
	}
	return strings.Join(values[:maxListed], ", ") + ", ..."
}

// Render writes the report as a table, one row per target.
func (r Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(r.Source)

	t.AppendHeader(table.Row{"Document", "Entry", "Before", "After", "Added", "Removed", "Status"})
	for _, c := range r.Changes {
		t.AppendRow(table.Row{
			c.Result.Path,
			c.Target.Selector.String(),
			len(c.Before),
			len(c.After),
			summarize(c.Added),
			summarize(c.Removed),
			c.Status(),
		})
	}
	t.Render()
}
