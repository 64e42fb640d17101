package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderTable(format Format, v View) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	if len(v.Header) > 0 {
		t.AppendHeader(toRow(v.Header))
	}
	for _, row := range v.Rows {
		t.AppendRow(toRow(row))
	}

	switch format {
	case FormatCSV:
		return t.RenderCSV()
	case FormatMarkdown:
		return t.RenderMarkdown()
	}

	if v.Title != "" {
		t.SetTitle(v.Title)
	}
	if v.Footer != "" && len(v.Header) > 0 {
		footer := make(table.Row, len(v.Header))
		footer[len(footer)-1] = v.Footer
		t.AppendFooter(footer)
	}
	return t.Render()
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, value := range values {
		row[i] = value
	}
	return row
}
