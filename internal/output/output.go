// Package output renders FRED results for the terminal and for files.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatCSV):
		return FormatCSV, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// View is a rendered result: Data feeds the JSON and YAML encoders, Header
// and Rows feed the tabular formats.
type View struct {
	Title  string
	Header []string
	Rows   [][]string
	Footer string
	Data   any
}

// Render writes v to w in format.
func Render(w io.Writer, format Format, v View) error {
	var (
		text string
		err  error
	)
	switch format {
	case FormatJSON:
		text, err = renderJSON(v.Data, true)
	case FormatYAML:
		text, err = renderYAML(v.Data)
	case FormatCSV, FormatMarkdown, FormatTable, "":
		text = renderTable(format, v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err = io.WriteString(w, text)
	return err
}
