// Package render writes tabular command output as a table, JSON, YAML or TSV.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML, FormatTSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, yaml or tsv)", s)
	}
}

// Table is a titled set of rows with named columns
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Records converts rows into maps keyed by column key (lowercase, spaces
// replaced with underscores).
func (t Table) Records() []map[string]string {
	keys := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		keys[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	}

	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(keys))
		for i, k := range keys {
			if i < len(row) {
				rec[k] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Renderer handles output rendering
type Renderer struct {
	writer io.Writer
	format Format
}

// NewRenderer creates a new renderer
func NewRenderer(writer io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{writer: writer, format: format}
}

// Format returns the renderer's output format
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes t in the renderer's format
func (r *Renderer) Render(t Table) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(t.Records())
	case FormatYAML:
		return r.RenderYAML(t.Records())
	case FormatTSV:
		return r.RenderTSV(t.Headers, t.Rows)
	default:
		if t.Title != "" {
			if _, err := fmt.Fprintf(r.writer, "%s\n\n", t.Title); err != nil {
				return err
			}
		}
		if len(t.Rows) == 0 {
			_, err := fmt.Fprintln(r.writer, "(none)")
			return err
		}
		if err := r.RenderTable(t.Headers, t.Rows); err != nil {
			return err
		}
		_, err := fmt.Fprintln(r.writer)
		return err
	}
}

// RenderJSON renders data as indented JSON
func (r *Renderer) RenderJSON(data interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// RenderYAML renders data as YAML
func (r *Renderer) RenderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(data)
}

// RenderTSV renders data as tab-separated values
func (r *Renderer) RenderTSV(headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(r.writer, strings.Join(headers, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(r.writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return nil
}

// RenderTable renders data as an aligned table
func (r *Renderer) RenderTable(headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if err := r.renderTableRow(headers, widths); err != nil {
		return err
	}
	if err := r.renderTableSeparator(widths); err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.renderTableRow(row, widths); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) renderTableRow(cells []string, widths []int) error {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i == len(cells)-1 || i == len(widths)-1 {
			b.WriteString(cell)
		} else {
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
	}
	_, err := fmt.Fprintln(r.writer, b.String())
	return err
}

func (r *Renderer) renderTableSeparator(widths []int) error {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintln(r.writer, strings.Join(parts, "  "))
	return err
}
