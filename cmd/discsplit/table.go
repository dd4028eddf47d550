package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column describes one table column. A zero MaxWidth never wraps.
type column struct {
	Header   string
	Align    columnAlignment
	MaxWidth int
}

type tableSpec struct {
	Columns []column
	Rows    [][]string
	// Footer is rendered under the rows when non-empty.
	Footer []string
}

func renderTable(spec tableSpec) string {
	count := len(spec.Columns)
	if count == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers(spec.Columns), count))
	for _, row := range spec.Rows {
		tw.AppendRow(toRow(row, count))
	}
	if len(spec.Footer) > 0 {
		tw.AppendFooter(toRow(spec.Footer, count))
	}

	configs := make([]table.ColumnConfig, 0, count)
	for i, col := range spec.Columns {
		align := text.AlignLeft
		if col.Align == alignRight {
			align = text.AlignRight
		}
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
			WidthMax:    col.MaxWidth,
		}
		if col.MaxWidth > 0 {
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func headers(columns []column) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.Header
	}
	return out
}

func toRow(values []string, count int) table.Row {
	row := make(table.Row, count)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
