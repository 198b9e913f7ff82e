package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/expml/internal/storage"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused in CLI output, so the cursor row looks like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// RunColumns are the columns of the run listing.
var RunColumns = []TableColumn{
	{Title: " ", Width: 1},
	{Title: "RUN", Width: 28},
	{Title: "STATUS", Width: 10},
	{Title: "STEP", Width: 8},
	{Title: "METRICS", Width: 9},
	{Title: "UPDATED", Width: 16},
}

// RunRow formats one run for the listing. Ages are relative to now.
func RunRow(r storage.RunInfo, now time.Time) []string {
	marker := ""
	if r.Latest {
		marker = SymbolLatest
	}
	metrics := "-"
	if r.MetricsSize > 0 {
		metrics = humanize.Bytes(uint64(r.MetricsSize))
	}
	return []string{
		marker,
		r.Name,
		r.Status,
		strconv.FormatInt(r.Step, 10),
		metrics,
		humanize.RelTime(r.ModTime, now, "ago", "from now"),
	}
}

// RenderRunTable renders the run listing, newest first as given.
func RenderRunTable(runs []storage.RunInfo, now time.Time) string {
	if len(runs) == 0 {
		return "No runs found"
	}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = RunRow(r, now)
	}
	return RenderSimpleTable(RunColumns, rows)
}
