// Package output renders CLI command results.
package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table is a simple header/rows table for command output.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a data row.
func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render writes the table to the writer in a borderless, left-aligned style.
func (t *Table) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range t.rows {
		table.Append(row)
	}
	table.Render()
}
