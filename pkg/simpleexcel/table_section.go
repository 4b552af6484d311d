package simpleexcel

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const (
	minAutoWidth = 10
	maxAutoWidth = 50
)

// TableColumns builds one column per table column, sized from the longest
// rendered value.
func TableColumns(t *table.Table) []ColumnConfig {
	cols := t.Columns()
	widths := make([]int, len(cols))
	for j, name := range cols {
		widths[j] = utf8.RuneCountInString(name)
	}
	for _, row := range t.Rows() {
		for j, c := range row {
			if n := utf8.RuneCountInString(c.Format()); n > widths[j] {
				widths[j] = n
			}
		}
	}

	out := make([]ColumnConfig, len(cols))
	for j, name := range cols {
		w := widths[j] + 2
		if w < minAutoWidth {
			w = minAutoWidth
		}
		if w > maxAutoWidth {
			w = maxAutoWidth
		}
		out[j] = ColumnConfig{FieldName: name, Header: name, Width: float64(w)}
	}
	return out
}

// TableSection adapts a table to a header + data section.
func TableSection(id string, t *table.Table) *SectionConfig {
	return &SectionConfig{
		ID:         id,
		ShowHeader: true,
		Data:       t.Records(),
		Columns:    TableColumns(t),
	}
}

// WriteWorkbook writes every sheet of wb as its own tab, header row first.
func WriteWorkbook(w io.Writer, wb *table.Workbook) error {
	exporter := NewExcelDataExporter()
	for _, s := range wb.Sheets {
		exporter.AddSheet(s.Name).AddSection(TableSection("", s.Table))
	}
	return exporter.ToWriter(w)
}

// WorkbookBytes is WriteWorkbook into memory.
func WorkbookBytes(wb *table.Workbook) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, wb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
