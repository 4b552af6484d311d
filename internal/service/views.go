package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const (
	DefaultEditorFileName    = "file_modificato.xlsx"
	DefaultAnalysisFileName  = "consolidato.xlsx"
	DefaultSelectionFileName = "consolidato_fte_0_3.xlsx"
	DefaultPDFFileName       = "consolidato_fte_0_3.pdf"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"

	ColComments = "Commenti"
)

// EditorDateColumns are coerced to dates in the editor grid.
var EditorDateColumns = []string{
	"Data inizio collaborazione\n(gg/mm/aaaa)",
	"Data fine collaborazione\n(gg/mm/aaaa)",
}

var dateInputLayouts = []string{
	table.DisplayDateLayout,
	"2/1/2006",
	"2006-01-02",
	table.PlainDateLayout,
	time.RFC3339,
}

// Workflows lists the two workflows of the dashboard.
func Workflows() []domain.Workflow {
	return []domain.Workflow{
		{ID: "editor", Title: "Capability", Path: "/api/editor"},
		{ID: "consolidated", Title: "Consolidato", Path: "/api/consolidated/view"},
	}
}

// EnsureExtension appends ext to name unless it already ends with it.
// A blank name, or one that is only the extension, yields fallback.
func EnsureExtension(name, ext, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, ext) {
		return fallback
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// ==================== Editor ====================

// DeriveEditorView recomputes the editor view from its state.
func DeriveEditorView(state domain.EditorState) (domain.EditorView, error) {
	if !state.Loaded() {
		return domain.EditorView{}, domain.ErrNoUpload
	}

	view := domain.EditorView{
		FileName:      state.FileName,
		SheetNames:    state.Workbook.SheetNames(),
		SelectedSheet: state.SelectedSheet,
		Edited:        state.Edited != nil,
		Exports:       []domain.Export{},
	}
	if state.SelectedSheet == "" {
		return view, nil
	}

	current, err := CurrentSheet(state)
	if err != nil {
		return domain.EditorView{}, err
	}
	view.Grid = EditorGrid(current)
	view.Exports = append(view.Exports, domain.Export{
		Kind:        domain.ExportEditorWorkbook,
		Path:        "/api/editor/export",
		DefaultName: DefaultEditorFileName,
	})
	return view, nil
}

// CurrentSheet returns the edited grid when there is one, else the sheet as
// uploaded.
func CurrentSheet(state domain.EditorState) (*table.Table, error) {
	if state.Edited != nil {
		return state.Edited, nil
	}
	return lookupSheet(state.Workbook, state.SelectedSheet)
}

func lookupSheet(wb *table.Workbook, name string) (*table.Table, error) {
	t, err := wb.Sheet(name)
	if errors.Is(err, table.ErrSheetNotFound) {
		return nil, fmt.Errorf("%w: %q", domain.ErrSheetNotFound, name)
	}
	return t, err
}

// EditorDisplayTable coerces the known date columns to dates (unparsable
// text becomes Missing) and the comments column to text.
func EditorDisplayTable(t *table.Table) *table.Table {
	out := t.Clone()
	for _, col := range EditorDateColumns {
		if !out.HasColumn(col) {
			continue
		}
		for i := 0; i < out.Len(); i++ {
			c := out.Cell(i, col)
			if c.Kind() != table.KindText {
				continue
			}
			if d, ok := parseDate(c.String()); ok {
				_ = out.Set(i, col, table.Date(d))
			} else {
				_ = out.Set(i, col, table.Missing())
			}
		}
	}
	if out.HasColumn(ColComments) {
		for i := 0; i < out.Len(); i++ {
			if c := out.Cell(i, ColComments); !c.IsMissing() {
				_ = out.Set(i, ColComments, table.Text(c.String()))
			}
		}
	}
	return out
}

// EditorGrid renders a sheet for editing: dates day-first, numbers with two
// decimals in the formatted copy.
func EditorGrid(t *table.Table) *domain.GridView {
	display := EditorDisplayTable(t)
	formatted := make([][]string, display.Len())
	for i, row := range display.Rows() {
		texts := make([]string, len(row))
		for j, c := range row {
			texts[j] = c.Format()
		}
		formatted[i] = texts
	}
	return &domain.GridView{TableView: *domain.NewTableView(display), Formatted: formatted}
}

// ApplyGridUpdate builds the edited sheet. Short rows are padded, blank
// strings become Missing and day-first strings in date columns become dates.
func ApplyGridUpdate(base *table.Table, upd domain.GridUpdate) (*table.Table, error) {
	columns := upd.Columns
	if len(columns) == 0 {
		columns = base.Columns()
	}
	out, err := table.New(columns...)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	dateCols := dateColumns(base)
	for n, row := range upd.Rows {
		if len(row) > len(columns) {
			return nil, domain.NewValidationError(fmt.Sprintf("row %d has %d cells for %d columns", n, len(row), len(columns)))
		}
		cells := make([]table.Cell, len(columns))
		for j, c := range row {
			cells[j] = editedCell(c, dateCols[columns[j]])
		}
		if err := out.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func editedCell(c table.Cell, isDate bool) table.Cell {
	if c.Kind() != table.KindText {
		return c
	}
	s := strings.TrimSpace(c.String())
	if s == "" {
		return table.Missing()
	}
	if isDate {
		if d, ok := parseDate(s); ok {
			return table.Date(d)
		}
	}
	return c
}

// dateColumns marks the known date columns and every column holding at
// least one date.
func dateColumns(t *table.Table) map[string]bool {
	out := make(map[string]bool)
	for _, col := range EditorDateColumns {
		out[col] = true
	}
	cols := t.Columns()
	for _, row := range t.Rows() {
		for j, c := range row {
			if c.Kind() == table.KindDate {
				out[cols[j]] = true
			}
		}
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateInputLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// EditedWorkbook returns the uploaded workbook with the edited sheet in
// place of the selected one.
func EditedWorkbook(state domain.EditorState) (*table.Workbook, error) {
	if !state.Loaded() {
		return nil, domain.ErrNoUpload
	}
	if state.Edited == nil || state.SelectedSheet == "" {
		return state.Workbook, nil
	}
	wb, err := state.Workbook.WithSheet(state.SelectedSheet, state.Edited)
	if errors.Is(err, table.ErrSheetNotFound) {
		return nil, fmt.Errorf("%w: %q", domain.ErrSheetNotFound, state.SelectedSheet)
	}
	return wb, err
}

// ==================== Consolidated ====================

// DeriveConsolidatedView recomputes the analysis and its view from the
// uploaded report. A validation failure is returned as
// *domain.ValidationError.
func DeriveConsolidatedView(state domain.ConsolidatedState, opts domain.AnalysisOptions) (domain.ConsolidatedView, *domain.Analysis, error) {
	if !state.Loaded() {
		return domain.ConsolidatedView{}, nil, domain.ErrNoUpload
	}

	analysis, err := Consolidate(state.Sheet.Table, opts)
	if err != nil {
		return domain.ConsolidatedView{}, nil, err
	}

	view := domain.ConsolidatedView{
		FileName:     state.FileName,
		StatusColumn: opts.StatusColumn,
		FilteredRows: analysis.Filtered.Len(),
		Totals:       analysis.Totals,
		Exports:      []domain.Export{},
	}
	if analysis.Empty() {
		view.Message = domain.MsgEmptySelection
		return view, analysis, nil
	}

	view.Selection = domain.NewTableView(analysis.Display)
	view.Exports = append(view.Exports,
		domain.Export{Kind: domain.ExportAnalysisWorkbook, Path: "/api/consolidated/export/workbook", DefaultName: DefaultAnalysisFileName},
		domain.Export{Kind: domain.ExportSelectionWorkbook, Path: "/api/consolidated/export/selection", DefaultName: DefaultSelectionFileName},
		domain.Export{Kind: domain.ExportSelectionPDF, Path: "/api/consolidated/export/pdf", DefaultName: DefaultPDFFileName},
	)
	return view, analysis, nil
}
