package domain

import (
	"time"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

// ==================== CONSOLIDATED ANALYSIS ====================

const (
	ColSupplier     = "Supplier"
	ColFTEs         = "FTEs"
	ColFTEsClean    = "FTEs_clean"
	ColSupplierNorm = "Supplier_norm"
	ColFTEsTotal    = "FTEs_total"
	ColCapability   = "L1: Capability/Function"
	ColResourceID   = "RES ID (SNow)"

	DefaultStatusColumn = "Giugno '25 - In/Out"
)

// DefaultInScopeStatuses are the status codes counted as active staffing.
var DefaultInScopeStatuses = []string{"IN", "IN_dd", "IN_nb", "IN_rnm", "TBV (in)"}

// AnalysisOptions parameterises the consolidation.
type AnalysisOptions struct {
	// StatusColumn is the column matched against InScope. Empty disables
	// status filtering.
	StatusColumn    string
	InScope         []string
	SecondaryColumn string
	Min             float64
	Max             float64
}

func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		StatusColumn:    DefaultStatusColumn,
		InScope:         append([]string(nil), DefaultInScopeStatuses...),
		SecondaryColumn: ColCapability,
		Min:             0,
		Max:             3,
	}
}

// SupplierTotal is one group of the aggregation. Total is nil when none of
// the member rows carried a usable FTE value.
type SupplierTotal struct {
	Supplier string   `json:"supplier"`
	Total    *float64 `json:"total"`
	Rows     int      `json:"rows"`
}

// InRange reports whether the total lies in [min, max]. A missing total
// never does.
func (s SupplierTotal) InRange(min, max float64) bool {
	return s.Total != nil && *s.Total >= min && *s.Total <= max
}

// Analysis holds every table derived from one consolidated upload.
type Analysis struct {
	// Filtered is the prepared input restricted to in-scope statuses.
	Filtered *table.Table
	// Totals lists every group ordered by key.
	Totals      []SupplierTotal
	TotalsTable *table.Table
	// Selection is every filtered row of a group in range, annotated with
	// FTEs_total and sorted.
	Selection *table.Table
	// Display is Selection projected on the display columns.
	Display *table.Table
}

func (a *Analysis) Empty() bool {
	return a.Selection == nil || a.Selection.Len() == 0
}

// ==================== SESSION ====================

// Session is the per-user state. It is stored by value; tables held in it
// are never mutated once stored.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastSeen     time.Time
	Editor       EditorState
	Consolidated ConsolidatedState
}

// EditorState backs the sheet editor workflow.
type EditorState struct {
	FileName      string
	Workbook      *table.Workbook
	SelectedSheet string
	// Edited replaces SelectedSheet on export once the grid was saved.
	Edited *table.Table
}

func (s EditorState) Loaded() bool { return s.Workbook != nil }

// ConsolidatedState backs the consolidated analyzer workflow.
type ConsolidatedState struct {
	FileName string
	Sheet    table.Sheet
}

func (s ConsolidatedState) Loaded() bool { return s.Sheet.Table != nil }

// ==================== VIEWS ====================

type ExportKind string

const (
	ExportEditorWorkbook    ExportKind = "editor_workbook"
	ExportAnalysisWorkbook  ExportKind = "workbook"
	ExportSelectionWorkbook ExportKind = "selection"
	ExportSelectionPDF      ExportKind = "pdf"
)

// Export describes a document the current view can produce.
type Export struct {
	Kind        ExportKind `json:"kind"`
	Path        string     `json:"path"`
	DefaultName string     `json:"default_name"`
}

// Document is a generated file ready for download.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// TableView is the JSON shape of a table.
type TableView struct {
	Columns []string       `json:"columns"`
	Rows    [][]table.Cell `json:"rows"`
}

func NewTableView(t *table.Table) *TableView {
	if t == nil {
		return nil
	}
	return &TableView{Columns: t.Columns(), Rows: t.Rows()}
}

// GridView is an editable sheet. Rows carry typed values; Formatted holds
// the same grid as display strings.
type GridView struct {
	TableView
	Formatted [][]string `json:"formatted"`
}

// GridUpdate is an edited grid sent back by the client. Rows may have been
// added or removed; Columns defaults to the current sheet's columns.
type GridUpdate struct {
	Columns []string       `json:"columns"`
	Rows    [][]table.Cell `json:"rows"`
}

type EditorView struct {
	FileName      string    `json:"file_name"`
	SheetNames    []string  `json:"sheet_names"`
	SelectedSheet string    `json:"selected_sheet,omitempty"`
	Edited        bool      `json:"edited"`
	Grid          *GridView `json:"grid,omitempty"`
	Exports       []Export  `json:"exports"`
}

type ConsolidatedView struct {
	FileName     string          `json:"file_name"`
	StatusColumn string          `json:"status_column"`
	FilteredRows int             `json:"filtered_rows"`
	Totals       []SupplierTotal `json:"totals"`
	Selection    *TableView      `json:"selection,omitempty"`
	Message      string          `json:"message,omitempty"`
	Exports      []Export        `json:"exports"`
}

type Workflow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}
