package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const startCol = "Data inizio collaborazione\n(gg/mm/aaaa)"

func TestEnsureExtension(t *testing.T) {
	assert.Equal(t, "report.xlsx", EnsureExtension("report", ".xlsx", DefaultAnalysisFileName))
	assert.Equal(t, "report.xlsx", EnsureExtension("report.xlsx", ".xlsx", DefaultAnalysisFileName))
	assert.Equal(t, "REPORT.PDF", EnsureExtension("REPORT.PDF", ".pdf", DefaultPDFFileName))
	assert.Equal(t, "report.pdf.xlsx", EnsureExtension("report.pdf", ".xlsx", DefaultAnalysisFileName))
	assert.Equal(t, DefaultAnalysisFileName, EnsureExtension("  ", ".xlsx", DefaultAnalysisFileName))
	assert.Equal(t, DefaultPDFFileName, EnsureExtension(".pdf", ".pdf", DefaultPDFFileName))
}

func TestDeriveEditorView(t *testing.T) {
	_, err := DeriveEditorView(domain.EditorState{})
	assert.ErrorIs(t, err, domain.ErrNoUpload)

	sheet := buildTable(t, []string{"Name", "Hours"}, []interface{}{"a", 1.5})
	state := domain.EditorState{
		FileName: "cap.xlsx",
		Workbook: &table.Workbook{Sheets: []table.Sheet{{Name: "One", Table: sheet}, {Name: "Two", Table: table.MustNew("x")}}},
	}

	view, err := DeriveEditorView(state)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, view.SheetNames)
	assert.Nil(t, view.Grid)
	assert.Empty(t, view.Exports)

	state.SelectedSheet = "One"
	view, err = DeriveEditorView(state)
	require.NoError(t, err)
	require.NotNil(t, view.Grid)
	assert.Equal(t, [][]string{{"a", "1.50"}}, view.Grid.Formatted)
	require.Len(t, view.Exports, 1)
	assert.Equal(t, DefaultEditorFileName, view.Exports[0].DefaultName)

	state.SelectedSheet = "Nope"
	_, err = DeriveEditorView(state)
	assert.ErrorIs(t, err, domain.ErrSheetNotFound)
}

func TestEditorDisplayTable(t *testing.T) {
	src := buildTable(t, []string{startCol, ColComments, "Other"},
		[]interface{}{"03/06/2025", 42, "x"},
		[]interface{}{"garbage", nil, "y"},
		[]interface{}{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "ok", "z"},
	)

	got := EditorDisplayTable(src)

	d, ok := got.Cell(0, startCol).Time()
	require.True(t, ok)
	assert.Equal(t, time.June, d.Month())
	assert.True(t, got.Cell(1, startCol).IsMissing())
	assert.Equal(t, "02/01/2024", got.Cell(2, startCol).Format())

	assert.Equal(t, table.KindText, got.Cell(0, ColComments).Kind())
	assert.Equal(t, "42", got.Cell(0, ColComments).String())
	assert.True(t, got.Cell(1, ColComments).IsMissing())

	assert.Equal(t, table.KindText, src.Cell(0, startCol).Kind())
}

func TestApplyGridUpdate(t *testing.T) {
	base := buildTable(t, []string{"Name", "Since", "Hours"},
		[]interface{}{"a", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 1},
	)

	upd := domain.GridUpdate{Rows: [][]table.Cell{
		{table.Text("a"), table.Text("05/03/2025"), table.Number(2)},
		{table.Text("b"), table.Text(" "), table.Text("not a number")},
		{table.Text("c")},
	}}

	edited, err := ApplyGridUpdate(base, upd)
	require.NoError(t, err)
	assert.Equal(t, base.Columns(), edited.Columns())
	require.Equal(t, 3, edited.Len())

	d, ok := edited.Cell(0, "Since").Time()
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())
	assert.True(t, edited.Cell(1, "Since").IsMissing())
	assert.Equal(t, "not a number", edited.Cell(1, "Hours").String())
	assert.True(t, edited.Cell(2, "Hours").IsMissing())

	_, err = ApplyGridUpdate(base, domain.GridUpdate{Rows: [][]table.Cell{{table.Text("1"), table.Text("2"), table.Text("3"), table.Text("4")}}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = ApplyGridUpdate(base, domain.GridUpdate{Columns: []string{"a", "a"}})
	assert.ErrorAs(t, err, &verr)
}

func TestEditedWorkbook(t *testing.T) {
	one := buildTable(t, []string{"x"}, []interface{}{1})
	two := buildTable(t, []string{"y"}, []interface{}{2})
	edited := buildTable(t, []string{"y"}, []interface{}{3}, []interface{}{4})

	state := domain.EditorState{
		Workbook:      &table.Workbook{Sheets: []table.Sheet{{Name: "One", Table: one}, {Name: "Two", Table: two}}},
		SelectedSheet: "Two",
		Edited:        edited,
	}

	wb, err := EditedWorkbook(state)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, wb.SheetNames())

	got, err := wb.Sheet("Two")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	orig, err := state.Workbook.Sheet("Two")
	require.NoError(t, err)
	assert.Equal(t, 1, orig.Len())
}

func TestDeriveConsolidatedView(t *testing.T) {
	_, _, err := DeriveConsolidatedView(domain.ConsolidatedState{}, statusOptions())
	assert.ErrorIs(t, err, domain.ErrNoUpload)

	t.Run("with selection", func(t *testing.T) {
		state := domain.ConsolidatedState{
			FileName: "cons.xlsx",
			Sheet: table.Sheet{Name: "Giugno", Table: buildTable(t, []string{"Supplier", "FTEs", "Status"},
				[]interface{}{"A Co", 1, "IN"},
				[]interface{}{"B Co", 9, "IN"},
			)},
		}

		view, analysis, err := DeriveConsolidatedView(state, statusOptions("IN"))
		require.NoError(t, err)
		require.NotNil(t, analysis)
		assert.Empty(t, view.Message)
		assert.Equal(t, 2, view.FilteredRows)
		assert.Len(t, view.Totals, 2)
		require.NotNil(t, view.Selection)
		assert.Len(t, view.Selection.Rows, 1)
		require.Len(t, view.Exports, 3)
		assert.Equal(t, domain.ExportSelectionPDF, view.Exports[2].Kind)
	})

	t.Run("empty selection", func(t *testing.T) {
		state := domain.ConsolidatedState{
			Sheet: table.Sheet{Table: buildTable(t, []string{"Supplier", "FTEs", "Status"},
				[]interface{}{"B Co", 9, "IN"},
			)},
		}

		view, _, err := DeriveConsolidatedView(state, statusOptions("IN"))
		require.NoError(t, err)
		assert.Equal(t, domain.MsgEmptySelection, view.Message)
		assert.Nil(t, view.Selection)
		assert.Empty(t, view.Exports)
	})

	t.Run("validation failure", func(t *testing.T) {
		state := domain.ConsolidatedState{
			Sheet: table.Sheet{Table: buildTable(t, []string{"Vendor"}, []interface{}{"x"})},
		}
		_, _, err := DeriveConsolidatedView(state, statusOptions())

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
