package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

func buildTable(t *testing.T, columns []string, rows ...[]interface{}) *table.Table {
	t.Helper()
	tbl := table.MustNew(columns...)
	for _, r := range rows {
		cells := make([]table.Cell, len(r))
		for j, v := range r {
			cells[j] = table.FromValue(v)
		}
		require.NoError(t, tbl.AppendRow(cells...))
	}
	return tbl
}

func statusOptions(inScope ...string) domain.AnalysisOptions {
	opts := domain.DefaultAnalysisOptions()
	opts.StatusColumn = "Status"
	if len(inScope) > 0 {
		opts.InScope = inScope
	}
	return opts
}

func totalOf(t *testing.T, totals []domain.SupplierTotal, key string) *float64 {
	t.Helper()
	for _, g := range totals {
		if g.Supplier == key {
			return g.Total
		}
	}
	t.Fatalf("no group %q", key)
	return nil
}

func column(t *testing.T, tbl *table.Table, name string) []string {
	t.Helper()
	cells, err := tbl.Column(name)
	require.NoError(t, err)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

func TestConsolidate_EndToEnd(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"A Co", "1", "IN"},
		[]interface{}{"A Co", "1.5", "IN"},
		[]interface{}{"B Co", "5", "IN"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	require.Len(t, a.Totals, 2)
	assert.Equal(t, "A Co", a.Totals[0].Supplier)
	assert.Equal(t, 2.5, *a.Totals[0].Total)
	assert.Equal(t, 2, a.Totals[0].Rows)
	assert.Equal(t, "B Co", a.Totals[1].Supplier)
	assert.Equal(t, 5.0, *a.Totals[1].Total)

	require.Equal(t, 2, a.Selection.Len())
	for i := 0; i < a.Selection.Len(); i++ {
		assert.Equal(t, "A Co", a.Selection.Cell(i, domain.ColSupplier).String())
		total, ok := a.Selection.Cell(i, domain.ColFTEsTotal).Float()
		require.True(t, ok)
		assert.Equal(t, 2.5, total)
	}

	assert.Equal(t, []string{"Supplier", "FTEs", "FTEs_total"}, a.Display.Columns())
	assert.Equal(t, []string{"1", "1.5"}, column(t, a.Display, domain.ColFTEs))
	assert.Equal(t, []string{"Supplier_norm", "FTEs_total"}, a.TotalsTable.Columns())
	assert.False(t, a.Empty())
}

func TestConsolidate_SumSemantics(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"Mixed", 1.0, "IN"},
		[]interface{}{"Mixed", "n/a", "IN"},
		[]interface{}{"Mixed", "2", "IN"},
		[]interface{}{"Empty", nil, "IN"},
		[]interface{}{"Empty", "-", "IN"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	mixed := totalOf(t, a.Totals, "Mixed")
	require.NotNil(t, mixed)
	assert.Equal(t, 3.0, *mixed)
	assert.Nil(t, totalOf(t, a.Totals, "Empty"))

	assert.Equal(t, []string{"Mixed", "Mixed", "Mixed"}, column(t, a.Selection, domain.ColSupplierNorm))
	assert.True(t, a.TotalsTable.Cell(0, domain.ColFTEsTotal).IsMissing())
}

func TestConsolidate_RangeBoundaries(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"Zero", 0, "IN"},
		[]interface{}{"Three", 3, "IN"},
		[]interface{}{"Over", 3.01, "IN"},
		[]interface{}{"Negative", -0.5, "IN"},
		[]interface{}{"Missing", nil, "IN"},
		[]interface{}{"Drift", "0,1", "IN"},
		[]interface{}{"Drift", "0,2", "IN"},
		[]interface{}{"Drift", "2,7", "IN"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Drift", "Drift", "Drift", "Three", "Zero"}, column(t, a.Selection, domain.ColSupplierNorm))
	assert.Equal(t, 3.0, *totalOf(t, a.Totals, "Drift"))
	assert.Len(t, a.Totals, 6)
}

func TestConsolidate_StatusFilter(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"A", 1, "IN"},
		[]interface{}{"B", 1, "in"},
		[]interface{}{"C", 1, nil},
		[]interface{}{"D", 1, "TBV (in)"},
		[]interface{}{"E", 1, "OUT"},
		[]interface{}{"F", 1, "IN_rnm"},
	)

	a, err := Consolidate(input, statusOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D", "F"}, column(t, a.Filtered, domain.ColSupplier))
	assert.Len(t, a.Totals, 3)
}

func TestConsolidate_WhitespaceVariantsGroupTogether(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"Acme  Corp", 1, "IN"},
		[]interface{}{"  Acme Corp ", 0.5, "IN"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	require.Len(t, a.Totals, 1)
	assert.Equal(t, 1.5, *a.Totals[0].Total)
	assert.Equal(t, []string{"Acme  Corp", "Acme Corp"}, column(t, a.Filtered, domain.ColSupplier))
	assert.Equal(t, []string{"Acme Corp", "Acme Corp"}, column(t, a.Filtered, domain.ColSupplierNorm))
	assert.Equal(t, []string{"1", "0.5"}, column(t, a.Filtered, domain.ColFTEsClean))
}

func TestConsolidate_SortsBySupplierThenSecondary(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status", domain.ColCapability, domain.ColResourceID},
		[]interface{}{"Beta", 1, "IN", "Zeta", "r1"},
		[]interface{}{"Alpha", 1, "IN", "Ops", "r2"},
		[]interface{}{"Beta", 1, "IN", "Admin", "r3"},
		[]interface{}{"Alpha", 1, "IN", nil, "r4"},
		[]interface{}{"Alpha", 1, "IN", "Dev", "r5"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	assert.Equal(t, []string{"r5", "r2", "r4", "r3", "r1"}, column(t, a.Selection, domain.ColResourceID))
	assert.Equal(t,
		[]string{"Supplier", domain.ColCapability, domain.ColResourceID, "FTEs", "FTEs_total"},
		a.Display.Columns())
}

func TestConsolidate_StableWithoutSecondaryColumn(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status", "Row"},
		[]interface{}{"Beta", 1, "IN", "r1"},
		[]interface{}{"Alpha", 1, "IN", "r2"},
		[]interface{}{"Beta", 1, "IN", "r3"},
		[]interface{}{"Alpha", 1, "IN", "r4"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)

	assert.Equal(t, []string{"r2", "r4", "r1", "r3"}, column(t, a.Selection, "Row"))
}

func TestConsolidate_Validation(t *testing.T) {
	t.Run("missing FTEs", func(t *testing.T) {
		input := buildTable(t, []string{"Supplier", "Status"}, []interface{}{"A", "IN"})
		_, err := Consolidate(input, statusOptions())

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, domain.MsgMissingColumns, verr.Message)
		assert.Equal(t, []string{"FTEs"}, verr.Missing)
	})

	t.Run("missing both", func(t *testing.T) {
		input := buildTable(t, []string{"Status"})
		_, err := Consolidate(input, statusOptions())

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Supplier", "FTEs"}, verr.Missing)
	})

	t.Run("missing status column", func(t *testing.T) {
		input := buildTable(t, []string{"Supplier", "FTEs"}, []interface{}{"A", 1})
		_, err := Consolidate(input, domain.DefaultAnalysisOptions())

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{domain.DefaultStatusColumn}, verr.Missing)
	})

	t.Run("status filtering disabled", func(t *testing.T) {
		input := buildTable(t, []string{"Supplier", "FTEs"}, []interface{}{"A", 1})
		opts := domain.DefaultAnalysisOptions()
		opts.StatusColumn = ""

		a, err := Consolidate(input, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Selection.Len())
	})
}

func TestConsolidate_EmptySelection(t *testing.T) {
	input := buildTable(t, []string{"Supplier", "FTEs", "Status"},
		[]interface{}{"Big", 10, "IN"},
	)

	a, err := Consolidate(input, statusOptions("IN"))
	require.NoError(t, err)
	assert.True(t, a.Empty())
	assert.Equal(t, 0, a.Display.Len())
	assert.Len(t, a.Totals, 1)
}
