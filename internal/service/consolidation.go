package service

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

// Consolidate runs the supplier FTE analysis over a consolidated report.
//
// Rows are kept when their status is in scope, grouped by normalized
// supplier and summed. Groups whose total lies in [opts.Min, opts.Max] are
// joined back onto their rows, which are sorted by supplier key and then by
// the secondary column.
func Consolidate(t *table.Table, opts domain.AnalysisOptions) (*domain.Analysis, error) {
	if missing := t.MissingColumns(domain.ColSupplier, domain.ColFTEs); len(missing) > 0 {
		return nil, domain.NewValidationError(domain.MsgMissingColumns, missing...)
	}
	if opts.StatusColumn != "" && !t.HasColumn(opts.StatusColumn) {
		return nil, domain.NewValidationError(fmt.Sprintf(domain.MsgMissingStatus, opts.StatusColumn), opts.StatusColumn)
	}

	// 0. Prepare: trimmed supplier, clean FTEs, grouping key
	prepared, err := prepare(t)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare consolidated rows: %w", err)
	}

	// 1. Keep in-scope statuses only
	filtered := filterByStatus(prepared, opts.StatusColumn, opts.InScope)

	// 2. Group and sum per supplier key
	totals := groupTotals(filtered)

	// 3. Select groups in range
	selected := make(map[string]float64)
	for _, g := range totals {
		if g.InRange(opts.Min, opts.Max) {
			selected[g.Supplier] = *g.Total
		}
	}

	// 4. Join totals back and sort
	selection, err := joinSelected(filtered, selected, opts.SecondaryColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to join supplier totals: %w", err)
	}

	display, err := selection.Select(DisplayColumns(selection)...)
	if err != nil {
		return nil, fmt.Errorf("failed to project display columns: %w", err)
	}

	return &domain.Analysis{
		Filtered:    filtered,
		Totals:      totals,
		TotalsTable: totalsTable(totals),
		Selection:   selection,
		Display:     display,
	}, nil
}

// DisplayColumns lists the columns shown for a selection: Supplier, the
// capability and resource id when present, FTEs and FTEs_total.
func DisplayColumns(t *table.Table) []string {
	cols := []string{domain.ColSupplier}
	for _, optional := range []string{domain.ColCapability, domain.ColResourceID} {
		if t.HasColumn(optional) {
			cols = append(cols, optional)
		}
	}
	return append(cols, domain.ColFTEs, domain.ColFTEsTotal)
}

func prepare(t *table.Table) (*table.Table, error) {
	n := t.Len()
	suppliers := make([]table.Cell, n)
	clean := make([]table.Cell, n)
	keys := make([]table.Cell, n)

	for i := 0; i < n; i++ {
		raw := t.Cell(i, domain.ColSupplier)
		name := supplierText(raw)
		if raw.IsMissing() {
			suppliers[i] = raw
		} else {
			suppliers[i] = table.Text(name)
		}
		clean[i] = NormalizeFTE(t.Cell(i, domain.ColFTEs))
		keys[i] = table.Text(NormalizeSupplierKey(name))
	}

	out, err := t.WithColumn(domain.ColSupplier, suppliers)
	if err != nil {
		return nil, err
	}
	if out, err = out.WithColumn(domain.ColFTEsClean, clean); err != nil {
		return nil, err
	}
	return out.WithColumn(domain.ColSupplierNorm, keys)
}

// filterByStatus keeps rows whose status text is an exact member of inScope.
// Missing statuses never match.
func filterByStatus(t *table.Table, column string, inScope []string) *table.Table {
	if column == "" {
		return t
	}
	allowed := make(map[string]struct{}, len(inScope))
	for _, s := range inScope {
		allowed[s] = struct{}{}
	}
	return t.Filter(func(i int) bool {
		c := t.Cell(i, column)
		if c.IsMissing() {
			return false
		}
		_, ok := allowed[c.String()]
		return ok
	})
}

// groupTotals sums FTEs_clean per key. A group with no present value has a
// nil total instead of zero.
func groupTotals(t *table.Table) []domain.SupplierTotal {
	type acc struct {
		sum     decimal.Decimal
		present bool
		rows    int
	}
	index := make(map[string]*acc)

	for i := 0; i < t.Len(); i++ {
		key := t.Cell(i, domain.ColSupplierNorm).String()
		a, ok := index[key]
		if !ok {
			a = &acc{sum: decimal.Zero}
			index[key] = a
		}
		a.rows++
		if v, ok := t.Cell(i, domain.ColFTEsClean).Float(); ok {
			a.sum = a.sum.Add(decimal.NewFromFloat(v))
			a.present = true
		}
	}

	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make([]domain.SupplierTotal, 0, len(keys))
	for _, k := range keys {
		a := index[k]
		g := domain.SupplierTotal{Supplier: k, Rows: a.rows}
		if a.present {
			v := a.sum.InexactFloat64()
			g.Total = &v
		}
		totals = append(totals, g)
	}
	return totals
}

func totalsTable(totals []domain.SupplierTotal) *table.Table {
	t := table.MustNew(domain.ColSupplierNorm, domain.ColFTEsTotal)
	for _, g := range totals {
		total := table.Missing()
		if g.Total != nil {
			total = table.Number(*g.Total)
		}
		// widths always match
		_ = t.AppendRow(table.Text(g.Supplier), total)
	}
	return t
}

func joinSelected(t *table.Table, selected map[string]float64, secondary string) (*table.Table, error) {
	members := t.Filter(func(i int) bool {
		_, ok := selected[t.Cell(i, domain.ColSupplierNorm).String()]
		return ok
	})

	totals := make([]table.Cell, members.Len())
	for i := range totals {
		totals[i] = table.Number(selected[members.Cell(i, domain.ColSupplierNorm).String()])
	}
	joined, err := members.WithColumn(domain.ColFTEsTotal, totals)
	if err != nil {
		return nil, err
	}

	order := make([]int, joined.Len())
	for i := range order {
		order[i] = i
	}
	bySecondary := secondary != "" && joined.HasColumn(secondary)
	sort.SliceStable(order, func(a, b int) bool {
		ka := joined.Cell(order[a], domain.ColSupplierNorm).String()
		kb := joined.Cell(order[b], domain.ColSupplierNorm).String()
		if ka != kb {
			return ka < kb
		}
		if !bySecondary {
			return false
		}
		return table.Compare(joined.Cell(order[a], secondary), joined.Cell(order[b], secondary)) < 0
	})
	return joined.Pick(order), nil
}
