package pdftable

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

func charCount(s string) float64 { return float64(len(s)) }

func TestFitWidths(t *testing.T) {
	t.Run("scales down proportionally", func(t *testing.T) {
		natural := []float64{100, 300, 600}
		got := FitWidths(natural, 500)

		sum := 0.0
		for _, w := range got {
			sum += w
		}
		assert.InDelta(t, 500, sum, 1e-9)
		assert.InDelta(t, got[1]/got[0], 3, 1e-9)
		assert.InDelta(t, got[2]/got[0], 6, 1e-9)
		assert.Equal(t, []float64{100, 300, 600}, natural)
	})

	t.Run("never scales up", func(t *testing.T) {
		got := FitWidths([]float64{50, 60}, 500)
		assert.Equal(t, []float64{50, 60}, got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, FitWidths(nil, 100))
	})
}

func TestNaturalWidths(t *testing.T) {
	got := NaturalWidths(
		[]string{"Supplier", "FTEs"},
		[][]string{{"A", "12.50"}, {"Longer supplier", "1.00"}},
		charCount,
	)
	assert.Equal(t, []float64{15 + ColumnPadding, 5 + ColumnPadding}, got)
}

func TestFontSizeFor(t *testing.T) {
	assert.Equal(t, 8.0, FontSizeFor(1))
	assert.Equal(t, 8.0, FontSizeFor(6))
	assert.Equal(t, 7.0, FontSizeFor(7))
	assert.Equal(t, 7.0, FontSizeFor(10))
	assert.Equal(t, 6.0, FontSizeFor(11))
}

func TestOrientationFor(t *testing.T) {
	assert.Equal(t, OrientationPortrait, OrientationFor(5))
	assert.Equal(t, OrientationLandscape, OrientationFor(6))
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "FTEs total", FormatHeader("FTEs_total"))
}

func TestWrapWords(t *testing.T) {
	lines := wrapWords("L1: Capability/Function", 10, charCount)
	assert.Equal(t, []string{"L1:", "Capability/Function"}, lines)

	lines = wrapWords("a b c", 3, charCount)
	assert.Equal(t, []string{"a b", "c"}, lines)
}

func supplierTable(t *testing.T, rows int) *table.Table {
	t.Helper()
	tbl := table.MustNew("Supplier", "FTEs", "FTEs_total")
	for i := 0; i < rows; i++ {
		require.NoError(t, tbl.AppendRow(
			table.Text(fmt.Sprintf("S-%03d", i)),
			table.Number(0.5),
			table.Number(1.25),
		))
	}
	return tbl
}

func TestRender_RepeatsHeaderOnEveryPage(t *testing.T) {
	data, err := Render(supplierTable(t, 200), "Supplier con FTE tra 0 e 3", WithCompression(false))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	pages := reader.NumPage()
	require.Greater(t, pages, 1)

	assert.Equal(t, pages, strings.Count(string(data), "(Supplier) Tj"))
	assert.Equal(t, 1, strings.Count(string(data), "(Supplier con FTE tra 0 e 3) Tj"))
}

func TestRender_EmptyTable(t *testing.T) {
	data, err := Render(table.MustNew("Supplier", "FTEs"), "Empty")
	require.NoError(t, err)

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, reader.NumPage())
}

func TestRender_WideTable(t *testing.T) {
	cols := make([]string, 12)
	cells := make([]table.Cell, 12)
	for j := range cols {
		cols[j] = fmt.Sprintf("Column with a fairly long header %d", j)
		cells[j] = table.Text(strings.Repeat("x", 40))
	}
	tbl := table.MustNew(cols...)
	require.NoError(t, tbl.AppendRow(cells...))

	data, err := Render(tbl, "Wide")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRender_SplitsRowTallerThanPage(t *testing.T) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	tbl := table.MustNew("Supplier", "Note")
	require.NoError(t, tbl.AppendRow(table.Text("Acme"), table.Text(strings.Join(words, " "))))
	require.NoError(t, tbl.AppendRow(table.Text("tail"), table.Text("short")))

	var logs bytes.Buffer
	data, err := Render(tbl, "Notes", WithCompression(false), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	pages := reader.NumPage()
	require.Greater(t, pages, 1)

	raw := string(data)
	assert.Equal(t, pages, strings.Count(raw, "(Supplier) Tj"))
	assert.Contains(t, raw, "w4999")
	assert.Contains(t, raw, "(tail) Tj")
	assert.Contains(t, logs.String(), "taller than a page")
}

func TestSplitLines(t *testing.T) {
	head, rest := splitLines([][]string{{"a", "b", "c"}, {"x"}}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"x"}}, head)
	assert.Equal(t, [][]string{{"c"}, {}}, rest)
	assert.Equal(t, 1, maxLines(rest))
}
