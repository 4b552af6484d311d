package pdftable

import (
	"strings"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const (
	OrientationPortrait  = "P"
	OrientationLandscape = "L"

	// ReferenceFontSize is the size columns are measured at.
	ReferenceFontSize = 8.0
	// ColumnPadding is added to every measured column width.
	ColumnPadding = 15.0

	maxPortraitColumns = 5
)

// OrientationFor picks landscape for tables wider than five columns.
func OrientationFor(numColumns int) string {
	if numColumns > maxPortraitColumns {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// FontSizeFor returns the table font size for a column count.
func FontSizeFor(numColumns int) float64 {
	switch {
	case numColumns <= 6:
		return 8
	case numColumns <= 10:
		return 7
	default:
		return 6
	}
}

// FormatCell renders numbers with two decimals, dates day-first and text as is.
func FormatCell(c table.Cell) string {
	return c.Format()
}

// FormatHeader renders a column name for the header row.
func FormatHeader(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// NaturalWidths returns, per column, the widest of the header and every cell
// text plus ColumnPadding.
func NaturalWidths(headers []string, rows [][]string, measure func(string) float64) []float64 {
	widths := make([]float64, len(headers))
	for j, h := range headers {
		widths[j] = measure(h)
	}
	for _, row := range rows {
		for j := 0; j < len(widths) && j < len(row); j++ {
			if w := measure(row[j]); w > widths[j] {
				widths[j] = w
			}
		}
	}
	for j := range widths {
		widths[j] += ColumnPadding
	}
	return widths
}

// FitWidths scales widths down by one common ratio so they sum to available.
// Widths that already fit are returned unchanged.
func FitWidths(widths []float64, available float64) []float64 {
	out := make([]float64, len(widths))
	copy(out, widths)

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total <= available || total == 0 {
		return out
	}

	scale := available / total
	for j := range out {
		out[j] *= scale
	}
	return out
}

// wrapWords breaks text into lines no wider than width, only at spaces.
// A single word wider than width stays on its own line.
func wrapWords(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}
