package pdftable

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const (
	fontFamily       = "Helvetica"
	lineHeightFactor = 1.2
	cellPaddingY     = 3.0
)

// Render draws title followed by t as a gridded table and returns the PDF
// bytes. The header row repeats at the top of every page.
func Render(t *table.Table, title string, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := newRenderer(t, cfg)
	r.drawTitle(title)
	if t.NumColumns() > 0 {
		r.drawTable()
	}

	if err := r.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := r.pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	cfg.logger.Debug().
		Int("rows", t.Len()).
		Int("columns", t.NumColumns()).
		Int("pages", r.pdf.PageCount()).
		Msg("PDF table rendered")
	return buf.Bytes(), nil
}

type renderer struct {
	pdf      *gofpdf.Fpdf
	cfg      config
	tr       func(string) string
	fontSize float64
	lineH    float64
	pageH    float64
	usable   float64

	headers []string
	rows    [][]string
	widths  []float64
}

func newRenderer(t *table.Table, cfg config) *renderer {
	cols := t.Columns()

	pdf := gofpdf.New(OrientationFor(len(cols)), "pt", cfg.pageSize, "")
	pdf.SetMargins(cfg.margins.Left, cfg.margins.Top, cfg.margins.Right)
	pdf.SetAutoPageBreak(false, cfg.margins.Bottom)
	pdf.SetCompression(cfg.compress)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	r := &renderer{
		pdf:      pdf,
		cfg:      cfg,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		fontSize: FontSizeFor(len(cols)),
		pageH:    pageH,
		usable:   pageW - cfg.margins.Left - cfg.margins.Right,
	}
	r.lineH = r.fontSize * lineHeightFactor

	r.headers = make([]string, len(cols))
	for j, name := range cols {
		r.headers[j] = r.tr(FormatHeader(name))
	}
	r.rows = make([][]string, t.Len())
	for i, row := range t.Rows() {
		texts := make([]string, len(row))
		for j, c := range row {
			texts[j] = r.tr(FormatCell(c))
		}
		r.rows[i] = texts
	}

	pdf.SetFont(fontFamily, "", ReferenceFontSize)
	r.widths = FitWidths(NaturalWidths(r.headers, r.rows, pdf.GetStringWidth), r.usable)
	return r
}

func (r *renderer) drawTitle(title string) {
	if title == "" {
		return
	}
	r.pdf.SetFont(fontFamily, "B", r.cfg.titleSize)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.MultiCell(r.usable, r.cfg.titleSize*lineHeightFactor, r.tr(title), "", "C", false)
	r.pdf.Ln(r.cfg.titleSpacer)
}

func (r *renderer) drawTable() {
	r.pdf.SetLineWidth(r.cfg.gridWidth)
	r.pdf.SetDrawColor(r.cfg.gridColor.R, r.cfg.gridColor.G, r.cfg.gridColor.B)

	r.drawHeader()
	onPage := 0
	for i, row := range r.rows {
		r.pdf.SetFont(fontFamily, "", r.fontSize)
		lines := r.dataLines(row)
		for {
			h := r.rowHeight(lines)
			avail := r.pageH - r.cfg.margins.Bottom - r.pdf.GetY()
			if h <= avail {
				r.drawRow(lines, h, false)
				onPage++
				break
			}
			if onPage > 0 {
				r.newPage()
				onPage = 0
				continue
			}

			// Taller than a whole page: fill this one and carry the rest over.
			fit := int((avail - 2*cellPaddingY) / r.lineH)
			if fit < 1 {
				fit = 1
			}
			r.cfg.logger.Warn().
				Int("row", i).
				Int("lines", maxLines(lines)).
				Int("lines_on_page", fit).
				Msg("PDF row taller than a page, splitting across pages")
			head, rest := splitLines(lines, fit)
			r.drawRow(head, r.rowHeight(head), false)
			r.newPage()
			lines = rest
		}
	}
}

func (r *renderer) newPage() {
	r.pdf.AddPage()
	r.drawHeader()
	r.pdf.SetFont(fontFamily, "", r.fontSize)
}

// splitLines cuts every cell after its first n lines.
func splitLines(lines [][]string, n int) (head, rest [][]string) {
	head = make([][]string, len(lines))
	rest = make([][]string, len(lines))
	for j, cell := range lines {
		k := n
		if k > len(cell) {
			k = len(cell)
		}
		head[j] = cell[:k]
		rest[j] = cell[k:]
	}
	return head, rest
}

func maxLines(lines [][]string) int {
	most := 1
	for _, l := range lines {
		if len(l) > most {
			most = len(l)
		}
	}
	return most
}

func (r *renderer) drawHeader() {
	r.pdf.SetFont(fontFamily, "B", r.fontSize)
	lines := make([][]string, len(r.headers))
	margin := r.pdf.GetCellMargin()
	for j, h := range r.headers {
		lines[j] = wrapWords(h, r.widths[j]-2*margin, r.pdf.GetStringWidth)
	}
	r.drawRow(lines, r.rowHeight(lines), true)
}

func (r *renderer) dataLines(row []string) [][]string {
	lines := make([][]string, len(row))
	for j, text := range row {
		split := r.pdf.SplitLines([]byte(text), r.widths[j])
		if len(split) == 0 {
			lines[j] = []string{""}
			continue
		}
		cell := make([]string, len(split))
		for k, l := range split {
			cell[k] = string(l)
		}
		lines[j] = cell
	}
	return lines
}

func (r *renderer) rowHeight(lines [][]string) float64 {
	return float64(maxLines(lines))*r.lineH + 2*cellPaddingY
}

// drawRow draws one row of bordered cells with every line centred both ways.
func (r *renderer) drawRow(lines [][]string, h float64, header bool) {
	style := "D"
	if header {
		style = "FD"
		r.pdf.SetFillColor(r.cfg.headerFill.R, r.cfg.headerFill.G, r.cfg.headerFill.B)
	}
	r.pdf.SetTextColor(0, 0, 0)

	x := r.cfg.margins.Left
	y := r.pdf.GetY()
	for j, cell := range lines {
		w := r.widths[j]
		r.pdf.Rect(x, y, w, h, style)

		ly := y + (h-float64(len(cell))*r.lineH)/2
		for _, line := range cell {
			r.pdf.SetXY(x, ly)
			r.pdf.CellFormat(w, r.lineH, line, "", 0, "CM", false, 0, "")
			ly += r.lineH
		}
		x += w
	}
	r.pdf.SetXY(r.cfg.margins.Left, y+h)
}
