package simpleexcel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

// ErrInvalidWorkbook indicates the uploaded bytes are not a readable xlsx file.
var ErrInvalidWorkbook = errors.New("invalid xlsx workbook")

// ReadError reports which sheet failed to load.
type ReadError struct {
	SheetName string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read sheet %q: %v", e.SheetName, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ReadWorkbook parses every sheet of an xlsx stream. The first row of each
// sheet is its header row.
func ReadWorkbook(r io.Reader) (*table.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sr := newSheetReader(f)
	wb := &table.Workbook{}
	for _, name := range f.GetSheetList() {
		t, err := sr.read(name)
		if err != nil {
			return nil, &ReadError{SheetName: name, Err: err}
		}
		wb.Sheets = append(wb.Sheets, table.Sheet{Name: name, Table: t})
	}
	return wb, nil
}

// ReadFirstSheet parses only the first sheet of an xlsx stream.
func ReadFirstSheet(r io.Reader) (table.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table.Sheet{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.Sheet{}, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}
	t, err := newSheetReader(f).read(sheets[0])
	if err != nil {
		return table.Sheet{}, &ReadError{SheetName: sheets[0], Err: err}
	}
	return table.Sheet{Name: sheets[0], Table: t}, nil
}

type sheetReader struct {
	f          *excelize.File
	date1904   bool
	dateStyles map[int]bool
}

func newSheetReader(f *excelize.File) *sheetReader {
	sr := &sheetReader{f: f, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sr.date1904 = *props.Date1904
	}
	return sr
}

func (sr *sheetReader) read(sheet string) (*table.Table, error) {
	rows, err := sr.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return table.New()
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	t, err := table.New(headerNames(rows[0], width)...)
	if err != nil {
		return nil, err
	}

	for i, raw := range rows[1:] {
		rowNum := i + 2
		cells := make([]table.Cell, width)
		for j := 0; j < width; j++ {
			if j >= len(raw) || raw[j] == "" {
				continue
			}
			axis, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			cells[j] = sr.cell(sheet, axis, raw[j])
		}
		if err := t.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// headerNames makes names unique the way spreadsheet tools usually do:
// blanks become "Unnamed: N" and repeats get a ".1", ".2" suffix.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for j := 0; j < width; j++ {
		name := ""
		if j < len(header) {
			name = header[j]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", j)
		}
		base := name
		for n := seen[base]; ; n++ {
			if n > 0 {
				name = fmt.Sprintf("%s.%d", base, n)
			}
			if _, dup := seen[name]; !dup {
				seen[base] = n + 1
				break
			}
		}
		seen[name] = 1
		names[j] = name
	}
	return names
}

func (sr *sheetReader) cell(sheet, axis, raw string) table.Cell {
	typ, err := sr.f.GetCellType(sheet, axis)
	if err != nil {
		return table.Text(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return table.Text("TRUE")
		}
		return table.Text("FALSE")
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if d, err := time.Parse(layout, raw); err == nil {
				return table.Date(d)
			}
		}
		return table.Text(raw)
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return table.Text(raw)
		}
		if sr.isDateCell(sheet, axis) {
			if d, err := excelize.ExcelDateToTime(v, sr.date1904); err == nil {
				return table.Date(d)
			}
		}
		return table.Number(v)
	default:
		return table.Text(raw)
	}
}

func (sr *sheetReader) isDateCell(sheet, axis string) bool {
	styleID, err := sr.f.GetCellStyle(sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := sr.dateStyles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := sr.f.GetStyle(styleID); err == nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	sr.dateStyles[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a builtin or custom number format renders
// dates.
func isDateNumFmt(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateFormatCode(*custom)
	}
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	plain := strings.ToLower(b.String())
	if plain == "general" {
		return false
	}
	return strings.ContainsAny(plain, "yd")
}
