package table

import (
	"errors"
	"fmt"
)

var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is a named table inside a workbook.
type Sheet struct {
	Name  string
	Table *Table
}

// Workbook is an ordered collection of sheets.
type Workbook struct {
	Sheets []Sheet
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the table of the named sheet.
func (w *Workbook) Sheet(name string) (*Table, error) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s.Table, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// First returns the first sheet of the workbook.
func (w *Workbook) First() (Sheet, error) {
	if len(w.Sheets) == 0 {
		return Sheet{}, fmt.Errorf("%w: workbook is empty", ErrSheetNotFound)
	}
	return w.Sheets[0], nil
}

// WithSheet returns a copy of the workbook where the named sheet's table is
// replaced. Other sheets keep their position and content.
func (w *Workbook) WithSheet(name string, t *Table) (*Workbook, error) {
	out := &Workbook{Sheets: make([]Sheet, len(w.Sheets))}
	found := false
	for i, s := range w.Sheets {
		if s.Name == name {
			s = Sheet{Name: name, Table: t}
			found = true
		}
		out.Sheets[i] = s
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return out, nil
}
