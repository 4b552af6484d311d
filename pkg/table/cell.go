package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Cell holds.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

const (
	// DisplayDateLayout is the day-first layout used in grids and reports.
	DisplayDateLayout = "02/01/2006"
	// PlainDateLayout is the layout used when a date is stringified.
	PlainDateLayout = "2006-01-02 15:04:05"
)

// Cell is a single spreadsheet value: Number, Text, Date or Missing.
// The zero value is Missing.
type Cell struct {
	kind Kind
	num  float64
	text string
	date time.Time
}

// Number returns a numeric cell. Non-finite values are stored as Missing.
func Number(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{kind: KindNumber, num: v}
}

// Text returns a text cell.
func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

// Date returns a date cell.
func Date(t time.Time) Cell {
	return Cell{kind: KindDate, date: t}
}

// Missing returns an empty cell.
func Missing() Cell {
	return Cell{}
}

func (c Cell) Kind() Kind { return c.kind }

func (c Cell) IsMissing() bool { return c.kind == KindMissing }

// Float returns the numeric value and whether the cell is a Number.
func (c Cell) Float() (float64, bool) {
	return c.num, c.kind == KindNumber
}

// Time returns the date value and whether the cell is a Date.
func (c Cell) Time() (time.Time, bool) {
	return c.date, c.kind == KindDate
}

// String renders the plain text form of the cell. Missing renders as "".
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return c.text
	case KindDate:
		return c.date.Format(PlainDateLayout)
	default:
		return ""
	}
}

// Format renders numbers with two decimals and dates day-first.
func (c Cell) Format() string {
	switch c.kind {
	case KindNumber:
		return fmt.Sprintf("%.2f", c.num)
	case KindDate:
		return c.date.Format(DisplayDateLayout)
	default:
		return c.String()
	}
}

// Value returns the cell as a plain Go value for spreadsheet writers:
// float64, string, time.Time or nil.
func (c Cell) Value() interface{} {
	switch c.kind {
	case KindNumber:
		return c.num
	case KindText:
		return c.text
	case KindDate:
		return c.date
	default:
		return nil
	}
}

// FromValue converts a loosely typed Go value into a Cell.
func FromValue(v interface{}) Cell {
	switch x := v.(type) {
	case nil:
		return Missing()
	case Cell:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case time.Time:
		return Date(x)
	case bool:
		if x {
			return Text("TRUE")
		}
		return Text("FALSE")
	case string:
		return Text(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

func kindRank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindDate:
		return 1
	case KindText:
		return 2
	default:
		return 3
	}
}

// Compare orders cells: numbers, then dates, then text, Missing last.
// It returns -1, 0 or 1.
func Compare(a, b Cell) int {
	ra, rb := kindRank(a.kind), kindRank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case KindDate:
		switch {
		case a.date.Before(b.date):
			return -1
		case a.date.After(b.date):
			return 1
		}
	case KindText:
		return strings.Compare(a.text, b.text)
	}
	return 0
}

// MarshalJSON encodes numbers as JSON numbers, Missing as null and
// everything else as its display string.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindNumber:
		return json.Marshal(c.num)
	case KindText:
		return json.Marshal(c.text)
	case KindDate:
		return json.Marshal(c.date.Format(DisplayDateLayout))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, numbers, booleans and strings.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = FromValue(raw)
	return nil
}
