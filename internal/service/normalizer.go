package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// NormalizeFTE reduces a cell to a Number or Missing. Numbers pass through.
// Anything else is stringified, every comma becomes a period and every rune
// other than digits, '.' and '-' is dropped before parsing. It never fails.
//
// Stripping is literal: "1.234" stays 1.234 and "1.234,56" does not parse.
func NormalizeFTE(c table.Cell) table.Cell {
	switch c.Kind() {
	case table.KindNumber:
		return c
	case table.KindMissing:
		return table.Missing()
	}

	s := strings.TrimSpace(c.String())
	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumeric.ReplaceAllString(s, "")
	switch s {
	case "", ".", "-":
		return table.Missing()
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return table.Missing()
	}
	return table.Number(v)
}

// NormalizeSupplierKey trims a supplier name and collapses whitespace runs
// to one space. Case is kept.
func NormalizeSupplierKey(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// supplierText is the trimmed supplier name; a missing supplier is "".
func supplierText(c table.Cell) string {
	if c.IsMissing() {
		return ""
	}
	return strings.TrimSpace(c.String())
}
