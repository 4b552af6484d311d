package simpleexcel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

func fixtureWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Capability"))
	require.NoError(t, f.SetSheetRow("Capability", "A1", &[]interface{}{"Supplier", "FTEs", "Start", "Supplier", ""}))
	require.NoError(t, f.SetSheetRow("Capability", "A2", &[]interface{}{"Acme", 1.5, nil, "dup", "x"}))
	require.NoError(t, f.SetSheetRow("Capability", "A3", &[]interface{}{"Beta", "2,5", nil, nil, nil}))
	require.NoError(t, f.SetCellBool("Capability", "B4", true))

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Capability", "C2", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellStyle("Capability", "C2", "C2", dateStyle))

	_, err = f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Second", "A1", &[]interface{}{"Only"}))

	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func TestReadWorkbook(t *testing.T) {
	wb, err := ReadWorkbook(bytes.NewReader(fixtureWorkbook(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Capability", "Second"}, wb.SheetNames())

	cap, err := wb.Sheet("Capability")
	require.NoError(t, err)
	assert.Equal(t, []string{"Supplier", "FTEs", "Start", "Supplier.1", "Unnamed: 4"}, cap.Columns())
	require.Equal(t, 3, cap.Len())

	v, ok := cap.Cell(0, "FTEs").Float()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	assert.Equal(t, table.KindText, cap.Cell(1, "FTEs").Kind())
	assert.Equal(t, "2,5", cap.Cell(1, "FTEs").String())

	d, ok := cap.Cell(0, "Start").Time()
	require.True(t, ok)
	assert.Equal(t, "03/06/2025", d.Format(table.DisplayDateLayout))

	assert.True(t, cap.Cell(1, "Start").IsMissing())
	assert.Equal(t, "TRUE", cap.Cell(2, "FTEs").String())
	assert.True(t, cap.Cell(2, "Supplier").IsMissing())
}

func TestReadWorkbookRejectsGarbage(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("definitely not a zip file")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestReadFirstSheet(t *testing.T) {
	sheet, err := ReadFirstSheet(bytes.NewReader(fixtureWorkbook(t)))
	require.NoError(t, err)
	assert.Equal(t, "Capability", sheet.Name)
	assert.Equal(t, 3, sheet.Table.Len())
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"A", "A", "A.1", " "}, 5)
	assert.Equal(t, []string{"A", "A.1", "A.1.1", "Unnamed: 3", "Unnamed: 4"}, got)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("dd/mm/yyyy"))
	assert.True(t, isDateFormatCode("[$-410]d-mmm-yy;@"))
	assert.False(t, isDateFormatCode("#,##0.00"))
	assert.False(t, isDateFormatCode(`0.00" days"`))
	assert.False(t, isDateFormatCode("General"))
}

func TestWorkbookRoundTrip(t *testing.T) {
	src := table.MustNew("Supplier", "FTEs", "Start")
	require.NoError(t, src.AppendRow(table.Text("Acme"), table.Number(2.25), table.Date(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, src.AppendRow(table.Text("Beta"), table.Missing(), table.Missing()))
	wb := &table.Workbook{Sheets: []table.Sheet{{Name: "Data", Table: src}, {Name: "Empty", Table: table.MustNew("x")}}}

	data, err := WorkbookBytes(wb)
	require.NoError(t, err)

	back, err := ReadWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Empty"}, back.SheetNames())

	got, err := back.Sheet("Data")
	require.NoError(t, err)
	assert.Equal(t, src.Columns(), got.Columns())
	require.Equal(t, 2, got.Len())

	v, ok := got.Cell(0, "FTEs").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.25, v)

	d, ok := got.Cell(0, "Start").Time()
	require.True(t, ok)
	assert.Equal(t, 2024, d.Year())
	assert.True(t, got.Cell(1, "FTEs").IsMissing())
}
