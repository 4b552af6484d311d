package simpleexcel

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants & Types
// =============================================================================

const (
	DefaultDateFormat  = "dd/mm/yyyy"
	DefaultColumnWidth = 20
)

// ExcelDataExporter is the main entry point for exporting data.
type ExcelDataExporter struct {
	// data holds data bound to specific section IDs (for YAML flow)
	data map[string]interface{}
	// sheets holds both YAML-initialized and programmatically added sheets
	sheets []*SheetBuilder
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a section of data in a sheet.
type SectionConfig struct {
	ID           string         `yaml:"id"`
	Data         interface{}    `yaml:"-"` // Data is bound at runtime
	ShowHeader   bool           `yaml:"show_header"`
	HeaderStyle  *StyleTemplate `yaml:"header_style"`
	DataStyle    *StyleTemplate `yaml:"data_style"`
	HasFilter    bool           `yaml:"has_filter"`
	FreezeHeader bool           `yaml:"freeze_header"`
	Columns      []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"` // Struct field name or map key
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate      `yaml:"font"`
	Fill      *FillTemplate      `yaml:"fill"`
	Alignment *AlignmentTemplate `yaml:"alignment"`
	NumFmt    string             `yaml:"num_fmt"`
}

type AlignmentTemplate struct {
	Horizontal string `yaml:"horizontal"` // center, left, right
	Vertical   string `yaml:"vertical"`   // top, center, bottom
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// =============================================================================
// Constructors
// =============================================================================

func NewExcelDataExporter() *ExcelDataExporter {
	return &ExcelDataExporter{
		data:   make(map[string]interface{}),
		sheets: []*SheetBuilder{},
	}
}

func NewExcelDataExporterFromYamlConfig(yamlConfig string) (*ExcelDataExporter, error) {
	var tmpl ReportTemplate
	if yamlConfig == "" {
		return nil, fmt.Errorf("yaml config is empty")
	}
	if err := yaml.Unmarshal([]byte(yamlConfig), &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	exporter := NewExcelDataExporter()
	for i := range tmpl.Sheets {
		sheetTmpl := &tmpl.Sheets[i]
		sb := &SheetBuilder{
			name:     sheetTmpl.Name,
			sections: make([]*SectionConfig, len(sheetTmpl.Sections)),
		}
		for j := range sheetTmpl.Sections {
			sb.sections[j] = &sheetTmpl.Sections[j]
		}
		exporter.sheets = append(exporter.sheets, sb)
	}

	return exporter, nil
}

// =============================================================================
// Fluent API
// =============================================================================

// AddSheet starts a new sheet builder.
func (e *ExcelDataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{
		name:     name,
		sections: []*SectionConfig{},
	}
	e.sheets = append(e.sheets, sb)
	return sb
}

// BindSectionData binds data to a section ID (for YAML-based export).
func (e *ExcelDataExporter) BindSectionData(id string, data interface{}) *ExcelDataExporter {
	e.data[id] = data
	return e
}

// BindSectionColumns replaces the columns of every section with the given ID.
// Used when the column set is only known at runtime.
func (e *ExcelDataExporter) BindSectionColumns(id string, cols []ColumnConfig) *ExcelDataExporter {
	for _, sb := range e.sheets {
		for _, sec := range sb.sections {
			if sec.ID == id {
				sec.Columns = cols
			}
		}
	}
	return e
}

// BuildExcel generates the excel file from every configured sheet.
func (e *ExcelDataExporter) BuildExcel() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	f := excelize.NewFile()

	for i, sb := range e.sheets {
		sheetName := sb.name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheetName); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet %q: %w", sheetName, err)
			}
		} else if _, err := f.NewSheet(sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", sheetName, err)
		}

		// Late binding for sections that have an ID and matching data in e.data
		for _, sec := range sb.sections {
			if sec.ID != "" {
				if data, ok := e.data[sec.ID]; ok {
					sec.Data = data
				}
			}
		}

		if err := renderSections(f, sheetName, sb.sections); err != nil {
			f.Close()
			return nil, fmt.Errorf("render sheet %q: %w", sheetName, err)
		}
	}

	return f, nil
}

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *ExcelDataExporter) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := e.ToWriter(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter exports the Excel file directly to a writer.
func (e *ExcelDataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// =============================================================================
// SheetBuilder
// =============================================================================

type SheetBuilder struct {
	name     string
	sections []*SectionConfig
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

// =============================================================================
// Rendering Logic
// =============================================================================

// sectionStyles caches the style IDs of one section.
type sectionStyles struct {
	header, data, date int
}

func newSectionStyles(f *excelize.File, sec *SectionConfig) (sectionStyles, error) {
	var s sectionStyles
	var err error

	defaultHeader := &StyleTemplate{
		Font:      &FontTemplate{Bold: true},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "top"},
	}
	if s.header, err = createStyle(f, resolveStyle(sec.HeaderStyle, defaultHeader)); err != nil {
		return s, err
	}

	if s.data, err = createStyle(f, resolveStyle(sec.DataStyle, nil)); err != nil {
		return s, err
	}

	dateStyle := resolveStyle(sec.DataStyle, nil)
	dateStyle.NumFmt = DefaultDateFormat
	if s.date, err = createStyle(f, dateStyle); err != nil {
		return s, err
	}
	return s, nil
}

func renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	currentRow := 1

	for _, sec := range sections {
		// Determine effective columns merging user config and data fields
		sec.Columns = mergeColumns(sec.Data, sec.Columns)

		styles, err := newSectionStyles(f, sec)
		if err != nil {
			return err
		}

		// Render Header
		headerRow := 0
		if sec.ShowHeader && len(sec.Columns) > 0 {
			headerRow = currentRow
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(i+1, currentRow)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
					return err
				}
			}
			currentRow++
		}

		for i, col := range sec.Columns {
			width := col.Width
			if width <= 0 {
				width = DefaultColumnWidth
			}
			colName, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
				return err
			}
		}

		// Render Data
		dataVal := reflect.ValueOf(sec.Data)
		if dataVal.Kind() == reflect.Ptr {
			dataVal = dataVal.Elem()
		}
		dataLen := 0
		if dataVal.Kind() == reflect.Slice {
			dataLen = dataVal.Len()
		}
		for i := 0; i < dataLen; i++ {
			item := dataVal.Index(i)
			for j, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(j+1, currentRow)
				val := extractValue(item, col.FieldName)

				styleID := styles.data
				if _, ok := val.(time.Time); ok {
					styleID = styles.date
				}
				if val != nil {
					if err := f.SetCellValue(sheet, cell, val); err != nil {
						return err
					}
				}
				if styleID != 0 {
					if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
						return err
					}
				}
			}
			currentRow++
		}

		if headerRow > 0 && sec.HasFilter {
			firstCell, _ := excelize.CoordinatesToCellName(1, headerRow)
			lastCell, _ := excelize.CoordinatesToCellName(len(sec.Columns), currentRow-1)
			if err := f.AutoFilter(sheet, fmt.Sprintf("%s:%s", firstCell, lastCell), []excelize.AutoFilterOptions{}); err != nil {
				return err
			}
		}

		if headerRow > 0 && sec.FreezeHeader {
			topLeft, _ := excelize.CoordinatesToCellName(1, headerRow+1)
			if err := f.SetPanes(sheet, &excelize.Panes{
				Freeze:      true,
				YSplit:      headerRow,
				TopLeftCell: topLeft,
				ActivePane:  "bottomLeft",
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveStyle merges defined style with default style.
func resolveStyle(base *StyleTemplate, defaultStyle *StyleTemplate) *StyleTemplate {
	s := &StyleTemplate{}

	if base == nil {
		if defaultStyle != nil {
			*s = *defaultStyle
		}
		return s
	}

	*s = *base
	if defaultStyle == nil {
		return s
	}
	if s.Font == nil {
		s.Font = defaultStyle.Font
	}
	if s.Fill == nil {
		s.Fill = defaultStyle.Fill
	}
	if s.Alignment == nil {
		s.Alignment = defaultStyle.Alignment
	}
	if s.NumFmt == "" {
		s.NumFmt = defaultStyle.NumFmt
	}
	return s
}

func extractValue(item reflect.Value, fieldName string) interface{} {
	if item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		item = item.Elem()
	}
	if item.Kind() == reflect.Struct {
		f := item.FieldByName(fieldName)
		if f.IsValid() {
			return f.Interface()
		}
	} else if item.Kind() == reflect.Map {
		val := item.MapIndex(reflect.ValueOf(fieldName))
		if val.IsValid() {
			return val.Interface()
		}
	}
	return nil
}

// createStyle returns 0 (the default style) for an empty template.
func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	if tmpl == nil || (tmpl.Font == nil && tmpl.Fill == nil && tmpl.Alignment == nil && tmpl.NumFmt == "") {
		return 0, nil
	}

	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: tmpl.Alignment.Horizontal,
			Vertical:   tmpl.Alignment.Vertical,
		}
	}
	if tmpl.NumFmt != "" {
		numFmt := tmpl.NumFmt
		style.CustomNumFmt = &numFmt
	}
	return f.NewStyle(style)
}

// mergeColumns merges user-defined columns with detected fields from data.
// It prioritizes user-defined columns, then appends remaining detected fields.
func mergeColumns(data interface{}, userConfigs []ColumnConfig) []ColumnConfig {
	if data == nil {
		return userConfigs
	}

	seen := make(map[string]bool)
	var finalCols []ColumnConfig
	for _, col := range userConfigs {
		if col.Header == "" {
			col.Header = col.FieldName
		}
		seen[col.FieldName] = true
		finalCols = append(finalCols, col)
	}

	for _, field := range getFields(data) {
		if !seen[field] {
			finalCols = append(finalCols, ColumnConfig{
				FieldName: field,
				Header:    field,
				Width:     DefaultColumnWidth,
			})
			seen[field] = true
		}
	}

	return finalCols
}

// getFields lists exported struct fields of the first element. Map rows have
// no stable key order, so their columns must be configured explicitly.
func getFields(data interface{}) []string {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice || v.Len() == 0 {
		return nil
	}

	elem := v.Index(0)
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		fields = append(fields, field.Name)
	}
	return fields
}
