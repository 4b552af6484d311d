package service

import (
	_ "embed"
	"fmt"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/pkg/pdftable"
	"github.com/locvowork/supplier_fte_dashboard/pkg/simpleexcel"
	"github.com/locvowork/supplier_fte_dashboard/pkg/table"
)

const (
	SheetOriginal  = "Originale"
	SheetTotals    = "Supplier_FTE_totals"
	SheetSelection = "FTE_0_3_rows"

	PDFTitle = "Supplier con FTE tra 0 e 3 (Consolidato)"
)

//go:embed templates/analysis_report.yaml
var analysisReportTemplate string

// AnalysisWorkbook exports the filtered rows, the supplier totals and the
// selection as three tabs.
func AnalysisWorkbook(a *domain.Analysis) ([]byte, error) {
	exporter, err := simpleexcel.NewExcelDataExporterFromYamlConfig(analysisReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis template: %w", err)
	}

	bind := func(id string, t *table.Table) {
		exporter.
			BindSectionColumns(id, simpleexcel.TableColumns(t)).
			BindSectionData(id, t.Records())
	}
	bind("original", a.Filtered)
	bind("totals", a.TotalsTable)
	bind("selection", a.Selection)

	return exporter.ToBytes()
}

// SelectionWorkbook exports only the display columns of the selection.
func SelectionWorkbook(a *domain.Analysis) ([]byte, error) {
	return simpleexcel.WorkbookBytes(&table.Workbook{
		Sheets: []table.Sheet{{Name: SheetSelection, Table: a.Display}},
	})
}

func SelectionPDF(a *domain.Analysis, opts ...pdftable.Option) ([]byte, error) {
	return pdftable.Render(a.Display, PDFTitle, opts...)
}

// ConsolidatedDocument renders one of the consolidated exports.
func ConsolidatedDocument(a *domain.Analysis, kind domain.ExportKind, fileName string, pdfOpts ...pdftable.Option) (domain.Document, error) {
	if a.Empty() {
		return domain.Document{}, domain.ErrEmptySelection
	}

	var (
		doc domain.Document
		err error
	)
	switch kind {
	case domain.ExportAnalysisWorkbook:
		doc.Name = EnsureExtension(fileName, ".xlsx", DefaultAnalysisFileName)
		doc.ContentType = ContentTypeXLSX
		doc.Data, err = AnalysisWorkbook(a)
	case domain.ExportSelectionWorkbook:
		doc.Name = EnsureExtension(fileName, ".xlsx", DefaultSelectionFileName)
		doc.ContentType = ContentTypeXLSX
		doc.Data, err = SelectionWorkbook(a)
	case domain.ExportSelectionPDF:
		doc.Name = EnsureExtension(fileName, ".pdf", DefaultPDFFileName)
		doc.ContentType = ContentTypePDF
		doc.Data, err = SelectionPDF(a, pdfOpts...)
	default:
		return domain.Document{}, fmt.Errorf("unknown export kind %q", kind)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to build %s export: %w", kind, err)
	}
	return doc, nil
}
