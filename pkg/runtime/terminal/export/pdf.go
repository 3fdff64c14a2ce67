package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/report"
)

const (
	pdfPageWidth = 180.0 // A4 width minus margins
	pdfCellLimit = 48
)

// PDFReporter writes a report as an A4 document with one table per section.
type PDFReporter struct {
	writer io.Writer
}

func NewPDFReporter(writer io.Writer) *PDFReporter {
	return &PDFReporter{writer: writer}
}

func (p *PDFReporter) Handle(r *domain.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 15, r.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("January 2, 2006 3:04 PM")),
		"", 1, "C", false, 0, "")
	pdf.Ln(10)

	for _, s := range r.Sections {
		addSection(pdf, s)
	}

	if err := pdf.Output(p.writer); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

func addSection(pdf *gofpdf.Fpdf, s domain.ReportSection) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 10, s.Title, "", 1, "L", true, 0, "")
	pdf.Ln(3)

	keys := make([]string, 0, len(s.Summary))
	for k := range s.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pdf.SetFont("Arial", "", 10)
	for _, k := range keys {
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(60, 7, k+":", "", 0, "L", false, 0, "")
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 7, fmt.Sprintf("%v", s.Summary[k]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	if len(s.Details) == 0 {
		return
	}

	widths := []float64{60, 30, 20, pdfPageWidth - 110}
	headers := []string{"Name", "Value", "Status", "Description"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(52, 58, 64)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	fill := false
	for _, d := range s.Details {
		if fill {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		value := ""
		if d.Value != nil {
			value = fmt.Sprintf("%v", d.Value)
		}
		cells := []string{d.Name, value, d.Status, d.Description}
		for i, cell := range cells {
			pdf.SetTextColor(33, 37, 41)
			if i == 2 {
				setStatusColor(pdf, cell)
			}
			pdf.CellFormat(widths[i], 7, truncate(cell, pdfCellLimit), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}
	pdf.Ln(5)
}

func setStatusColor(pdf *gofpdf.Fpdf, status string) {
	switch status {
	case report.StatusOK:
		pdf.SetTextColor(40, 167, 69)
	case report.StatusWarning:
		pdf.SetTextColor(253, 126, 20)
	case report.StatusFailed:
		pdf.SetTextColor(220, 53, 69)
	}
}
