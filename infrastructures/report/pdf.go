package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/internal/errutil"
)

const pdfTitle = "Cybersecurity News Report"

// body text cut-off when an item has no summary
const pdfSummaryMaxLength = 300

// PDFReport renders the items as a downloadable report: title line,
// executive summary, severity table, then items grouped by category.
func (g *Generator) PDFReport(items []news.Item, digest string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pdfTitle, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(0, 12, pdfTitle, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on: %s", g.now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	g.pdfHeading(pdf, "Executive Summary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, digest, "", "L", false)
	pdf.Ln(6)

	g.pdfHeading(pdf, "Threat Statistics")
	stats := news.SeverityStats(items)
	rows := [][2]string{
		{"Severity Level", "Count"},
		{"High", fmt.Sprint(stats[news.SeverityHigh])},
		{"Medium", fmt.Sprint(stats[news.SeverityMedium])},
		{"Low", fmt.Sprint(stats[news.SeverityLow])},
		{"Total", fmt.Sprint(len(items))},
	}
	for i, row := range rows {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.CellFormat(60, 7, row[0], "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, row[1], "1", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	categorized := news.Categorize(items)
	for _, category := range news.Categories() {
		group := categorized[category]
		if len(group) == 0 {
			continue
		}
		g.pdfHeading(pdf, category.String())
		for _, item := range group {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, item.Title, "", "L", false)

			pdf.SetFont("Helvetica", "", 9)
			details := fmt.Sprintf("Source: %s | Severity: %s | Published: %s",
				item.Source, item.Severity, item.PublishedAt.Format("2006-01-02 15:04"))
			pdf.MultiCell(0, 5, details, "", "L", false)

			summary := item.Summary
			if summary == "" {
				summary = item.Content
				if len(summary) > pdfSummaryMaxLength {
					summary = summary[:pdfSummaryMaxLength] + "..."
				}
			}
			pdf.MultiCell(0, 5, summary, "", "L", false)
			pdf.Ln(4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errutil.ErrTemplate, err.Error())
	}
	return buf.Bytes(), nil
}

func (g *Generator) pdfHeading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(139, 0, 0)
	pdf.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
