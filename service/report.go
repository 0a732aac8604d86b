package service

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"synerx-dashboard/dto"
)

// BuildAnalyticsReport renders the analytics summary as a PDF document.
func BuildAnalyticsReport(summary dto.AnalyticsSummary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SynerX Analytics Report", false)
	pdf.SetAuthor("SynerX Dashboard", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Road Safety Analytics Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("02/01/2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Headline Metrics")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Total vehicles: %d", summary.TotalVehicles))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Overall compliance: %.1f%%", summary.ComplianceRate))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Average reaction time: %.1fs", summary.AvgReactionTime))
	pdf.Ln(12)

	writeBreakdownTable(pdf, "Compliance by Weather", summary.ByWeather)
	writeBreakdownTable(pdf, "Compliance by Vehicle Type", summary.ByVehicleType)

	if len(summary.Recommendations) > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, "Recommendations")
		pdf.Ln(10)

		pdf.SetFont("Helvetica", "", 12)
		for _, rec := range summary.Recommendations {
			pdf.MultiCell(0, 6, "- "+rec.Text, "", "L", false)
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBreakdownTable(pdf *gofpdf.Fpdf, title string, groups map[string]dto.GroupBreakdown) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 7, "Group", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Count", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Compliance", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Avg Reaction", "1", 1, "R", false, 0, "")

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pdf.SetFont("Helvetica", "", 11)
	for _, k := range keys {
		g := groups[k]
		pdf.CellFormat(70, 7, k, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", g.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.1f%%", g.ComplianceRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.1fs", g.AvgReactionTime), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}
