// internal/report/compliance.go
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/grundwerk/grundwerk/internal/model"
)

var statusLabels = map[model.ImplementationStatus]string{
	model.StatusNotStarted:           "Not started",
	model.StatusInProgress:           "In progress",
	model.StatusPartiallyImplemented: "Partially implemented",
	model.StatusImplemented:          "Implemented",
	model.StatusNotApplicable:        "Not applicable",
}

// Compliance renders the project compliance report: cover, executive summary,
// status breakdown, and the control detail grouped by category.
func Compliance(project *model.Project, controls []model.ProjectControl, stats model.ControlStats, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Compliance Report - %s", project.Name), true)
	pdf.SetAutoPageBreak(true, 20)

	coverPage(pdf, project, now)
	summaryPage(pdf, stats)
	controlPages(pdf, controls)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering compliance report: %w", err)
	}
	return buf.Bytes(), nil
}

func coverPage(pdf *fpdf.Fpdf, project *model.Project, now time.Time) {
	pdf.AddPage()
	pdf.Ln(60)

	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 14, "Compliance Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 18)
	pdf.CellFormat(0, 12, truncate(project.Name, nameLimit), "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Generated on "+now.Format("2006-01-02"), "", 1, "C", false, 0, "")
	if project.Description != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 6, truncate(project.Description, descriptionLimit), "", "C", false)
	}
}

func summaryPage(pdf *fpdf.Fpdf, stats model.ControlStats) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Compliance rate", fmt.Sprintf("%d%%", stats.Progress())},
		{"Total controls", fmt.Sprintf("%d", stats.Total)},
		{"Implemented", fmt.Sprintf("%d", stats.Implemented)},
		{"In progress", fmt.Sprintf("%d", stats.InProgress)},
		{"Not started", fmt.Sprintf("%d", stats.NotStarted)},
	}
	for _, row := range rows {
		pdf.CellFormat(70, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "B", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Status Breakdown", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	breakdown := [][2]string{
		{statusLabels[model.StatusImplemented], fmt.Sprintf("%d", stats.Implemented)},
		{statusLabels[model.StatusPartiallyImplemented], fmt.Sprintf("%d", stats.PartiallyImplemented)},
		{statusLabels[model.StatusInProgress], fmt.Sprintf("%d", stats.InProgress)},
		{statusLabels[model.StatusNotStarted], fmt.Sprintf("%d", stats.NotStarted)},
		{statusLabels[model.StatusNotApplicable], fmt.Sprintf("%d", stats.NotApplicable)},
	}
	for _, row := range breakdown {
		pdf.CellFormat(70, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, row[1], "B", 1, "L", false, 0, "")
	}
}

// controlPages writes the detail table, grouped by the catalog category while
// keeping the incoming code order within each group.
func controlPages(pdf *fpdf.Fpdf, controls []model.ProjectControl) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Controls", "", 1, "L", false, 0, "")

	var categories []string
	grouped := make(map[string][]model.ProjectControl)
	for _, pc := range controls {
		category := "Uncategorized"
		if pc.Control != nil && pc.Control.Category != "" {
			category = pc.Control.Category
		}
		if _, ok := grouped[category]; !ok {
			categories = append(categories, category)
		}
		grouped[category] = append(grouped[category], pc)
	}

	for _, category := range categories {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, category, "", 1, "L", false, 0, "")

		for _, pc := range grouped[category] {
			code, name, description := "", "", ""
			if pc.Control != nil {
				code = pc.Control.Code
				name = pc.Control.Name
				description = pc.Control.Description
			}

			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(28, 7, code, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(112, 7, truncate(name, nameLimit), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, statusLabels[pc.ImplementationStatus], "", 1, "L", false, 0, "")

			if description != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetX(pdf.GetX() + 28)
				pdf.MultiCell(0, 5, truncate(description, descriptionLimit), "", "L", false)
			}
		}
	}
}
