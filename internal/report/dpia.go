// internal/report/dpia.go
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/grundwerk/grundwerk/internal/model"
)

// DPIA renders the data protection impact assessment report as ten numbered
// sections.
func DPIA(project *model.Project, dpia *model.DPIA, controls []model.ProjectControl, measures []model.OrganizationalMeasure, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("DPIA - %s", project.Name), true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Data Protection Impact Assessment", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 9, truncate(project.Name, nameLimit), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, "Generated on "+now.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section(pdf, 1, "Summary")
	field(pdf, "Status", string(dpia.Status))
	field(pdf, "Preliminary risk level", string(dpia.PreliminaryRiskLevel))
	field(pdf, "Residual risk level", string(dpia.ResidualRiskLevel))

	section(pdf, 2, "Description of Processing")
	paragraph(pdf, dpia.ProcessingDescription)
	field(pdf, "Technology", dpia.TechnologyDescription)

	section(pdf, 3, "Data Categories")
	paragraph(pdf, strings.Join(dpia.DataCategories, ", "))
	field(pdf, "Sensitive data", strings.Join(dpia.SensitiveDataTypes, ", "))

	section(pdf, 4, "Data Subjects")
	paragraph(pdf, dpia.DataSubjects)
	field(pdf, "Estimated number", dpia.EstimatedDataSubjects)

	section(pdf, 5, "Purpose and Legal Basis")
	paragraph(pdf, dpia.ProcessingPurpose)
	field(pdf, "Legal basis", dpia.LegalBasis)

	section(pdf, 6, "Identified Risks")
	if len(dpia.IdentifiedRisks) == 0 {
		paragraph(pdf, "No risks recorded.")
	}
	for i, risk := range dpia.IdentifiedRisks {
		mitigated := "open"
		if risk.Mitigated {
			mitigated = "mitigated"
		}
		paragraph(pdf, fmt.Sprintf("%d. %s (likelihood %s, impact %s, %s)",
			i+1, truncate(risk.Description, descriptionLimit), risk.Likelihood, risk.Impact, mitigated))
	}

	section(pdf, 7, "Protective Measures")
	field(pdf, "Data protection by design", dpia.DataProtectionByDesign)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Technical controls (%d)", len(controls)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, pc := range controls {
		code, name := "", ""
		if pc.Control != nil {
			code = pc.Control.Code
			name = pc.Control.Name
		}
		pdf.CellFormat(28, 6, code, "", 0, "L", false, 0, "")
		pdf.CellFormat(112, 6, truncate(name, nameLimit), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, statusLabels[pc.ImplementationStatus], "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Organizational measures (%d)", len(measures)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range measures {
		pdf.CellFormat(140, 6, truncate(m.Name, nameLimit), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, statusLabels[m.Status], "", 1, "L", false, 0, "")
	}

	section(pdf, 8, "Residual Risk")
	field(pdf, "Level", string(dpia.ResidualRiskLevel))
	paragraph(pdf, dpia.ResidualRiskJustification)

	section(pdf, 9, "Consultation")
	field(pdf, "FDPIC consultation required", yesNo(dpia.RequiresFDPICConsultation))
	if dpia.FDPICSubmissionDate != nil {
		field(pdf, "FDPIC submission", dpia.FDPICSubmissionDate.Format("2006-01-02"))
	}
	field(pdf, "DPO consulted", yesNo(dpia.DPOConsulted))
	field(pdf, "DPO", dpia.DPOName)
	paragraph(pdf, dpia.DPOOpinion)

	section(pdf, 10, "Assessment Details")
	field(pdf, "Assessor", dpia.AssessorName)
	field(pdf, "Role", dpia.AssessorRole)
	field(pdf, "Approved by", dpia.ApprovedBy)
	if dpia.ApprovalDate != nil {
		field(pdf, "Approval date", dpia.ApprovalDate.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering dpia report: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, number int, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, fmt.Sprintf("%d. %s", number, title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func field(pdf *fpdf.Fpdf, label, value string) {
	if value == "" {
		value = "-"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

func paragraph(pdf *fpdf.Fpdf, text string) {
	if text == "" {
		text = "-"
	}
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
