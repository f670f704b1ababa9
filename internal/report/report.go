// Package report renders the project compliance report and the DPIA report
// as self-contained PDF documents.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	nameLimit        = 60
	descriptionLimit = 100
)

var (
	underscoreRuns = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRuns     = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// truncate cuts s to max characters and appends "..." when anything was cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// ComplianceFilename derives the compliance report filename from the project
// name and date, e.g. "soc2_prep_Compliance_Report_2026-08-29.pdf".
func ComplianceFilename(projectName string, date time.Time) string {
	name := underscoreRuns.ReplaceAllString(strings.ToLower(projectName), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("%s_Compliance_Report_%s.pdf", name, date.Format("2006-01-02"))
}

// DPIAFilename derives the DPIA report filename, e.g.
// "DPIA-SOC2-Prep-2026-08-29.pdf".
func DPIAFilename(projectName string, date time.Time) string {
	name := hyphenRuns.ReplaceAllString(projectName, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("DPIA-%s-%s.pdf", name, date.Format("2006-01-02"))
}
