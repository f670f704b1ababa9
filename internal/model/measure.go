// internal/model/measure.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MeasureCategories is the fixed tag set for organizational measures.
var MeasureCategories = []string{
	"policy",
	"training",
	"process",
	"access_control",
	"incident_response",
	"monitoring",
	"vendor_management",
	"documentation",
	"other",
}

func ValidMeasureCategory(category string) bool {
	for _, c := range MeasureCategories {
		if c == category {
			return true
		}
	}
	return false
}

// OrganizationalMeasure is a non-technical control (policy, training,
// process) tracked alongside catalog controls. Shares the implementation
// status enum and the completedAt-iff-IMPLEMENTED invariant with
// ProjectControl, but is not covered by the audit workflow.
type OrganizationalMeasure struct {
	ID                uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"projectId"`
	Name              string               `gorm:"type:text;not null" json:"name"`
	Description       string               `gorm:"type:text" json:"description"`
	Category          string               `gorm:"type:varchar(32)" json:"category"`
	Status            ImplementationStatus `gorm:"type:varchar(32);not null;default:'NOT_STARTED'" json:"status"`
	ResponsiblePerson string               `gorm:"type:text" json:"responsiblePerson"`
	DueDate           *time.Time           `json:"dueDate"`
	CompletedAt       *time.Time           `json:"completedAt"`
	Evidence          string               `gorm:"type:text" json:"evidence"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func (m *OrganizationalMeasure) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = StatusNotStarted
	}
	return nil
}

// ApplyStatus keeps completedAt consistent with the status, same rule as
// ProjectControl.ApplyStatus.
func (m *OrganizationalMeasure) ApplyStatus(status ImplementationStatus, now time.Time) {
	m.Status = status
	if status == StatusImplemented {
		if m.CompletedAt == nil {
			m.CompletedAt = &now
		}
	} else {
		m.CompletedAt = nil
	}
}

// MeasureStats is the per-status rollup for a project's measures.
type MeasureStats struct {
	Total       int `json:"total"`
	Implemented int `json:"implemented"`
	InProgress  int `json:"inProgress"`
}

func ComputeMeasureStats(measures []OrganizationalMeasure) MeasureStats {
	stats := MeasureStats{Total: len(measures)}
	for _, m := range measures {
		switch m.Status {
		case StatusImplemented:
			stats.Implemented++
		case StatusInProgress:
			stats.InProgress++
		}
	}
	return stats
}
