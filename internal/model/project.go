// internal/model/project.go
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectArchived  ProjectStatus = "ARCHIVED"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectArchived, ProjectCompleted:
		return true
	}
	return false
}

// ImplementationStatus tracks how far a control or organizational measure has
// been implemented. Shared between ProjectControl and OrganizationalMeasure.
type ImplementationStatus string

const (
	StatusNotStarted           ImplementationStatus = "NOT_STARTED"
	StatusInProgress           ImplementationStatus = "IN_PROGRESS"
	StatusPartiallyImplemented ImplementationStatus = "PARTIALLY_IMPLEMENTED"
	StatusImplemented          ImplementationStatus = "IMPLEMENTED"
	StatusNotApplicable        ImplementationStatus = "NOT_APPLICABLE"
)

func (s ImplementationStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPartiallyImplemented,
		StatusImplemented, StatusNotApplicable:
		return true
	}
	return false
}

type Project struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organizationId"`
	Name           string        `gorm:"type:text;not null" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	Organization Organization            `gorm:"foreignKey:OrganizationID" json:"-"`
	Controls     []ProjectControl        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"controls,omitempty"`
	Audits       []Audit                 `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	DPIA         *DPIA                   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Measures     []OrganizationalMeasure `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`

	// Populated by list queries; not a column.
	ControlCount int64 `gorm:"-" json:"controlCount,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectActive
	}
	return nil
}

// ProjectControl is the per-project tracking record for one catalog control.
// Unique per (project, control).
type ProjectControl struct {
	ID                        uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID                 uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_project_control" json:"projectId"`
	ControlID                 uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_project_control" json:"controlId"`
	ImplementationStatus      ImplementationStatus `gorm:"type:varchar(32);not null;default:'NOT_STARTED'" json:"implementationStatus"`
	ImplementationDescription string               `gorm:"type:text" json:"implementationDescription"`
	ReferenceURL              string               `gorm:"type:text" json:"referenceUrl"`
	ResponsiblePerson         string               `gorm:"type:text" json:"responsiblePerson"`
	DueDate                   *time.Time           `json:"dueDate"`
	CompletedAt               *time.Time           `json:"completedAt"`
	CreatedAt                 time.Time            `json:"createdAt"`
	UpdatedAt                 time.Time            `json:"updatedAt"`

	Control *Control `gorm:"foreignKey:ControlID" json:"control,omitempty"`
}

func (pc *ProjectControl) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}
	if pc.ImplementationStatus == "" {
		pc.ImplementationStatus = StatusNotStarted
	}
	return nil
}

// ApplyStatus transitions the implementation status and keeps the
// completedAt-iff-IMPLEMENTED invariant: moving to IMPLEMENTED stamps the
// completion time, moving anywhere else clears it.
func (pc *ProjectControl) ApplyStatus(status ImplementationStatus, now time.Time) {
	pc.ImplementationStatus = status
	if status == StatusImplemented {
		pc.CompletedAt = &now
	} else {
		pc.CompletedAt = nil
	}
}

// ControlStats is the per-status rollup for a project's controls. Always
// recomputed from the stored rows, never persisted.
type ControlStats struct {
	Total                int `json:"total"`
	Implemented          int `json:"implemented"`
	InProgress           int `json:"inProgress"`
	NotStarted           int `json:"notStarted"`
	NotApplicable        int `json:"notApplicable"`
	PartiallyImplemented int `json:"partiallyImplemented"`
}

// Progress is the overall implementation percentage, 0 for an empty project.
func (s ControlStats) Progress() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Implemented) / float64(s.Total) * 100))
}

// ComputeControlStats folds a project's control rows into per-status counts.
func ComputeControlStats(controls []ProjectControl) ControlStats {
	stats := ControlStats{Total: len(controls)}
	for _, pc := range controls {
		switch pc.ImplementationStatus {
		case StatusImplemented:
			stats.Implemented++
		case StatusInProgress:
			stats.InProgress++
		case StatusNotStarted:
			stats.NotStarted++
		case StatusNotApplicable:
			stats.NotApplicable++
		case StatusPartiallyImplemented:
			stats.PartiallyImplemented++
		}
	}
	return stats
}
