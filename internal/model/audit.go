// internal/model/audit.go
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditStatus string

const (
	AuditInProgress AuditStatus = "IN_PROGRESS"
	AuditCompleted  AuditStatus = "COMPLETED"
)

type VerificationStatus string

const (
	VerificationNotVerified    VerificationStatus = "NOT_VERIFIED"
	VerificationVerified       VerificationStatus = "VERIFIED"
	VerificationNeedsAttention VerificationStatus = "NEEDS_ATTENTION"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationNotVerified, VerificationVerified, VerificationNeedsAttention:
		return true
	}
	return false
}

// Audit is a point-in-time verification pass over a project's controls.
// At most one audit per project may be IN_PROGRESS; a COMPLETED audit is
// immutable.
type Audit struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"projectId"`
	Status      AuditStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'" json:"status"`
	StartedBy   string      `gorm:"type:text;not null" json:"startedBy"`
	StartedAt   time.Time   `gorm:"not null" json:"startedAt"`
	CompletedBy string      `gorm:"type:text" json:"completedBy"`
	CompletedAt *time.Time  `json:"completedAt"`
	Notes       string      `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	ControlAudits []ControlAudit `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE" json:"controlAudits,omitempty"`
}

func (a *Audit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AuditInProgress
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	return nil
}

// ControlAudit is the per-control verification record within one audit. The
// set of rows is snapshotted when the audit starts; controls attached to the
// project afterwards are not retroactively included.
type ControlAudit struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	AuditID            uuid.UUID          `gorm:"type:uuid;not null;index" json:"auditId"`
	ProjectControlID   uuid.UUID          `gorm:"type:uuid;not null" json:"projectControlId"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(32);not null;default:'NOT_VERIFIED'" json:"verificationStatus"`
	Notes              string             `gorm:"type:text" json:"notes"`
	VerifiedAt         *time.Time         `json:"verifiedAt"`
	VerifiedBy         *string            `gorm:"type:text" json:"verifiedBy"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	ProjectControl *ProjectControl `gorm:"foreignKey:ProjectControlID" json:"projectControl,omitempty"`
}

func (ca *ControlAudit) BeforeCreate(tx *gorm.DB) error {
	if ca.ID == uuid.Nil {
		ca.ID = uuid.New()
	}
	if ca.VerificationStatus == "" {
		ca.VerificationStatus = VerificationNotVerified
	}
	return nil
}

// ApplyVerification records a verification decision. Anything other than
// NOT_VERIFIED stamps who reviewed it and when; moving back to NOT_VERIFIED
// clears both.
func (ca *ControlAudit) ApplyVerification(status VerificationStatus, reviewer string, now time.Time) {
	ca.VerificationStatus = status
	if status != VerificationNotVerified {
		ca.VerifiedAt = &now
		ca.VerifiedBy = &reviewer
	} else {
		ca.VerifiedAt = nil
		ca.VerifiedBy = nil
	}
}

// AuditStats is the reviewed/total rollup for one audit.
type AuditStats struct {
	Total          int `json:"total"`
	Verified       int `json:"verified"`
	NeedsAttention int `json:"needsAttention"`
	NotVerified    int `json:"notVerified"`
}

// Progress counts NEEDS_ATTENTION toward progress: the control has been
// reviewed even though it did not pass cleanly.
func (s AuditStats) Progress() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Verified+s.NeedsAttention) / float64(s.Total) * 100))
}

func ComputeAuditStats(controlAudits []ControlAudit) AuditStats {
	stats := AuditStats{Total: len(controlAudits)}
	for _, ca := range controlAudits {
		switch ca.VerificationStatus {
		case VerificationVerified:
			stats.Verified++
		case VerificationNeedsAttention:
			stats.NeedsAttention++
		case VerificationNotVerified:
			stats.NotVerified++
		}
	}
	return stats
}
