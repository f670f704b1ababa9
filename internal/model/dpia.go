// internal/model/dpia.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DPIAStatus string

const (
	DPIADraft                DPIAStatus = "DRAFT"
	DPIAInReview             DPIAStatus = "IN_REVIEW"
	DPIAApproved             DPIAStatus = "APPROVED"
	DPIARequiresConsultation DPIAStatus = "REQUIRES_CONSULTATION"
)

func (s DPIAStatus) Valid() bool {
	switch s {
	case DPIADraft, DPIAInReview, DPIAApproved, DPIARequiresConsultation:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// StringList is a list of tags persisted as a JSON text column. An empty or
// absent list is stored as NULL and serialized back as JSON null, never [].
type StringList []string

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan, storing driver.Value type %T into type %T", value, l)
	}
	return json.Unmarshal(raw, l)
}

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// IdentifiedRisk is one entry in the DPIA risk register.
type IdentifiedRisk struct {
	Description string    `json:"description" validate:"required"`
	Likelihood  RiskLevel `json:"likelihood" validate:"required,oneof=LOW MEDIUM HIGH"`
	Impact      RiskLevel `json:"impact" validate:"required,oneof=LOW MEDIUM HIGH"`
	Mitigated   bool      `json:"mitigated"`
}

// RiskList is an ordered risk register persisted as a JSON text column, with
// the same NULL-for-empty behavior as StringList.
type RiskList []IdentifiedRisk

func (l *RiskList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan, storing driver.Value type %T into type %T", value, l)
	}
	return json.Unmarshal(raw, l)
}

func (l RiskList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal([]IdentifiedRisk(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// DPIA is the data protection impact assessment questionnaire, at most one
// per project. Status is a workflow label only; no transitions are enforced.
type DPIA struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"projectId"`
	Status    DPIAStatus `gorm:"type:varchar(32);not null;default:'DRAFT'" json:"status"`

	// Stage 1: preliminary assessment
	ProcessingDescription string     `gorm:"type:text" json:"processingDescription"`
	DataCategories        StringList `gorm:"type:text" json:"dataCategories"`
	SensitiveDataTypes    StringList `gorm:"type:text" json:"sensitiveDataTypes"`
	DataSubjects          string     `gorm:"type:text" json:"dataSubjects"`
	EstimatedDataSubjects string     `gorm:"type:text" json:"estimatedDataSubjects"`
	ProcessingPurpose     string     `gorm:"type:text" json:"processingPurpose"`
	LegalBasis            string     `gorm:"type:text" json:"legalBasis"`
	TechnologyDescription string     `gorm:"type:text" json:"technologyDescription"`
	PreliminaryRiskLevel  RiskLevel  `gorm:"type:varchar(16)" json:"preliminaryRiskLevel"`

	// Stage 2: full assessment
	IdentifiedRisks           RiskList  `gorm:"type:text" json:"identifiedRisks"`
	DataProtectionByDesign    string    `gorm:"type:text" json:"dataProtectionByDesign"`
	ResidualRiskLevel         RiskLevel `gorm:"type:varchar(16)" json:"residualRiskLevel"`
	ResidualRiskJustification string    `gorm:"type:text" json:"residualRiskJustification"`

	// Consultation
	RequiresFDPICConsultation bool       `gorm:"not null;default:false" json:"requiresFdpicConsultation"`
	DPOConsulted              bool       `gorm:"not null;default:false" json:"dpoConsulted"`
	DPOName                   string     `gorm:"type:text" json:"dpoName"`
	DPOOpinion                string     `gorm:"type:text" json:"dpoOpinion"`
	FDPICSubmissionDate       *time.Time `json:"fdpicSubmissionDate"`

	// Metadata
	AssessorName string     `gorm:"type:text" json:"assessorName"`
	AssessorRole string     `gorm:"type:text" json:"assessorRole"`
	ApprovedBy   string     `gorm:"type:text" json:"approvedBy"`
	ApprovalDate *time.Time `json:"approvalDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DPIA) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DPIADraft
	}
	return nil
}

// CompletionPercent is a display heuristic: the share of questionnaire
// sections that look meaningfully filled. Not a correctness gate. Filling
// more sections never decreases the result.
func (d *DPIA) CompletionPercent(controlCount, measureCount int) int {
	sections := []bool{
		d.ProcessingDescription != "",
		len(d.DataCategories) > 0,
		d.DataSubjects != "",
		d.ProcessingPurpose != "",
		d.LegalBasis != "",
		d.PreliminaryRiskLevel != "",
		len(d.IdentifiedRisks) > 0 || d.PreliminaryRiskLevel == RiskLow,
		controlCount > 0 || measureCount > 0,
		d.ResidualRiskLevel != "",
	}
	completed := 0
	for _, filled := range sections {
		if filled {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(sections)) * 100))
}
