// internal/model/catalog.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Standard is a named, versioned catalog of controls (e.g. ISO 27001:2022).
// Global standards are shared across all organizations; non-global ones are
// scoped to a single organization.
type Standard struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name           string     `gorm:"type:text;not null" json:"name"`
	ShortName      string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_standard_version" json:"shortName"`
	Version        string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_standard_version" json:"version"`
	Description    string     `gorm:"type:text" json:"description"`
	IsGlobal       bool       `gorm:"not null;default:false" json:"isGlobal"`
	OrganizationID *uuid.UUID `gorm:"type:uuid" json:"organizationId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Controls []Control `gorm:"foreignKey:StandardID;constraint:OnDelete:CASCADE" json:"controls,omitempty"`

	// Populated by list queries; not a column.
	ControlCount int64 `gorm:"-" json:"controlCount,omitempty"`
}

func (s *Standard) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Control is a single requirement within a standard. Reference data: mutated
// only by the catalog seeder.
type Control struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StandardID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_standard_code" json:"standardId"`
	Code        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_standard_code" json:"code"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:text" json:"category"`
	Subcategory string    `gorm:"type:text" json:"subcategory"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Standard *Standard `gorm:"foreignKey:StandardID" json:"standard,omitempty"`
}

func (c *Control) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
