// internal/model/organization.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrgRole is the per-membership role within an organization.
type OrgRole string

const (
	RoleOwner  OrgRole = "OWNER"
	RoleAdmin  OrgRole = "ADMIN"
	RoleMember OrgRole = "MEMBER"
	RoleViewer OrgRole = "VIEWER"
)

// roleRanks gives the roles a total order so permission checks are a single
// comparison. Inserting a new role only requires a new entry here.
var roleRanks = map[OrgRole]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleMember: 2,
	RoleViewer: 1,
}

func (r OrgRole) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r carries at least the privileges of required.
// Unknown roles rank below every known role.
func (r OrgRole) AtLeast(required OrgRole) bool {
	return roleRanks[r] >= roleRanks[required]
}

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Users    []UserOrganization `gorm:"foreignKey:OrganizationID" json:"-"`
	Projects []Project          `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// UserOrganization pairs a user with an organization and a role. The first
// membership found for a user is authoritative; the application model is one
// organization per user.
type UserOrganization struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_org" json:"userId"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_org" json:"organizationId"`
	Role           OrgRole   `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	User         User         `gorm:"foreignKey:UserID" json:"-"`
}

func (uo *UserOrganization) BeforeCreate(tx *gorm.DB) error {
	if uo.ID == uuid.Nil {
		uo.ID = uuid.New()
	}
	return nil
}
