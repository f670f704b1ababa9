// internal/repository/organization.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type OrganizationRepositoryIface interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FirstMembership(ctx context.Context, userID uuid.UUID) (*model.UserOrganization, error)
}

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	result := r.db.WithContext(ctx).First(&org, "id = ?", id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", result.Error)
	}
	return &org, nil
}

func (r *OrganizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Organization{}).Where("slug = ?", slug).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check slug: %w", result.Error)
	}
	return count > 0, nil
}

// FirstMembership returns the user's oldest membership. Users created through
// registration have exactly one.
func (r *OrganizationRepository) FirstMembership(ctx context.Context, userID uuid.UUID) (*model.UserOrganization, error) {
	var membership model.UserOrganization
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		First(&membership)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrNoMembership
		}
		return nil, fmt.Errorf("failed to find membership: %w", result.Error)
	}
	return &membership, nil
}
