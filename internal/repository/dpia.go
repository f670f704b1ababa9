// internal/repository/dpia.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type DPIARepository struct {
	db *gorm.DB
}

func NewDPIARepository(db *gorm.DB) *DPIARepository {
	return &DPIARepository{db: db}
}

// FindByProject loads the project's assessment, at most one per project.
func (r *DPIARepository) FindByProject(ctx context.Context, projectID uuid.UUID) (*model.DPIA, error) {
	var dpia model.DPIA
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&dpia)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrDPIANotFound
		}
		return nil, fmt.Errorf("failed to find dpia: %w", result.Error)
	}
	return &dpia, nil
}

func (r *DPIARepository) Create(ctx context.Context, dpia *model.DPIA) error {
	if err := r.db.WithContext(ctx).Create(dpia).Error; err != nil {
		return fmt.Errorf("failed to create dpia: %w", err)
	}
	return nil
}

func (r *DPIARepository) Save(ctx context.Context, dpia *model.DPIA) error {
	if err := r.db.WithContext(ctx).Save(dpia).Error; err != nil {
		return fmt.Errorf("failed to update dpia: %w", err)
	}
	return nil
}

func (r *DPIARepository) Delete(ctx context.Context, dpia *model.DPIA) error {
	if err := r.db.WithContext(ctx).Delete(dpia).Error; err != nil {
		return fmt.Errorf("failed to delete dpia: %w", err)
	}
	return nil
}
