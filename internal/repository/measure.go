// internal/repository/measure.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type MeasureRepository struct {
	db *gorm.DB
}

func NewMeasureRepository(db *gorm.DB) *MeasureRepository {
	return &MeasureRepository{db: db}
}

// FindAllByProject lists the project's measures, category then name ascending.
func (r *MeasureRepository) FindAllByProject(ctx context.Context, projectID uuid.UUID) ([]model.OrganizationalMeasure, error) {
	var measures []model.OrganizationalMeasure
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("category asc").
		Order("name asc").
		Find(&measures)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find measures: %w", result.Error)
	}
	return measures, nil
}

func (r *MeasureRepository) Create(ctx context.Context, measure *model.OrganizationalMeasure) error {
	if err := r.db.WithContext(ctx).Create(measure).Error; err != nil {
		return fmt.Errorf("failed to create measure: %w", err)
	}
	return nil
}

// FindByIDInProject loads one measure scoped to the project.
func (r *MeasureRepository) FindByIDInProject(ctx context.Context, id, projectID uuid.UUID) (*model.OrganizationalMeasure, error) {
	var measure model.OrganizationalMeasure
	result := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		First(&measure)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrMeasureNotFound
		}
		return nil, fmt.Errorf("failed to find measure: %w", result.Error)
	}
	return &measure, nil
}

func (r *MeasureRepository) Save(ctx context.Context, measure *model.OrganizationalMeasure) error {
	if err := r.db.WithContext(ctx).Save(measure).Error; err != nil {
		return fmt.Errorf("failed to update measure: %w", err)
	}
	return nil
}

func (r *MeasureRepository) Delete(ctx context.Context, measure *model.OrganizationalMeasure) error {
	if err := r.db.WithContext(ctx).Delete(measure).Error; err != nil {
		return fmt.Errorf("failed to delete measure: %w", err)
	}
	return nil
}

func (r *MeasureRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.OrganizationalMeasure{}).
		Where("project_id = ?", projectID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count measures: %w", result.Error)
	}
	return count, nil
}
