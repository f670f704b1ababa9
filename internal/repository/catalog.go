// internal/repository/catalog.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindGlobalStandards lists the shared catalog, name ascending, with control
// counts populated.
func (r *CatalogRepository) FindGlobalStandards(ctx context.Context) ([]*model.Standard, error) {
	var standards []*model.Standard
	result := r.db.WithContext(ctx).
		Where("is_global = ?", true).
		Order("name asc").
		Find(&standards)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find standards: %w", result.Error)
	}

	for _, s := range standards {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.Control{}).
			Where("standard_id = ?", s.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count controls: %w", err)
		}
		s.ControlCount = count
	}
	return standards, nil
}

// FindGlobalStandardByID loads one shared standard with its controls ordered
// by code. Organization-private standards read as not found here.
func (r *CatalogRepository) FindGlobalStandardByID(ctx context.Context, id uuid.UUID) (*model.Standard, error) {
	var standard model.Standard
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_global = ?", id, true).
		Preload("Controls", func(db *gorm.DB) *gorm.DB {
			return db.Order("controls.code asc")
		}).
		First(&standard)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrStandardNotFound
		}
		return nil, fmt.Errorf("failed to find standard: %w", result.Error)
	}
	standard.ControlCount = int64(len(standard.Controls))
	return &standard, nil
}

// SearchControls filters the control catalog by standard, category, and a
// case-insensitive search over code, name, and description.
func (r *CatalogRepository) SearchControls(ctx context.Context, standardID *uuid.UUID, category, search string) ([]model.Control, error) {
	query := r.db.WithContext(ctx).Model(&model.Control{}).Preload("Standard")

	if standardID != nil {
		query = query.Where("standard_id = ?", *standardID)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(description) LIKE ?",
			needle, needle, needle,
		)
	}

	var controls []model.Control
	if err := query.Order("code asc").Find(&controls).Error; err != nil {
		return nil, fmt.Errorf("failed to search controls: %w", err)
	}
	return controls, nil
}

// FindControlsByIDs loads the given catalog controls. The caller compares
// lengths to detect unknown IDs.
func (r *CatalogRepository) FindControlsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Control, error) {
	var controls []model.Control
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&controls)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find controls: %w", result.Error)
	}
	return controls, nil
}

// CountGlobalStandards returns the size of the shared catalog.
func (r *CatalogRepository) CountGlobalStandards(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Standard{}).
		Where("is_global = ?", true).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count standards: %w", result.Error)
	}
	return count, nil
}

// UpsertStandard creates the standard or, when one exists for the same
// (shortName, version), updates its name and description in place.
func (r *CatalogRepository) UpsertStandard(ctx context.Context, standard *model.Standard) (created bool, err error) {
	var existing model.Standard
	result := r.db.WithContext(ctx).
		Where("short_name = ? AND version = ?", standard.ShortName, standard.Version).
		First(&existing)
	if result.Error != nil {
		if isNotFound(result.Error) {
			if err := r.db.WithContext(ctx).Create(standard).Error; err != nil {
				return false, fmt.Errorf("failed to create standard: %w", err)
			}
			return true, nil
		}
		return false, fmt.Errorf("failed to find standard: %w", result.Error)
	}

	existing.Name = standard.Name
	existing.Description = standard.Description
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to update standard: %w", err)
	}
	*standard = existing
	return false, nil
}

// UpsertControl creates the control or updates the row keyed by
// (standardId, code).
func (r *CatalogRepository) UpsertControl(ctx context.Context, control *model.Control) (created bool, err error) {
	var existing model.Control
	result := r.db.WithContext(ctx).
		Where("standard_id = ? AND code = ?", control.StandardID, control.Code).
		First(&existing)
	if result.Error != nil {
		if isNotFound(result.Error) {
			if err := r.db.WithContext(ctx).Create(control).Error; err != nil {
				return false, fmt.Errorf("failed to create control: %w", err)
			}
			return true, nil
		}
		return false, fmt.Errorf("failed to find control: %w", result.Error)
	}

	existing.Name = control.Name
	existing.Description = control.Description
	existing.Category = control.Category
	existing.Subcategory = control.Subcategory
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to update control: %w", err)
	}
	*control = existing
	return false, nil
}
