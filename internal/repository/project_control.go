// internal/repository/project_control.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type ProjectControlRepository struct {
	db *gorm.DB
}

func NewProjectControlRepository(db *gorm.DB) *ProjectControlRepository {
	return &ProjectControlRepository{db: db}
}

// FindAllByProject lists the project's controls with the catalog control and
// its standard preloaded, ordered by control code.
func (r *ProjectControlRepository) FindAllByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectControl, error) {
	var controls []model.ProjectControl
	result := r.db.WithContext(ctx).
		Joins("JOIN controls ON controls.id = project_controls.control_id").
		Where("project_controls.project_id = ?", projectID).
		Order("controls.code asc").
		Preload("Control").
		Preload("Control.Standard").
		Find(&controls)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find project controls: %w", result.Error)
	}
	return controls, nil
}

// ExistingControlIDs returns which of the given catalog control IDs are
// already attached to the project.
func (r *ProjectControlRepository) ExistingControlIDs(ctx context.Context, projectID uuid.UUID, controlIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var attached []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&model.ProjectControl{}).
		Where("project_id = ? AND control_id IN ?", projectID, controlIDs).
		Pluck("control_id", &attached)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to check attached controls: %w", result.Error)
	}
	existing := make(map[uuid.UUID]bool, len(attached))
	for _, id := range attached {
		existing[id] = true
	}
	return existing, nil
}

func (r *ProjectControlRepository) CreateBatch(ctx context.Context, controls []model.ProjectControl) error {
	if len(controls) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&controls).Error; err != nil {
		return fmt.Errorf("failed to attach controls: %w", err)
	}
	return nil
}

// FindByProjectAndControl resolves the join row by project and catalog
// control ID, which is how the API addresses it.
func (r *ProjectControlRepository) FindByProjectAndControl(ctx context.Context, projectID, controlID uuid.UUID) (*model.ProjectControl, error) {
	var pc model.ProjectControl
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND control_id = ?", projectID, controlID).
		Preload("Control").
		Preload("Control.Standard").
		First(&pc)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrProjectControlNotFound
		}
		return nil, fmt.Errorf("failed to find project control: %w", result.Error)
	}
	return &pc, nil
}

func (r *ProjectControlRepository) Save(ctx context.Context, pc *model.ProjectControl) error {
	if err := r.db.WithContext(ctx).Save(pc).Error; err != nil {
		return fmt.Errorf("failed to update project control: %w", err)
	}
	return nil
}

func (r *ProjectControlRepository) Delete(ctx context.Context, pc *model.ProjectControl) error {
	if err := r.db.WithContext(ctx).Delete(pc).Error; err != nil {
		return fmt.Errorf("failed to detach control: %w", err)
	}
	return nil
}

func (r *ProjectControlRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.ProjectControl{}).
		Where("project_id = ?", projectID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count project controls: %w", result.Error)
	}
	return count, nil
}

// FindAllByOrganization lists every control row across the organization's
// projects, for the dashboard rollup.
func (r *ProjectControlRepository) FindAllByOrganization(ctx context.Context, orgID uuid.UUID) ([]model.ProjectControl, error) {
	var controls []model.ProjectControl
	result := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = project_controls.project_id").
		Where("projects.organization_id = ?", orgID).
		Find(&controls)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find organization controls: %w", result.Error)
	}
	return controls, nil
}
