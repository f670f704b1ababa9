// internal/repository/project.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindAllByOrganization lists the organization's projects, newest first, with
// the attached-control count populated.
func (r *ProjectRepository) FindAllByOrganization(ctx context.Context, orgID uuid.UUID) ([]*model.Project, error) {
	var projects []*model.Project
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at desc").
		Find(&projects)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find projects: %w", result.Error)
	}

	for _, p := range projects {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.ProjectControl{}).
			Where("project_id = ?", p.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count project controls: %w", err)
		}
		p.ControlCount = count
	}
	return projects, nil
}

// FindByIDInOrganization loads a project only if it belongs to the given
// organization. A project under another tenant reads as not found.
func (r *ProjectRepository) FindByIDInOrganization(ctx context.Context, id, orgID uuid.UUID) (*model.Project, error) {
	var project model.Project
	result := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&project)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", result.Error)
	}
	return &project, nil
}

func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete removes the project and all dependent rows.
func (r *ProjectRepository) Delete(ctx context.Context, project *model.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		auditIDs := tx.Model(&model.Audit{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("audit_id IN (?)", auditIDs).Delete(&model.ControlAudit{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&model.Audit{}, &model.ProjectControl{}, &model.DPIA{}, &model.OrganizationalMeasure{},
		} {
			if err := tx.Where("project_id = ?", project.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// CountByOrganization returns the number of projects in the organization.
func (r *ProjectRepository) CountByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("organization_id = ?", orgID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count projects: %w", result.Error)
	}
	return count, nil
}
