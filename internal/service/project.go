// internal/service/project.go
package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/patch"
	"github.com/grundwerk/grundwerk/internal/repository"
)

type ProjectService struct {
	repo        *repository.ProjectRepository
	controlRepo *repository.ProjectControlRepository
	catalogRepo *repository.CatalogRepository
	validate    *validator.Validate
}

func NewProjectService(
	repo *repository.ProjectRepository,
	controlRepo *repository.ProjectControlRepository,
	catalogRepo *repository.CatalogRepository,
) *ProjectService {
	return &ProjectService{
		repo:        repo,
		controlRepo: controlRepo,
		catalogRepo: catalogRepo,
		validate:    validator.New(),
	}
}

type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
}

type UpdateProjectInput struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	Status      patch.Field[string] `json:"status"`
}

// ProjectDetail is a project with its controls and derived stats.
type ProjectDetail struct {
	*model.Project
	Controls []model.ProjectControl `json:"controls"`
	Stats    model.ControlStats     `json:"stats"`
	Progress int                    `json:"progress"`
}

func (s *ProjectService) List(ctx context.Context, orgID uuid.UUID) ([]*model.Project, error) {
	return s.repo.FindAllByOrganization(ctx, orgID)
}

func (s *ProjectService) Create(ctx context.Context, orgID uuid.UUID, input CreateProjectInput) (*model.Project, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	project := &model.Project{
		OrganizationID: orgID,
		Name:           input.Name,
		Description:    input.Description,
		Status:         model.ProjectActive,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, orgID, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.repo.FindByIDInOrganization(ctx, projectID, orgID)
	if err != nil {
		return nil, err
	}

	controls, err := s.controlRepo.FindAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stats := model.ComputeControlStats(controls)
	return &ProjectDetail{
		Project:  project,
		Controls: controls,
		Stats:    stats,
		Progress: stats.Progress(),
	}, nil
}

func (s *ProjectService) Update(ctx context.Context, orgID, projectID uuid.UUID, input UpdateProjectInput) (*model.Project, error) {
	project, err := s.repo.FindByIDInOrganization(ctx, projectID, orgID)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := input.Name.Get()
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: name must be at least 2 characters", domain.ErrInvalidInput)
		}
		project.Name = name
	}
	if input.Description.Set {
		project.Description = input.Description.Get()
	}
	if input.Status.Set {
		status := model.ProjectStatus(input.Status.Get())
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid project status", domain.ErrInvalidInput)
		}
		project.Status = status
	}

	if err := s.repo.Save(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, orgID, projectID uuid.UUID) error {
	project, err := s.repo.FindByIDInOrganization(ctx, projectID, orgID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, project)
}

// DashboardSummary is the organization-wide rollup shown on the landing page.
type DashboardSummary struct {
	ProjectCount  int64              `json:"projectCount"`
	StandardCount int64              `json:"standardCount"`
	Stats         model.ControlStats `json:"stats"`
	Progress      int                `json:"progress"`
}

func (s *ProjectService) Dashboard(ctx context.Context, orgID uuid.UUID) (*DashboardSummary, error) {
	projectCount, err := s.repo.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	standardCount, err := s.catalogRepo.CountGlobalStandards(ctx)
	if err != nil {
		return nil, err
	}

	controls, err := s.controlRepo.FindAllByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	stats := model.ComputeControlStats(controls)
	return &DashboardSummary{
		ProjectCount:  projectCount,
		StandardCount: standardCount,
		Stats:         stats,
		Progress:      stats.Progress(),
	}, nil
}
