// internal/service/measure.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/patch"
	"github.com/grundwerk/grundwerk/internal/repository"
)

type MeasureService struct {
	projectRepo *repository.ProjectRepository
	repo        *repository.MeasureRepository
	validate    *validator.Validate
	now         func() time.Time
}

func NewMeasureService(projectRepo *repository.ProjectRepository, repo *repository.MeasureRepository) *MeasureService {
	return &MeasureService{
		projectRepo: projectRepo,
		repo:        repo,
		validate:    validator.New(),
		now:         time.Now,
	}
}

type CreateMeasureInput struct {
	Name              string     `json:"name" validate:"required,min=2"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	Status            string     `json:"status"`
	ResponsiblePerson string     `json:"responsiblePerson"`
	DueDate           *time.Time `json:"dueDate"`
	Evidence          string     `json:"evidence"`
}

type UpdateMeasureInput struct {
	Name              patch.Field[string]    `json:"name"`
	Description       patch.Field[string]    `json:"description"`
	Category          patch.Field[string]    `json:"category"`
	Status            patch.Field[string]    `json:"status"`
	ResponsiblePerson patch.Field[string]    `json:"responsiblePerson"`
	DueDate           patch.Field[time.Time] `json:"dueDate"`
	Evidence          patch.Field[string]    `json:"evidence"`
}

func (s *MeasureService) List(ctx context.Context, orgID, projectID uuid.UUID) ([]model.OrganizationalMeasure, model.MeasureStats, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, model.MeasureStats{}, err
	}

	measures, err := s.repo.FindAllByProject(ctx, projectID)
	if err != nil {
		return nil, model.MeasureStats{}, err
	}
	return measures, model.ComputeMeasureStats(measures), nil
}

func (s *MeasureService) Create(ctx context.Context, orgID, projectID uuid.UUID, input CreateMeasureInput) (*model.OrganizationalMeasure, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	if input.Category != "" && !model.ValidMeasureCategory(input.Category) {
		return nil, fmt.Errorf("%w: invalid measure category", domain.ErrInvalidInput)
	}

	status := model.StatusNotStarted
	if input.Status != "" {
		status = model.ImplementationStatus(input.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status", domain.ErrInvalidInput)
		}
	}

	measure := &model.OrganizationalMeasure{
		ProjectID:         projectID,
		Name:              input.Name,
		Description:       input.Description,
		Category:          input.Category,
		ResponsiblePerson: input.ResponsiblePerson,
		DueDate:           input.DueDate,
		Evidence:          input.Evidence,
	}
	measure.ApplyStatus(status, s.now())

	if err := s.repo.Create(ctx, measure); err != nil {
		return nil, err
	}
	return measure, nil
}

func (s *MeasureService) Get(ctx context.Context, orgID, projectID, measureID uuid.UUID) (*model.OrganizationalMeasure, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}
	return s.repo.FindByIDInProject(ctx, measureID, projectID)
}

func (s *MeasureService) Update(ctx context.Context, orgID, projectID, measureID uuid.UUID, input UpdateMeasureInput) (*model.OrganizationalMeasure, error) {
	measure, err := s.Get(ctx, orgID, projectID, measureID)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := input.Name.Get()
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: name must be at least 2 characters", domain.ErrInvalidInput)
		}
		measure.Name = name
	}
	if input.Description.Set {
		measure.Description = input.Description.Get()
	}
	if input.Category.Set {
		category := input.Category.Get()
		if category != "" && !model.ValidMeasureCategory(category) {
			return nil, fmt.Errorf("%w: invalid measure category", domain.ErrInvalidInput)
		}
		measure.Category = category
	}
	if input.Status.Set {
		status := model.ImplementationStatus(input.Status.Get())
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid status", domain.ErrInvalidInput)
		}
		measure.ApplyStatus(status, s.now())
	}
	if input.ResponsiblePerson.Set {
		measure.ResponsiblePerson = input.ResponsiblePerson.Get()
	}
	if input.DueDate.Set {
		measure.DueDate = input.DueDate.Value
	}
	if input.Evidence.Set {
		measure.Evidence = input.Evidence.Get()
	}

	if err := s.repo.Save(ctx, measure); err != nil {
		return nil, err
	}
	return measure, nil
}

func (s *MeasureService) Delete(ctx context.Context, orgID, projectID, measureID uuid.UUID) error {
	measure, err := s.Get(ctx, orgID, projectID, measureID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, measure)
}
