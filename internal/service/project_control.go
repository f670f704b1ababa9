// internal/service/project_control.go
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

type ProjectControlService struct {
	projectRepo *repository.ProjectRepository
	repo        *repository.ProjectControlRepository
	catalogRepo *repository.CatalogRepository
	validate    *validator.Validate
	now         func() time.Time
}

func NewProjectControlService(
	projectRepo *repository.ProjectRepository,
	repo *repository.ProjectControlRepository,
	catalogRepo *repository.CatalogRepository,
) *ProjectControlService {
	return &ProjectControlService{
		projectRepo: projectRepo,
		repo:        repo,
		catalogRepo: catalogRepo,
		validate:    validator.New(),
		now:         time.Now,
	}
}

type AddControlsInput struct {
	ControlIDs []uuid.UUID `json:"controlIds" validate:"required,min=1"`
}

// AddControlsResult reports how the batch split between new attachments and
// already-attached controls.
type AddControlsResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type UpdateProjectControlInput struct {
	ImplementationStatus      patch.Field[string]    `json:"implementationStatus"`
	ImplementationDescription patch.Field[string]    `json:"implementationDescription"`
	ReferenceURL              patch.Field[string]    `json:"referenceUrl"`
	ResponsiblePerson         patch.Field[string]    `json:"responsiblePerson"`
	DueDate                   patch.Field[time.Time] `json:"dueDate"`
}

func (s *ProjectControlService) List(ctx context.Context, orgID, projectID uuid.UUID) ([]model.ProjectControl, model.ControlStats, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, model.ControlStats{}, err
	}

	controls, err := s.repo.FindAllByProject(ctx, projectID)
	if err != nil {
		return nil, model.ControlStats{}, err
	}
	return controls, model.ComputeControlStats(controls), nil
}

// AddControls attaches catalog controls to the project. Unknown IDs fail the
// whole batch; already-attached controls are skipped. A batch where every
// control is already attached is rejected.
func (s *ProjectControlService) AddControls(ctx context.Context, orgID, projectID uuid.UUID, input AddControlsInput) (*AddControlsResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	known, err := s.catalogRepo.FindControlsByIDs(ctx, input.ControlIDs)
	if err != nil {
		return nil, err
	}
	if len(known) != len(dedupe(input.ControlIDs)) {
		return nil, fmt.Errorf("%w: one or more controls do not exist", domain.ErrInvalidInput)
	}

	existing, err := s.repo.ExistingControlIDs(ctx, projectID, input.ControlIDs)
	if err != nil {
		return nil, err
	}

	var toAdd []model.ProjectControl
	skipped := 0
	seen := make(map[uuid.UUID]bool, len(input.ControlIDs))
	for _, controlID := range input.ControlIDs {
		if seen[controlID] {
			continue
		}
		seen[controlID] = true
		if existing[controlID] {
			skipped++
			continue
		}
		toAdd = append(toAdd, model.ProjectControl{
			ProjectID:            projectID,
			ControlID:            controlID,
			ImplementationStatus: model.StatusNotStarted,
		})
	}

	if len(toAdd) == 0 {
		return nil, domain.ErrControlsAlreadyAdded
	}

	if err := s.repo.CreateBatch(ctx, toAdd); err != nil {
		return nil, err
	}
	return &AddControlsResult{Added: len(toAdd), Skipped: skipped}, nil
}

func (s *ProjectControlService) Get(ctx context.Context, orgID, projectID, controlID uuid.UUID) (*model.ProjectControl, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}
	return s.repo.FindByProjectAndControl(ctx, projectID, controlID)
}

// Update applies a partial update. When a status is part of the request the
// completion timestamp follows it: IMPLEMENTED stamps it, anything else
// clears it. A request without a status leaves the timestamp alone.
func (s *ProjectControlService) Update(ctx context.Context, orgID, projectID, controlID uuid.UUID, input UpdateProjectControlInput) (*model.ProjectControl, error) {
	pc, err := s.Get(ctx, orgID, projectID, controlID)
	if err != nil {
		return nil, err
	}

	if input.ImplementationStatus.Set {
		status := model.ImplementationStatus(input.ImplementationStatus.Get())
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid implementation status", domain.ErrInvalidInput)
		}
		pc.ApplyStatus(status, s.now())
	}
	if input.ImplementationDescription.Set {
		pc.ImplementationDescription = input.ImplementationDescription.Get()
	}
	if input.ReferenceURL.Set {
		url := input.ReferenceURL.Get()
		if url != "" {
			if err := s.validate.Var(url, "url"); err != nil {
				return nil, fmt.Errorf("%w: referenceUrl must be a valid URL", domain.ErrInvalidInput)
			}
		}
		pc.ReferenceURL = url
	}
	if input.ResponsiblePerson.Set {
		pc.ResponsiblePerson = input.ResponsiblePerson.Get()
	}
	if input.DueDate.Set {
		pc.DueDate = input.DueDate.Value
	}

	if err := s.repo.Save(ctx, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *ProjectControlService) Remove(ctx context.Context, orgID, projectID, controlID uuid.UUID) error {
	pc, err := s.Get(ctx, orgID, projectID, controlID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, pc)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
