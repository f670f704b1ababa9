// internal/service/audit.go
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

type AuditService struct {
	projectRepo *repository.ProjectRepository
	controlRepo *repository.ProjectControlRepository
	repo        *repository.AuditRepository
	validate    *validator.Validate
	now         func() time.Time
}

func NewAuditService(
	projectRepo *repository.ProjectRepository,
	controlRepo *repository.ProjectControlRepository,
	repo *repository.AuditRepository,
) *AuditService {
	return &AuditService{
		projectRepo: projectRepo,
		controlRepo: controlRepo,
		repo:        repo,
		validate:    validator.New(),
		now:         time.Now,
	}
}

type StartAuditInput struct {
	StartedBy string `json:"startedBy" validate:"required,min=1"`
	Notes     string `json:"notes"`
}

type CompleteAuditInput struct {
	Status      string `json:"status" validate:"required,eq=COMPLETED"`
	CompletedBy string `json:"completedBy" validate:"required,min=1"`
	Notes       string `json:"notes"`
}

type UpdateControlAuditInput struct {
	VerificationStatus string              `json:"verificationStatus" validate:"required,oneof=NOT_VERIFIED VERIFIED NEEDS_ATTENTION"`
	Notes              patch.Field[string] `json:"notes"`
}

// AuditDetail is an audit with its derived verification stats.
type AuditDetail struct {
	*model.Audit
	Stats    model.AuditStats `json:"stats"`
	Progress int              `json:"progress"`
}

func (s *AuditService) List(ctx context.Context, orgID, projectID uuid.UUID) ([]*AuditDetail, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	audits, err := s.repo.FindAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	details := make([]*AuditDetail, 0, len(audits))
	for _, a := range audits {
		details = append(details, withStats(a))
	}
	return details, nil
}

// Start opens a new audit and snapshots one verification row per control
// currently attached to the project. At most one audit per project may be
// open at a time.
func (s *AuditService) Start(ctx context.Context, orgID, projectID uuid.UUID, input StartAuditInput) (*AuditDetail, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	open, err := s.repo.HasInProgress(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrAuditInProgressExists
	}

	controls, err := s.controlRepo.FindAllByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	audit := &model.Audit{
		ProjectID: projectID,
		Status:    model.AuditInProgress,
		StartedBy: input.StartedBy,
		StartedAt: s.now(),
		Notes:     input.Notes,
	}
	if err := s.repo.CreateWithSnapshots(ctx, audit, controls); err != nil {
		return nil, err
	}
	return withStats(audit), nil
}

func (s *AuditService) Get(ctx context.Context, orgID, projectID, auditID uuid.UUID) (*AuditDetail, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	audit, err := s.repo.FindByIDInProject(ctx, auditID, projectID)
	if err != nil {
		return nil, err
	}
	return withStats(audit), nil
}

// Complete closes the audit. Completion is one-way; a completed audit rejects
// every further write.
func (s *AuditService) Complete(ctx context.Context, orgID, projectID, auditID uuid.UUID, input CompleteAuditInput) (*AuditDetail, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	detail, err := s.Get(ctx, orgID, projectID, auditID)
	if err != nil {
		return nil, err
	}
	audit := detail.Audit

	if audit.Status == model.AuditCompleted {
		return nil, domain.ErrAuditCompleted
	}

	now := s.now()
	audit.Status = model.AuditCompleted
	audit.CompletedBy = input.CompletedBy
	audit.CompletedAt = &now
	if input.Notes != "" {
		audit.Notes = input.Notes
	}

	if err := s.repo.Save(ctx, audit); err != nil {
		return nil, err
	}
	return withStats(audit), nil
}

// Delete removes an audit regardless of status, snapshots included.
func (s *AuditService) Delete(ctx context.Context, orgID, projectID, auditID uuid.UUID) error {
	detail, err := s.Get(ctx, orgID, projectID, auditID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, detail.Audit)
}

// UpdateControlAudit records a verification result on one snapshot row. The
// parent audit must still be open.
func (s *AuditService) UpdateControlAudit(ctx context.Context, orgID, projectID, auditID, controlAuditID uuid.UUID, reviewer string, input UpdateControlAuditInput) (*model.ControlAudit, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	detail, err := s.Get(ctx, orgID, projectID, auditID)
	if err != nil {
		return nil, err
	}
	if detail.Audit.Status == model.AuditCompleted {
		return nil, domain.ErrAuditCompleted
	}

	ca, err := s.repo.FindControlAudit(ctx, controlAuditID, auditID)
	if err != nil {
		return nil, err
	}

	status := model.VerificationStatus(input.VerificationStatus)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid verification status", domain.ErrInvalidInput)
	}

	ca.ApplyVerification(status, reviewer, s.now())
	if input.Notes.Set {
		ca.Notes = input.Notes.Get()
	}

	if err := s.repo.SaveControlAudit(ctx, ca); err != nil {
		return nil, err
	}
	return ca, nil
}

func withStats(audit *model.Audit) *AuditDetail {
	stats := model.ComputeAuditStats(audit.ControlAudits)
	return &AuditDetail{Audit: audit, Stats: stats, Progress: stats.Progress()}
}
