// internal/service/dpia.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/patch"
	"github.com/grundwerk/grundwerk/internal/repository"
)

type DPIAService struct {
	projectRepo *repository.ProjectRepository
	controlRepo *repository.ProjectControlRepository
	measureRepo *repository.MeasureRepository
	repo        *repository.DPIARepository
	validate    *validator.Validate
}

func NewDPIAService(
	projectRepo *repository.ProjectRepository,
	controlRepo *repository.ProjectControlRepository,
	measureRepo *repository.MeasureRepository,
	repo *repository.DPIARepository,
) *DPIAService {
	return &DPIAService{
		projectRepo: projectRepo,
		controlRepo: controlRepo,
		measureRepo: measureRepo,
		repo:        repo,
		validate:    validator.New(),
	}
}

// CreateDPIAInput seeds the assessment. Everything beyond the processing
// description can be filled in later through PATCH.
type CreateDPIAInput struct {
	ProcessingDescription string           `json:"processingDescription"`
	DataCategories        model.StringList `json:"dataCategories"`
	SensitiveDataTypes    model.StringList `json:"sensitiveDataTypes"`
	DataSubjects          string           `json:"dataSubjects"`
	EstimatedDataSubjects string           `json:"estimatedDataSubjects"`
	ProcessingPurpose     string           `json:"processingPurpose"`
	LegalBasis            string           `json:"legalBasis"`
	TechnologyDescription string           `json:"technologyDescription"`
	PreliminaryRiskLevel  string           `json:"preliminaryRiskLevel"`
	AssessorName          string           `json:"assessorName"`
	AssessorRole          string           `json:"assessorRole"`
}

// UpdateDPIAInput carries the full questionnaire with tri-state fields:
// absent keys leave the stored value untouched, explicit nulls clear it.
type UpdateDPIAInput struct {
	Status                patch.Field[string]           `json:"status"`
	ProcessingDescription patch.Field[string]           `json:"processingDescription"`
	DataCategories        patch.Field[model.StringList] `json:"dataCategories"`
	SensitiveDataTypes    patch.Field[model.StringList] `json:"sensitiveDataTypes"`
	DataSubjects          patch.Field[string]           `json:"dataSubjects"`
	EstimatedDataSubjects patch.Field[string]           `json:"estimatedDataSubjects"`
	ProcessingPurpose     patch.Field[string]           `json:"processingPurpose"`
	LegalBasis            patch.Field[string]           `json:"legalBasis"`
	TechnologyDescription patch.Field[string]           `json:"technologyDescription"`
	PreliminaryRiskLevel  patch.Field[string]           `json:"preliminaryRiskLevel"`

	IdentifiedRisks           patch.Field[model.RiskList] `json:"identifiedRisks"`
	DataProtectionByDesign    patch.Field[string]         `json:"dataProtectionByDesign"`
	ResidualRiskLevel         patch.Field[string]         `json:"residualRiskLevel"`
	ResidualRiskJustification patch.Field[string]         `json:"residualRiskJustification"`

	RequiresFDPICConsultation patch.Field[bool]      `json:"requiresFdpicConsultation"`
	DPOConsulted              patch.Field[bool]      `json:"dpoConsulted"`
	DPOName                   patch.Field[string]    `json:"dpoName"`
	DPOOpinion                patch.Field[string]    `json:"dpoOpinion"`
	FDPICSubmissionDate       patch.Field[time.Time] `json:"fdpicSubmissionDate"`

	AssessorName patch.Field[string]    `json:"assessorName"`
	AssessorRole patch.Field[string]    `json:"assessorRole"`
	ApprovedBy   patch.Field[string]    `json:"approvedBy"`
	ApprovalDate patch.Field[time.Time] `json:"approvalDate"`
}

// DPIADetail is the assessment plus its completion heuristic.
type DPIADetail struct {
	*model.DPIA
	CompletionPercentage int `json:"completionPercentage"`
}

func (s *DPIAService) Get(ctx context.Context, orgID, projectID uuid.UUID) (*DPIADetail, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	dpia, err := s.repo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.withCompletion(ctx, dpia)
}

// Create opens the project's assessment. A project can have at most one.
func (s *DPIAService) Create(ctx context.Context, orgID, projectID uuid.UUID, input CreateDPIAInput) (*DPIADetail, error) {
	if _, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByProject(ctx, projectID); err == nil {
		return nil, domain.ErrDPIAExists
	} else if !errors.Is(err, domain.ErrDPIANotFound) {
		return nil, err
	}

	if input.PreliminaryRiskLevel != "" && !model.RiskLevel(input.PreliminaryRiskLevel).Valid() {
		return nil, fmt.Errorf("%w: invalid preliminary risk level", domain.ErrInvalidInput)
	}

	dpia := &model.DPIA{
		ProjectID:             projectID,
		Status:                model.DPIADraft,
		ProcessingDescription: input.ProcessingDescription,
		DataCategories:        input.DataCategories,
		SensitiveDataTypes:    input.SensitiveDataTypes,
		DataSubjects:          input.DataSubjects,
		EstimatedDataSubjects: input.EstimatedDataSubjects,
		ProcessingPurpose:     input.ProcessingPurpose,
		LegalBasis:            input.LegalBasis,
		TechnologyDescription: input.TechnologyDescription,
		PreliminaryRiskLevel:  model.RiskLevel(input.PreliminaryRiskLevel),
		AssessorName:          input.AssessorName,
		AssessorRole:          input.AssessorRole,
	}
	if err := s.repo.Create(ctx, dpia); err != nil {
		return nil, err
	}
	return s.withCompletion(ctx, dpia)
}

// Update applies a tri-state partial update. The status is a workflow label
// with no transition rules; any valid value can follow any other.
func (s *DPIAService) Update(ctx context.Context, orgID, projectID uuid.UUID, input UpdateDPIAInput) (*DPIADetail, error) {
	detail, err := s.Get(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	dpia := detail.DPIA

	if input.Status.Set {
		status := model.DPIAStatus(input.Status.Get())
		if !status.Valid() {
			return nil, fmt.Errorf("%w: invalid dpia status", domain.ErrInvalidInput)
		}
		dpia.Status = status
	}
	if input.PreliminaryRiskLevel.Set {
		if err := applyRiskLevel(&dpia.PreliminaryRiskLevel, input.PreliminaryRiskLevel); err != nil {
			return nil, err
		}
	}
	if input.ResidualRiskLevel.Set {
		if err := applyRiskLevel(&dpia.ResidualRiskLevel, input.ResidualRiskLevel); err != nil {
			return nil, err
		}
	}
	if input.IdentifiedRisks.Set {
		risks := input.IdentifiedRisks.Get()
		for _, risk := range risks {
			if err := s.validate.Struct(risk); err != nil {
				return nil, err
			}
		}
		dpia.IdentifiedRisks = risks
	}

	applyString(&dpia.ProcessingDescription, input.ProcessingDescription)
	applyList(&dpia.DataCategories, input.DataCategories)
	applyList(&dpia.SensitiveDataTypes, input.SensitiveDataTypes)
	applyString(&dpia.DataSubjects, input.DataSubjects)
	applyString(&dpia.EstimatedDataSubjects, input.EstimatedDataSubjects)
	applyString(&dpia.ProcessingPurpose, input.ProcessingPurpose)
	applyString(&dpia.LegalBasis, input.LegalBasis)
	applyString(&dpia.TechnologyDescription, input.TechnologyDescription)
	applyString(&dpia.DataProtectionByDesign, input.DataProtectionByDesign)
	applyString(&dpia.ResidualRiskJustification, input.ResidualRiskJustification)
	applyBool(&dpia.RequiresFDPICConsultation, input.RequiresFDPICConsultation)
	applyBool(&dpia.DPOConsulted, input.DPOConsulted)
	applyString(&dpia.DPOName, input.DPOName)
	applyString(&dpia.DPOOpinion, input.DPOOpinion)
	applyTime(&dpia.FDPICSubmissionDate, input.FDPICSubmissionDate)
	applyString(&dpia.AssessorName, input.AssessorName)
	applyString(&dpia.AssessorRole, input.AssessorRole)
	applyString(&dpia.ApprovedBy, input.ApprovedBy)
	applyTime(&dpia.ApprovalDate, input.ApprovalDate)

	if err := s.repo.Save(ctx, dpia); err != nil {
		return nil, err
	}
	return s.withCompletion(ctx, dpia)
}

func (s *DPIAService) Delete(ctx context.Context, orgID, projectID uuid.UUID) error {
	detail, err := s.Get(ctx, orgID, projectID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, detail.DPIA)
}

func (s *DPIAService) withCompletion(ctx context.Context, dpia *model.DPIA) (*DPIADetail, error) {
	controlCount, err := s.controlRepo.CountByProject(ctx, dpia.ProjectID)
	if err != nil {
		return nil, err
	}
	measureCount, err := s.measureRepo.CountByProject(ctx, dpia.ProjectID)
	if err != nil {
		return nil, err
	}
	return &DPIADetail{
		DPIA:                 dpia,
		CompletionPercentage: dpia.CompletionPercent(int(controlCount), int(measureCount)),
	}, nil
}

func applyString(dst *string, f patch.Field[string]) {
	if f.Set {
		*dst = f.Get()
	}
}

func applyBool(dst *bool, f patch.Field[bool]) {
	if f.Set {
		*dst = f.Get()
	}
}

func applyTime(dst **time.Time, f patch.Field[time.Time]) {
	if f.Set {
		*dst = f.Value
	}
}

func applyList(dst *model.StringList, f patch.Field[model.StringList]) {
	if f.Set {
		*dst = f.Get()
	}
}

func applyRiskLevel(dst *model.RiskLevel, f patch.Field[string]) error {
	level := model.RiskLevel(f.Get())
	if f.Value != nil && !level.Valid() {
		return fmt.Errorf("%w: invalid risk level", domain.ErrInvalidInput)
	}
	*dst = level
	return nil
}
