// internal/service/report.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/report"
	"github.com/grundwerk/grundwerk/internal/repository"
)

type ReportService struct {
	projectRepo *repository.ProjectRepository
	controlRepo *repository.ProjectControlRepository
	measureRepo *repository.MeasureRepository
	dpiaRepo    *repository.DPIARepository
	now         func() time.Time
}

func NewReportService(
	projectRepo *repository.ProjectRepository,
	controlRepo *repository.ProjectControlRepository,
	measureRepo *repository.MeasureRepository,
	dpiaRepo *repository.DPIARepository,
) *ReportService {
	return &ReportService{
		projectRepo: projectRepo,
		controlRepo: controlRepo,
		measureRepo: measureRepo,
		dpiaRepo:    dpiaRepo,
		now:         time.Now,
	}
}

// Compliance renders the project compliance PDF and its filename.
func (s *ReportService) Compliance(ctx context.Context, orgID, projectID uuid.UUID) (filename string, pdf []byte, err error) {
	project, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID)
	if err != nil {
		return "", nil, err
	}

	controls, err := s.controlRepo.FindAllByProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	pdf, err = report.Compliance(project, controls, model.ComputeControlStats(controls), now)
	if err != nil {
		return "", nil, err
	}
	return report.ComplianceFilename(project.Name, now), pdf, nil
}

// DPIA renders the project's DPIA PDF and its filename.
func (s *ReportService) DPIA(ctx context.Context, orgID, projectID uuid.UUID) (filename string, pdf []byte, err error) {
	project, err := s.projectRepo.FindByIDInOrganization(ctx, projectID, orgID)
	if err != nil {
		return "", nil, err
	}

	dpia, err := s.dpiaRepo.FindByProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	controls, err := s.controlRepo.FindAllByProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	measures, err := s.measureRepo.FindAllByProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	pdf, err = report.DPIA(project, dpia, controls, measures, now)
	if err != nil {
		return "", nil, err
	}
	return report.DPIAFilename(project.Name, now), pdf, nil
}
