// internal/service/catalog.go
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
)

// CatalogService serves the shared standards/controls catalog. The catalog is
// read-only through the API; writes happen through seeding.
type CatalogService struct {
	repo *repository.CatalogRepository
}

func NewCatalogService(repo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListStandards(ctx context.Context) ([]*model.Standard, error) {
	return s.repo.FindGlobalStandards(ctx)
}

func (s *CatalogService) GetStandard(ctx context.Context, id uuid.UUID) (*model.Standard, error) {
	return s.repo.FindGlobalStandardByID(ctx, id)
}

type ControlFilter struct {
	StandardID *uuid.UUID
	Category   string
	Search     string
}

func (s *CatalogService) SearchControls(ctx context.Context, filter ControlFilter) ([]model.Control, error) {
	return s.repo.SearchControls(ctx, filter.StandardID, filter.Category, filter.Search)
}
