// Package seed loads the embedded standard/control catalogs into the
// database. Seeding is idempotent: standards are keyed by (shortName,
// version), controls by (standardId, code), and re-runs update in place.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
)

//go:embed data/*.json
var catalogFS embed.FS

type catalogFile struct {
	Standard struct {
		Name        string `json:"name"`
		ShortName   string `json:"shortName"`
		Version     string `json:"version"`
		Description string `json:"description"`
	} `json:"standard"`
	Controls []struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
	} `json:"controls"`
}

// Summary reports what a seed run changed.
type Summary struct {
	Standards       int
	ControlsCreated int
	ControlsUpdated int
}

type Seeder struct {
	repo *repository.CatalogRepository
}

func New(repo *repository.CatalogRepository) *Seeder {
	return &Seeder{repo: repo}
}

// Run upserts every embedded catalog, in filename order.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	entries, err := catalogFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	summary := &Summary{}
	for _, name := range names {
		if err := s.seedFile(ctx, name, summary); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", name, err)
		}
	}
	return summary, nil
}

func (s *Seeder) seedFile(ctx context.Context, name string, summary *Summary) error {
	raw, err := catalogFS.ReadFile("data/" + name)
	if err != nil {
		return err
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing catalog: %w", err)
	}

	standard := &model.Standard{
		Name:        file.Standard.Name,
		ShortName:   file.Standard.ShortName,
		Version:     file.Standard.Version,
		Description: file.Standard.Description,
		IsGlobal:    true,
	}
	if _, err := s.repo.UpsertStandard(ctx, standard); err != nil {
		return err
	}
	summary.Standards++

	created, updated := 0, 0
	for _, c := range file.Controls {
		control := &model.Control{
			StandardID:  standard.ID,
			Code:        c.Code,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
			Subcategory: c.Subcategory,
		}
		wasCreated, err := s.repo.UpsertControl(ctx, control)
		if err != nil {
			return err
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}
	summary.ControlsCreated += created
	summary.ControlsUpdated += updated

	slog.Info("seeded catalog",
		"standard", standard.ShortName,
		"version", standard.Version,
		"created", created,
		"updated", updated,
	)
	return nil
}
