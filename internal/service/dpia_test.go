package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/patch"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDPIAFixture(t *testing.T) (*gorm.DB, *DPIAService, uuid.UUID, *model.Project) {
	t.Helper()

	db := newTestDB(t)
	out := registerOrg(t, db, "jane@acme.test", "Acme")
	orgID := out.Organization.ID

	projects := NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewProjectControlRepository(db),
		repository.NewCatalogRepository(db),
	)
	project, err := projects.Create(context.Background(), orgID, CreateProjectInput{Name: "Customer Portal"})
	require.NoError(t, err)

	svc := NewDPIAService(
		repository.NewProjectRepository(db),
		repository.NewProjectControlRepository(db),
		repository.NewMeasureRepository(db),
		repository.NewDPIARepository(db),
	)
	return db, svc, orgID, project
}

func TestDPIACreateIsSingleton(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, orgID, project.ID, CreateDPIAInput{
		ProcessingDescription: "Processing of customer account data",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DPIADraft, created.Status)

	_, err = svc.Create(ctx, orgID, project.ID, CreateDPIAInput{})
	assert.ErrorIs(t, err, domain.ErrDPIAExists)
}

func TestDPIAGetAbsent(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)

	_, err := svc.Get(context.Background(), orgID, project.ID)
	assert.ErrorIs(t, err, domain.ErrDPIANotFound)
}

func TestDPIARiskListRoundTrip(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, orgID, project.ID, CreateDPIAInput{})
	require.NoError(t, err)

	risks := model.RiskList{
		{Description: "Unauthorized access", Likelihood: model.RiskMedium, Impact: model.RiskHigh},
		{Description: "Excessive retention", Likelihood: model.RiskLow, Impact: model.RiskMedium, Mitigated: true},
	}
	_, err = svc.Update(ctx, orgID, project.ID, UpdateDPIAInput{
		IdentifiedRisks: patch.Field[model.RiskList]{Set: true, Value: &risks},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, orgID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, risks, got.IdentifiedRisks)
}

func TestDPIAPatchTriState(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, orgID, project.ID, CreateDPIAInput{
		ProcessingDescription: "Initial description",
		DataCategories:        model.StringList{"contact details"},
	})
	require.NoError(t, err)

	// Absent fields stay untouched.
	basis := "Art. 6(1)(b) GDPR"
	updated, err := svc.Update(ctx, orgID, project.ID, UpdateDPIAInput{
		LegalBasis: patch.Field[string]{Set: true, Value: &basis},
	})
	require.NoError(t, err)
	assert.Equal(t, "Initial description", updated.ProcessingDescription)
	assert.Equal(t, model.StringList{"contact details"}, updated.DataCategories)
	assert.Equal(t, basis, updated.LegalBasis)

	// Explicit null clears, and an empty list reads back as null.
	updated, err = svc.Update(ctx, orgID, project.ID, UpdateDPIAInput{
		DataCategories: patch.Field[model.StringList]{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DataCategories)

	got, err := svc.Get(ctx, orgID, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DataCategories)
}

func TestDPIAStatusIsUnguarded(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, orgID, project.ID, CreateDPIAInput{})
	require.NoError(t, err)

	// Any valid status can follow any other.
	for _, status := range []string{"APPROVED", "DRAFT", "REQUIRES_CONSULTATION", "IN_REVIEW"} {
		s := status
		updated, err := svc.Update(ctx, orgID, project.ID, UpdateDPIAInput{
			Status: patch.Field[string]{Set: true, Value: &s},
		})
		require.NoError(t, err)
		assert.Equal(t, model.DPIAStatus(status), updated.Status)
	}

	bad := "SHIPPED"
	_, err = svc.Update(ctx, orgID, project.ID, UpdateDPIAInput{
		Status: patch.Field[string]{Set: true, Value: &bad},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDPIADelete(t *testing.T) {
	_, svc, orgID, project := newDPIAFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, orgID, project.ID, CreateDPIAInput{})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, orgID, project.ID))

	_, err = svc.Get(ctx, orgID, project.ID)
	assert.ErrorIs(t, err, domain.ErrDPIANotFound)
}
