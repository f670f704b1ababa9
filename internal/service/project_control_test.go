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

func newControlFixture(t *testing.T) (*gorm.DB, *ProjectControlService, uuid.UUID, *model.Project, *model.Standard) {
	t.Helper()

	db := newTestDB(t)
	out := registerOrg(t, db, "jane@acme.test", "Acme")
	orgID := out.Organization.ID

	projects := NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewProjectControlRepository(db),
		repository.NewCatalogRepository(db),
	)
	project, err := projects.Create(context.Background(), orgID, CreateProjectInput{Name: "SOC2 Prep"})
	require.NoError(t, err)

	standard := seedStandard(t, db, "SOC2", 10)

	svc := NewProjectControlService(
		repository.NewProjectRepository(db),
		repository.NewProjectControlRepository(db),
		repository.NewCatalogRepository(db),
	)
	return db, svc, orgID, project, standard
}

func TestAddControlsSkipsAlreadyAttached(t *testing.T) {
	_, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()
	ids := controlIDs(standard)

	result, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: ids[:2]})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Skipped)

	// [A, B] where B is attached: A added, B skipped.
	result, err = svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: []uuid.UUID{ids[2], ids[1]}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Skipped)

	// Everything already attached.
	_, err = svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: ids[:3]})
	assert.ErrorIs(t, err, domain.ErrControlsAlreadyAdded)
}

func TestAddControlsUnknownIDFailsBatch(t *testing.T) {
	_, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()

	_, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{
		ControlIDs: []uuid.UUID{standard.Controls[0].ID, uuid.New()},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// The failed batch must not have attached anything.
	controls, _, err := svc.List(ctx, orgID, project.ID)
	require.NoError(t, err)
	assert.Empty(t, controls)
}

func TestUpdateStatusDrivesCompletedAt(t *testing.T) {
	_, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()
	controlID := standard.Controls[0].ID

	_, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: []uuid.UUID{controlID}})
	require.NoError(t, err)

	status := string(model.StatusImplemented)
	pc, err := svc.Update(ctx, orgID, project.ID, controlID, UpdateProjectControlInput{
		ImplementationStatus: patch.Field[string]{Set: true, Value: &status},
	})
	require.NoError(t, err)
	assert.NotNil(t, pc.CompletedAt)

	// A PATCH without a status leaves completedAt alone.
	desc := "Reviewed quarterly"
	pc, err = svc.Update(ctx, orgID, project.ID, controlID, UpdateProjectControlInput{
		ImplementationDescription: patch.Field[string]{Set: true, Value: &desc},
	})
	require.NoError(t, err)
	assert.NotNil(t, pc.CompletedAt)
	assert.Equal(t, desc, pc.ImplementationDescription)

	// Moving away from IMPLEMENTED clears it.
	status = string(model.StatusInProgress)
	pc, err = svc.Update(ctx, orgID, project.ID, controlID, UpdateProjectControlInput{
		ImplementationStatus: patch.Field[string]{Set: true, Value: &status},
	})
	require.NoError(t, err)
	assert.Nil(t, pc.CompletedAt)
}

func TestUpdateRejectsBadReferenceURL(t *testing.T) {
	_, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()
	controlID := standard.Controls[0].ID

	_, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: []uuid.UUID{controlID}})
	require.NoError(t, err)

	bad := "not a url"
	_, err = svc.Update(ctx, orgID, project.ID, controlID, UpdateProjectControlInput{
		ReferenceURL: patch.Field[string]{Set: true, Value: &bad},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTenantIsolationReadsAsNotFound(t *testing.T) {
	db, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()

	_, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: controlIDs(standard)[:1]})
	require.NoError(t, err)

	other := registerOrg(t, db, "eve@other.test", "Other Org")

	// Another tenant sees the project as absent, never as forbidden.
	_, _, err = svc.List(ctx, other.Organization.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectProgressScenario(t *testing.T) {
	db, svc, orgID, project, standard := newControlFixture(t)
	ctx := context.Background()
	ids := controlIDs(standard)

	_, err := svc.AddControls(ctx, orgID, project.ID, AddControlsInput{ControlIDs: ids})
	require.NoError(t, err)

	setStatus := func(controlID uuid.UUID, s model.ImplementationStatus) {
		status := string(s)
		_, err := svc.Update(ctx, orgID, project.ID, controlID, UpdateProjectControlInput{
			ImplementationStatus: patch.Field[string]{Set: true, Value: &status},
		})
		require.NoError(t, err)
	}
	for _, id := range ids[:3] {
		setStatus(id, model.StatusImplemented)
	}
	for _, id := range ids[3:5] {
		setStatus(id, model.StatusInProgress)
	}

	projects := NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewProjectControlRepository(db),
		repository.NewCatalogRepository(db),
	)
	detail, err := projects.Get(ctx, orgID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, detail.Progress)
	assert.Equal(t, 2, detail.Stats.InProgress)
	assert.Equal(t, 5, detail.Stats.NotStarted)
}
