package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/auth"
	"github.com/grundwerk/grundwerk/internal/config"
	"github.com/grundwerk/grundwerk/internal/email"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.UserOrganization{},
		&model.Standard{},
		&model.Control{},
		&model.Project{},
		&model.ProjectControl{},
		&model.Audit{},
		&model.ControlAudit{},
		&model.DPIA{},
		&model.OrganizationalMeasure{},
	))
	return db
}

func newTestUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiryPeriod = time.Hour

	emailService, err := email.NewEmailService(cfg)
	require.NoError(t, err)

	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewOrganizationRepository(db),
		auth.NewPasswordHasher(),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryPeriod),
		emailService,
		cfg,
	)
}

// registerOrg creates a user with their own organization and returns the
// organization ID.
func registerOrg(t *testing.T, db *gorm.DB, emailAddr, orgName string) *RegisterOutput {
	t.Helper()

	out, err := newTestUserService(t, db).Register(context.Background(), RegisterInput{
		Email:            emailAddr,
		Name:             "Test User",
		Password:         "correct-horse-battery",
		OrganizationName: orgName,
	})
	require.NoError(t, err)
	return out
}

// seedStandard inserts a catalog standard with n controls and returns it with
// Controls populated in code order.
func seedStandard(t *testing.T, db *gorm.DB, shortName string, n int) *model.Standard {
	t.Helper()

	standard := &model.Standard{
		Name:      shortName + " Test Standard",
		ShortName: shortName,
		Version:   "2026",
		IsGlobal:  true,
	}
	require.NoError(t, db.Create(standard).Error)

	for i := 0; i < n; i++ {
		control := model.Control{
			StandardID:  standard.ID,
			Code:        string(rune('A'+i)) + ".1",
			Name:        "Control " + string(rune('A'+i)),
			Description: "Test control",
			Category:    "General",
		}
		require.NoError(t, db.Create(&control).Error)
		standard.Controls = append(standard.Controls, control)
	}
	return standard
}

func controlIDs(standard *model.Standard) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(standard.Controls))
	for _, c := range standard.Controls {
		ids = append(ids, c.ID)
	}
	return ids
}
