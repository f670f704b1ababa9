package seed

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Standard{}, &model.Control{}))
	return db
}

func TestSeedLoadsEmbeddedCatalogs(t *testing.T) {
	db := newTestDB(t)
	seeder := New(repository.NewCatalogRepository(db))

	summary, err := seeder.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Standards)
	assert.Zero(t, summary.ControlsUpdated)

	var standardCount, controlCount int64
	require.NoError(t, db.Model(&model.Standard{}).Count(&standardCount).Error)
	require.NoError(t, db.Model(&model.Control{}).Count(&controlCount).Error)
	assert.EqualValues(t, 5, standardCount)
	assert.EqualValues(t, summary.ControlsCreated, controlCount)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seeder := New(repository.NewCatalogRepository(db))
	ctx := context.Background()

	first, err := seeder.Run(ctx)
	require.NoError(t, err)

	var firstStandards []model.Standard
	require.NoError(t, db.Order("short_name asc").Find(&firstStandards).Error)

	second, err := seeder.Run(ctx)
	require.NoError(t, err)

	// The second run creates nothing and updates everything in place.
	assert.Zero(t, second.ControlsCreated)
	assert.Equal(t, first.ControlsCreated, second.ControlsUpdated)

	var standardCount, controlCount int64
	require.NoError(t, db.Model(&model.Standard{}).Count(&standardCount).Error)
	require.NoError(t, db.Model(&model.Control{}).Count(&controlCount).Error)
	assert.EqualValues(t, first.Standards, standardCount)
	assert.EqualValues(t, first.ControlsCreated, controlCount)

	// Existing rows keep their IDs across runs.
	var secondStandards []model.Standard
	require.NoError(t, db.Order("short_name asc").Find(&secondStandards).Error)
	require.Len(t, secondStandards, len(firstStandards))
	for i := range firstStandards {
		assert.Equal(t, firstStandards[i].ID, secondStandards[i].ID)
	}
}

func TestSeedUpdatesChangedRowsInPlace(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewCatalogRepository(db)
	seeder := New(repo)
	ctx := context.Background()

	_, err := seeder.Run(ctx)
	require.NoError(t, err)

	// Simulate an older catalog revision by mangling a stored name.
	var control model.Control
	require.NoError(t, db.First(&control).Error)
	original := control.Name
	require.NoError(t, db.Model(&control).Update("name", "stale name").Error)

	_, err = seeder.Run(ctx)
	require.NoError(t, err)

	var reloaded model.Control
	require.NoError(t, db.First(&reloaded, "id = ?", control.ID).Error)
	assert.Equal(t, original, reloaded.Name)
}
