package curatedloader

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	dbc, err := db.New(filepath.Join(t.TempDir(), "test.db"), db.BackendSQLite, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbc.UpdateSchema())
	return dbc
}

func TestLoadStoresCuratedBatch(t *testing.T) {
	dbc := newTestDB(t)
	loader := New(dbc, uuid.New())

	loader.Load()
	require.Empty(t, loader.Errors())

	var items []models.ContentItem
	require.NoError(t, dbc.DB.Find(&items).Error)
	require.Len(t, items, len(curatedItems))

	for _, item := range items {
		assert.Equal(t, models.SourceCurated, item.SourceType)
		assert.NotEmpty(t, item.SourceURL)
		assert.GreaterOrEqual(t, item.QualityScore, 0.92)
		assert.LessOrEqual(t, item.QualityScore, 0.95)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	dbc := newTestDB(t)

	New(dbc, uuid.New()).Load()
	New(dbc, uuid.New()).Load()

	var count int64
	require.NoError(t, dbc.DB.Model(&models.ContentItem{}).Count(&count).Error)
	assert.Equal(t, int64(len(curatedItems)), count)
}

func TestLoadRecordsCollectionRun(t *testing.T) {
	dbc := newTestDB(t)
	runID := uuid.New()

	New(dbc, runID).Load()

	var runs []models.CollectionRun
	require.NoError(t, dbc.DB.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "curated", runs[0].Source)
	assert.Equal(t, models.CollectionStatusSuccess, runs[0].Status)
	assert.Equal(t, len(curatedItems), runs[0].ItemsCollected)
}
