package querylog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	dbc, err := db.New(filepath.Join(t.TempDir(), "test.db"), db.BackendSQLite, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbc.UpdateSchema())
	return dbc
}

func TestRecordAndRateRoundTrip(t *testing.T) {
	store := NewStore(newTestDB(t))

	id, err := store.Record("what is a list", "Lists are ordered collections.", 0.12)
	require.NoError(t, err)
	require.NotZero(t, id)

	require.NoError(t, store.Rate(id, 3))

	record, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, record.UserRating)
	assert.Equal(t, 3, *record.UserRating)
	assert.Equal(t, "what is a list", record.Question)
	assert.Equal(t, 0.12, record.ResponseTimeSeconds)
}

func TestRateInvalidLeavesRecordUnchanged(t *testing.T) {
	store := NewStore(newTestDB(t))

	id, err := store.Record("q", "a", 0)
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1, 100} {
		err := store.Rate(id, rating)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}

	record, err := store.Get(id)
	require.NoError(t, err)
	assert.Nil(t, record.UserRating)
}

func TestRateUnknownID(t *testing.T) {
	store := NewStore(newTestDB(t))
	assert.ErrorIs(t, store.Rate(99999, 3), ErrNotFound)
}

func TestRateOverwrites(t *testing.T) {
	store := NewStore(newTestDB(t))

	id, err := store.Record("q", "a", 0)
	require.NoError(t, err)

	require.NoError(t, store.Rate(id, 2))
	require.NoError(t, store.Rate(id, 5))

	record, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, record.UserRating)
	assert.Equal(t, 5, *record.UserRating)
}
