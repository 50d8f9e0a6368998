package trainer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader/curatedloader"
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

func seedItems(t *testing.T, dbc *db.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		item := models.ContentItem{
			Title:        fmt.Sprintf("Topic %d", i),
			Body:         fmt.Sprintf("A function example number %d with enough words to matter.", i),
			SourceType:   models.SourceDocumentation,
			QualityScore: 0.8,
		}
		require.NoError(t, dbc.DB.Create(&item).Error)
	}
}

func TestTrainInsufficientData(t *testing.T) {
	dbc := newTestDB(t)
	seedItems(t, dbc, 2)

	_, err := New(dbc).Train(context.Background())
	require.ErrorIs(t, err, ErrInsufficientData)

	// nothing was written
	var pairs, snapshots int64
	require.NoError(t, dbc.DB.Model(&models.TrainingPair{}).Count(&pairs).Error)
	require.NoError(t, dbc.DB.Model(&models.ModelMetricsSnapshot{}).Count(&snapshots).Error)
	assert.Zero(t, pairs)
	assert.Zero(t, snapshots)
}

func TestTrainDerivesPairsPerItem(t *testing.T) {
	dbc := newTestDB(t)
	seedItems(t, dbc, 4)

	result, err := New(dbc).Train(context.Background())
	require.NoError(t, err)

	// each body mentions "function", so every item yields the generic pair
	// plus the function topic pair
	assert.Equal(t, 8, result.PairsCreated)

	var pairs []models.TrainingPair
	require.NoError(t, dbc.DB.Find(&pairs).Error)
	require.Len(t, pairs, 8)
	for _, pair := range pairs {
		assert.True(t, pair.UsedForTraining)
		assert.NotZero(t, pair.SourceContentID)
		assert.Equal(t, 0.8, pair.QualityScore)
	}
}

func TestDerivePairsTopics(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedCount int
	}{
		{
			name:          "no topics gives generic pair only",
			body:          "Something about generators and iterators.",
			expectedCount: 1,
		},
		{
			name:          "dict and dictionary collapse to one pair",
			body:          "A dict is a dictionary.",
			expectedCount: 2,
		},
		{
			name:          "error and exception collapse to one pair",
			body:          "An exception signals an error.",
			expectedCount: 2,
		},
		{
			name:          "all four topics",
			body:          "Lists, functions, dictionaries and exceptions.",
			expectedCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := models.ContentItem{Model: models.Model{ID: 1}, Title: "T", Body: tt.body}
			assert.Len(t, derivePairs(item), tt.expectedCount)
		})
	}
}

func TestExcerptBoundsAnswerLength(t *testing.T) {
	long := make([]rune, 1000)
	for i := range long {
		long[i] = 'ä' // multi-byte, to catch byte-based truncation
	}

	out := excerpt(string(long))
	assert.Equal(t, answerExcerptRunes, len([]rune(out)))

	short := "short body"
	assert.Equal(t, short, excerpt(short))
}

func TestFabricatedMetrics(t *testing.T) {
	assert.InDelta(t, 0.76, accuracy(5), 1e-9)
	assert.Equal(t, 0.95, accuracy(200))
	assert.InDelta(t, 1.20, loss(5), 1e-9)
	assert.Equal(t, 0.05, loss(500))

	// accuracy never decreases with more pairs
	prev := 0.0
	for pairs := 0; pairs <= 300; pairs += 10 {
		a := accuracy(pairs)
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
}

func TestVersionLabelsFollowClock(t *testing.T) {
	dbc := newTestDB(t)
	seedItems(t, dbc, 3)

	trainer := New(dbc)
	clock := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
	trainer.now = func() time.Time { return clock }

	first, err := trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v20260830.101500", first.Snapshot.VersionLabel)

	clock = clock.Add(time.Minute)
	second, err := trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v20260830.101600", second.Snapshot.VersionLabel)
	assert.NotEqual(t, first.Snapshot.VersionLabel, second.Snapshot.VersionLabel)
}

func TestTrainReportsProgress(t *testing.T) {
	dbc := newTestDB(t)
	seedItems(t, dbc, 3)

	var reported []int
	trainer := New(dbc).WithProgress(func(percent int) {
		reported = append(reported, percent)
	})

	_, err := trainer.Train(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, reported)
	assert.Equal(t, 0, reported[0])
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.GreaterOrEqual(t, reported[i], reported[i-1])
	}
}

func TestCuratedSeedThenTrain(t *testing.T) {
	dbc := newTestDB(t)

	curatedloader.New(dbc, uuid.New()).Load()

	var items int64
	require.NoError(t, dbc.DB.Model(&models.ContentItem{}).Count(&items).Error)
	require.Equal(t, int64(6), items)

	result, err := New(dbc).Train(context.Background())
	require.NoError(t, err)
	assert.Greater(t, result.PairsCreated, 0)

	var snapshot models.ModelMetricsSnapshot
	require.NoError(t, dbc.DB.First(&snapshot).Error)
	assert.Equal(t, result.PairsCreated, snapshot.TrainingSampleCount)
	assert.GreaterOrEqual(t, snapshot.AccuracyScore, 0.75)
	assert.LessOrEqual(t, snapshot.AccuracyScore, 0.95)
}
