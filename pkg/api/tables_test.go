package api

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/filter"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	dbc, err := db.New(filepath.Join(t.TempDir(), "test.db"), db.BackendSQLite, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbc.UpdateSchema())
	return dbc
}

func TestListTables(t *testing.T) {
	dbc := newTestDB(t)
	require.NoError(t, dbc.DB.Create(&models.ContentItem{Title: "T", Body: "B", SourceType: models.SourceCurated}).Error)

	summaries, err := ListTables(dbc)
	require.NoError(t, err)
	require.Len(t, summaries, 5)

	byName := map[string]int64{}
	for _, s := range summaries {
		byName[s.Name] = s.RowCount
	}
	assert.Equal(t, int64(1), byName["content_items"])
	assert.Equal(t, int64(0), byName["query_records"])
}

func TestGetTableRows(t *testing.T) {
	dbc := newTestDB(t)
	seed := []models.ContentItem{
		{Title: "Lists", Body: "b", SourceType: models.SourceCurated, QualityScore: 0.9},
		{Title: "Dicts", Body: "b", SourceType: models.SourceCurated, QualityScore: 0.8},
		{Title: "Sets", Body: "b", SourceType: models.SourceQASite, QualityScore: 0.4},
	}
	require.NoError(t, dbc.DB.Create(&seed).Error)

	opts := &filter.FilterOptions{
		Filter: &filter.Filter{Items: []filter.FilterItem{
			{Field: "source_type", Operator: filter.OperatorEquals, Value: "curated"},
		}},
		SortField: "quality_score",
		Sort:      filter.SortDescending,
	}

	rows, err := GetTableRows(dbc, "content_items", opts)
	require.NoError(t, err)

	items, ok := rows.(*[]models.ContentItem)
	require.True(t, ok)
	require.Len(t, *items, 2)
	assert.Equal(t, "Lists", (*items)[0].Title)
	assert.Equal(t, "Dicts", (*items)[1].Title)
}

func TestGetTableRowsUnknownTable(t *testing.T) {
	dbc := newTestDB(t)
	_, err := GetTableRows(dbc, "users", &filter.FilterOptions{Filter: &filter.Filter{}, SortField: "id"})
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = DefaultSortField("users")
	assert.ErrorIs(t, err, ErrUnknownTable)
}
