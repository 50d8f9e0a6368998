package githubloader

import (
	"context"
	"path/filepath"
	"testing"

	gh "github.com/google/go-github/v45/github"
	"github.com/google/uuid"
	"github.com/pkg/errors"
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

func intPtr(i int) *int { return &i }

func newTestLoader(dbc *db.DB, repos []string) *GitHubLoader {
	loader := New(context.Background(), dbc, uuid.New(), repos)
	loader.repoFetch = func(owner, name string) (*gh.Repository, error) {
		return &gh.Repository{StargazersCount: intPtr(50000)}, nil
	}
	loader.readmeFetch = func(owner, name string) (string, error) {
		return "# requests\n\nRequests is a simple, yet elegant, HTTP library for Python.", nil
	}
	return loader
}

func TestLoadStoresReadmes(t *testing.T) {
	dbc := newTestDB(t)
	loader := newTestLoader(dbc, []string{"psf/requests"})

	loader.Load()
	require.Empty(t, loader.Errors())

	var items []models.ContentItem
	require.NoError(t, dbc.DB.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "psf/requests README", items[0].Title)
	assert.Equal(t, models.SourceCodeHost, items[0].SourceType)
	assert.Equal(t, "https://github.com/psf/requests", items[0].SourceURL)
	// high stargazer count contributes both popularity bumps
	assert.GreaterOrEqual(t, items[0].QualityScore, 0.7)
}

func TestLoadSkipsStoredRepos(t *testing.T) {
	dbc := newTestDB(t)

	newTestLoader(dbc, []string{"psf/requests"}).Load()
	newTestLoader(dbc, []string{"psf/requests"}).Load()

	var count int64
	require.NoError(t, dbc.DB.Model(&models.ContentItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoadRejectsMalformedRepoName(t *testing.T) {
	dbc := newTestDB(t)
	loader := newTestLoader(dbc, []string{"not-a-repo"})

	loader.Load()
	require.Len(t, loader.Errors(), 1)
	assert.Contains(t, loader.Errors()[0].Error(), "malformed repository name")
}

func TestLoadContinuesPastAPIFailures(t *testing.T) {
	dbc := newTestDB(t)
	loader := newTestLoader(dbc, []string{"python/cpython", "psf/requests"})
	loader.repoFetch = func(owner, name string) (*gh.Repository, error) {
		if owner == "python" {
			return nil, errors.New("rate limited")
		}
		return &gh.Repository{StargazersCount: intPtr(50000)}, nil
	}

	loader.Load()
	assert.Len(t, loader.Errors(), 1)

	var run models.CollectionRun
	require.NoError(t, dbc.DB.First(&run).Error)
	assert.Equal(t, models.CollectionStatusPartial, run.Status)
	assert.Equal(t, 1, run.ItemsCollected)
}
