package docsloader

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

const samplePage = `<html>
<head><title>4. More Control Flow Tools — Python documentation</title></head>
<body>
<h1>Defining Functions</h1>
<p>We can create a function that writes the Fibonacci series to an arbitrary boundary.</p>
<p>The keyword <code>def</code> introduces a function definition.</p>
<p></p>
<p>The execution of a function introduces a new symbol table used for the local variables of the function.</p>
</body>
</html>`

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	dbc, err := db.New(filepath.Join(t.TempDir(), "test.db"), db.BackendSQLite, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, dbc.UpdateSchema())
	return dbc
}

func TestExtractContent(t *testing.T) {
	title, body := extractContent(samplePage)

	assert.Equal(t, "Defining Functions", title)
	assert.Contains(t, body, "Fibonacci series")
	assert.Contains(t, body, "def")
	assert.NotContains(t, body, "<code>")
}

func TestExtractContentFallsBackToTitleTag(t *testing.T) {
	title, _ := extractContent(`<html><head><title>Errors and Exceptions</title></head><body><p>x</p></body></html>`)
	assert.Equal(t, "Errors and Exceptions", title)
}

func TestLoadStoresFetchedPages(t *testing.T) {
	dbc := newTestDB(t)

	loader := New(dbc, uuid.New(), []string{"https://docs.python.org/3/tutorial/controlflow.html"})
	loader.fetch = func(url string) (string, error) {
		return samplePage, nil
	}

	loader.Load()
	require.Empty(t, loader.Errors())

	var items []models.ContentItem
	require.NoError(t, dbc.DB.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "Defining Functions", items[0].Title)
	assert.Equal(t, models.SourceDocumentation, items[0].SourceType)
	assert.Greater(t, items[0].QualityScore, 0.0)
}

func TestLoadContinuesPastFetchFailures(t *testing.T) {
	dbc := newTestDB(t)

	loader := New(dbc, uuid.New(), []string{"https://bad.example/one", "https://good.example/two"})
	loader.fetch = func(url string) (string, error) {
		if url == "https://bad.example/one" {
			return "", errors.New("connection refused")
		}
		return samplePage, nil
	}

	loader.Load()
	assert.Len(t, loader.Errors(), 1)

	var count int64
	require.NoError(t, dbc.DB.Model(&models.ContentItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var run models.CollectionRun
	require.NoError(t, dbc.DB.First(&run).Error)
	assert.Equal(t, models.CollectionStatusPartial, run.Status)
}
