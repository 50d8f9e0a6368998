package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

func contentItem(title, body string, score float64, createdAt time.Time) models.ContentItem {
	item := models.ContentItem{
		Title:        title,
		Body:         body,
		SourceType:   models.SourceDocumentation,
		QualityScore: score,
	}
	item.CreatedAt = createdAt
	return item
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		question string
		expected []string
	}{
		{
			name:     "stop words and short tokens dropped",
			question: "What is a tuple in Python?",
			expected: []string{"tuple", "python"},
		},
		{
			name:     "synonyms expanded",
			question: "how do I sort a list",
			expected: []string{"sort", "list", "array", "sequence", "collection"},
		},
		{
			name:     "duplicates removed",
			question: "function function function",
			expected: []string{"function", "def", "method", "procedure"},
		},
		{
			name:     "all stop words yields nothing",
			question: "what is it",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractKeywords(tt.question))
		})
	}
}

func TestMatchFindsExactTitleToken(t *testing.T) {
	now := time.Now()
	items := []models.ContentItem{
		contentItem("Generators explained", "lazy iteration", 0.8, now.Add(-48*time.Hour)),
		contentItem("CSS layout", "flexbox and grid", 0.9, now.Add(-48*time.Hour)),
	}

	matched := Match(items, "tell me about generators", now)
	require.Len(t, matched, 1)
	assert.Equal(t, "Generators explained", matched[0].Title)
}

func TestMatchEmptyWhenNoOverlap(t *testing.T) {
	now := time.Now()
	items := []models.ContentItem{
		contentItem("Generators explained", "lazy iteration", 0.8, now),
	}

	assert.Empty(t, Match(items, "quantum chromodynamics", now))
	assert.Empty(t, Match(nil, "anything at all", now))
	assert.Empty(t, Match(items, "is it the", now), "stop-word-only question matches nothing")
}

func TestMatchRanking(t *testing.T) {
	now := time.Now()
	old := now.Add(-72 * time.Hour)
	fresh := now.Add(-1 * time.Hour)

	highQualityOld := contentItem("python lists basics", "array manipulation", 0.95, old)
	lowQualityFresh := contentItem("python lists advanced", "array tricks", 0.90, fresh)

	// 0.90 + 0.10 recency beats 0.95 without it.
	matched := Match([]models.ContentItem{highQualityOld, lowQualityFresh}, "python lists", now)
	require.Len(t, matched, 2)
	assert.Equal(t, "python lists advanced", matched[0].Title)

	// Ties broken by most recent first.
	a := contentItem("lists one", "array", 0.5, old)
	b := contentItem("lists two", "array", 0.5, old.Add(time.Hour))
	matched = Match([]models.ContentItem{a, b}, "lists", now)
	require.Len(t, matched, 2)
	assert.Equal(t, "lists two", matched[0].Title)
}

func TestMatchSynonymReachesBody(t *testing.T) {
	now := time.Now()
	items := []models.ContentItem{
		contentItem("Sequences", "an array is an ordered collection", 0.7, now),
	}

	// "list" never appears in the item; the synonym expansion finds it.
	matched := Match(items, "what is a list", now)
	require.Len(t, matched, 1)
}
