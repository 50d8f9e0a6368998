package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

func TestComposeFromMatch(t *testing.T) {
	composer := NewComposerWithSelector(func(n int) int { return 0 })

	item := models.ContentItem{
		Title:      "Python Functions and Parameters",
		Body:       "Functions in Python are defined using the `def` keyword.",
		SourceType: models.SourceDocumentation,
		SourceURL:  "https://docs.python.org/3/tutorial/controlflow.html",
	}

	answer := composer.Compose("how do functions work", []models.ContentItem{item})
	assert.Contains(t, answer, openingPhrases[0])
	assert.Contains(t, answer, item.Title)
	assert.Contains(t, answer, item.Body)
	assert.Contains(t, answer, item.SourceURL)
}

func TestComposeOmitsAttributionWithoutURL(t *testing.T) {
	composer := NewComposerWithSelector(func(n int) int { return 0 })

	item := models.ContentItem{Title: "Lists", Body: "ordered collections"}
	answer := composer.Compose("lists?", []models.ContentItem{item})
	assert.NotContains(t, answer, "Source:")
}

func TestGreetingReply(t *testing.T) {
	composer := NewComposer()

	for _, question := range []string{"hello", "Hi!", "hey there"} {
		answer := composer.Compose(question, nil)
		assert.Contains(t, greetingReplies, answer, "question %q", question)
	}
}

func TestCannedReplies(t *testing.T) {
	composer := NewComposerWithSelector(func(n int) int { return 0 })

	tests := []struct {
		name     string
		question string
		expected string
	}{
		{
			name:     "definitional question",
			question: "What is Python exactly?",
			expected: pythonDefinition,
		},
		{
			name:     "list topic",
			question: "I don't understand list slicing",
			expected: topicReplies["list"],
		},
		{
			name:     "dict shorthand hits dictionary topic",
			question: "how does a dict work",
			expected: topicReplies["dictionary"],
		},
		{
			name:     "thanks",
			question: "thank you so much",
			expected: thanksReplies[0],
		},
		{
			name:     "joke",
			question: "tell me a joke",
			expected: jokeReplies[0],
		},
		{
			name:     "unknown topic falls back",
			question: "explain quantum entanglement",
			expected: fallbackReplies[0],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, composer.Compose(tt.question, nil))
		})
	}
}

func TestSelectorDrivesChoice(t *testing.T) {
	require.Greater(t, len(fallbackReplies), 1)

	first := NewComposerWithSelector(func(n int) int { return 0 })
	last := NewComposerWithSelector(func(n int) int { return n - 1 })

	q := "something entirely unrelated"
	assert.NotEqual(t, first.Compose(q, nil), last.Compose(q, nil))
}
