package knowledge

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

// recencyBonus is added to an item's ranking score when it was collected
// within the last 24 hours, so freshly scraped content surfaces first.
const recencyBonus = 0.1

const recencyWindow = 24 * time.Hour

// stopWords are dropped from questions before matching. The exact list is
// tuning, not contract.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"do": {}, "does": {}, "did": {}, "can": {}, "could": {}, "should": {},
	"would": {}, "will": {},
	"how": {}, "what": {}, "when": {}, "where": {}, "why": {}, "who": {},
	"i": {}, "you": {}, "my": {}, "your": {}, "me": {},
	"in": {}, "on": {}, "of": {}, "to": {}, "for": {}, "with": {}, "about": {},
	"and": {}, "or": {}, "not": {}, "it": {}, "this": {}, "that": {},
}

// synonyms expands question tokens with related terms so that, for example,
// a question about "lists" still matches content that only says "array".
var synonyms = map[string][]string{
	"list":       {"array", "sequence", "collection"},
	"function":   {"def", "method", "procedure"},
	"class":      {"object", "oop", "inheritance"},
	"exception":  {"try", "except", "handling"},
	"error":      {"try", "except", "handling"},
	"dictionary": {"mapping", "key", "value"},
	"dict":       {"mapping", "key", "value"},
	"file":       {"io", "read", "write", "open"},
}

// ExtractKeywords normalizes a free-text question into the keyword set used
// for matching: lowercased, stop words and short tokens removed, synonyms
// unioned in. Order is first-seen, duplicates removed.
func ExtractKeywords(question string) []string {
	fields := strings.Fields(strings.ToLower(question))

	seen := map[string]struct{}{}
	keywords := []string{}
	add := func(word string) {
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	for _, token := range fields {
		token = strings.Trim(token, ".,!?;:'\"()")
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		add(token)
		for _, syn := range synonyms[token] {
			add(syn)
		}
	}

	return keywords
}

// Match filters items down to those whose title or body contains any of the
// question's expanded keywords, ranked best-first. Returns an empty slice
// when nothing matches; the caller is expected to fall back to a canned
// reply.
func Match(items []models.ContentItem, question string, now time.Time) []models.ContentItem {
	keywords := ExtractKeywords(question)
	if len(keywords) == 0 {
		return nil
	}

	matched := []models.ContentItem{}
	for _, item := range items {
		title := strings.ToLower(item.Title)
		body := strings.ToLower(item.Body)
		for _, kw := range keywords {
			if strings.Contains(title, kw) || strings.Contains(body, kw) {
				matched = append(matched, item)
				break
			}
		}
	}

	rank := func(item models.ContentItem) float64 {
		score := item.QualityScore
		if now.Sub(item.CreatedAt) < recencyWindow {
			score += recencyBonus
		}
		return score
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := rank(matched[i]), rank(matched[j])
		if ri != rj {
			return ri > rj
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched
}

// Matcher finds relevant knowledge base content for user questions.
type Matcher struct {
	dbc *db.DB
}

func NewMatcher(dbc *db.DB) *Matcher {
	return &Matcher{dbc: dbc}
}

// FindRelevant loads the knowledge base and ranks it against the question.
func (m *Matcher) FindRelevant(question string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := m.dbc.DB.Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "could not load knowledge base")
	}

	return Match(items, question, time.Now()), nil
}
