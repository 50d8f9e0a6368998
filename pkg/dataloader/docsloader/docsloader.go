// Package docsloader pulls configured documentation pages into the knowledge
// base, extracting the title and the leading paragraphs from the HTML.
package docsloader

import (
	"strings"
	"time"

	"github.com/anaskhan96/soup"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/knowledge"
)

// maxParagraphs caps how much of a page we store; the leading paragraphs of
// a docs page carry the definition, the rest is reference detail.
const maxParagraphs = 5

type DocsLoader struct {
	dbc    *db.DB
	runID  uuid.UUID
	pages  []string
	fetch  func(url string) (string, error)
	errors []error
}

func New(dbc *db.DB, runID uuid.UUID, pages []string) *DocsLoader {
	return &DocsLoader{
		dbc:   dbc,
		runID: runID,
		pages: pages,
		fetch: soup.Get,
	}
}

func (l *DocsLoader) Name() string {
	return "documentation"
}

func (l *DocsLoader) Errors() []error {
	return l.errors
}

func (l *DocsLoader) Load() {
	start := time.Now()
	created := 0

	for _, page := range l.pages {
		var count int64
		if err := l.dbc.DB.Model(&models.ContentItem{}).
			Where("source_url = ?", page).
			Count(&count).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not check for existing page %s", page))
			continue
		}
		if count > 0 {
			log.Debugf("documentation page %s already present, skipping", page)
			continue
		}

		html, err := l.fetch(page)
		if err != nil {
			log.WithError(err).Warningf("could not fetch documentation page %s", page)
			l.errors = append(l.errors, errors.Wrapf(err, "could not fetch %s", page))
			continue
		}

		title, body := extractContent(html)
		if title == "" || body == "" {
			log.Warningf("documentation page %s yielded no usable content", page)
			l.errors = append(l.errors, errors.Errorf("no usable content in %s", page))
			continue
		}

		item := models.ContentItem{
			Title:        title,
			Body:         body,
			SourceType:   models.SourceDocumentation,
			SourceURL:    page,
			QualityScore: knowledge.Score(title, body, 0),
		}
		if err := l.dbc.DB.Create(&item).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not store page %s", page))
			continue
		}
		created++
	}

	log.Infof("documentation loader stored %d of %d pages in %+v", created, len(l.pages), time.Since(start))
	dataloader.RecordRun(l.dbc, l.runID, l.Name(), created, l.errors, time.Since(start))
}

// extractContent pulls the page title (h1 preferred, <title> as fallback) and
// the first few paragraphs of text out of a documentation page.
func extractContent(html string) (title, body string) {
	doc := soup.HTMLParse(html)

	if h1 := doc.Find("h1"); h1.Error == nil {
		title = strings.TrimSpace(h1.FullText())
	}
	if title == "" {
		if t := doc.Find("title"); t.Error == nil {
			title = strings.TrimSpace(t.Text())
		}
	}

	paragraphs := doc.FindAll("p")
	var parts []string
	for _, p := range paragraphs {
		text := strings.TrimSpace(p.FullText())
		if text == "" {
			continue
		}
		parts = append(parts, text)
		if len(parts) >= maxParagraphs {
			break
		}
	}
	body = strings.Join(parts, "\n\n")

	return title, body
}
