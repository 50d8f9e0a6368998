// Package stackloader pulls highly-voted questions from the Stack Exchange
// API into the knowledge base. Question score doubles as the popularity
// signal for quality scoring.
package stackloader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/knowledge"
	"github.com/simsonbaroi/OrionAiTesting/pkg/util"
)

const apiBase = "https://api.stackexchange.com/2.3"

// The API throttles unauthenticated clients hard; one request every two
// seconds keeps us well inside the budget.
const requestInterval = 2 * time.Second

type StackLoader struct {
	dbc      *db.DB
	runID    uuid.UUID
	site     string
	tag      string
	pageSize int
	fetch    func(url string) ([]byte, error)
	errors   []error
}

func New(dbc *db.DB, runID uuid.UUID, site, tag string, pageSize int) *StackLoader {
	client := &http.Client{Timeout: 30 * time.Second}
	return &StackLoader{
		dbc:      dbc,
		runID:    runID,
		site:     site,
		tag:      tag,
		pageSize: pageSize,
		fetch: func(url string) ([]byte, error) {
			resp, err := client.Get(url)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status %d from stack exchange API", resp.StatusCode)
			}
			return io.ReadAll(resp.Body)
		},
	}
}

func (l *StackLoader) Name() string {
	return "stackoverflow"
}

func (l *StackLoader) Errors() []error {
	return l.errors
}

func (l *StackLoader) Load() {
	start := time.Now()

	rateLimiter := util.NewRateLimiter(requestInterval)
	defer rateLimiter.Close()
	rateLimiter.Tick()

	body, err := l.fetch(l.questionsURL())
	if err != nil {
		rateLimiter.UpdateRate(true)
		log.WithError(err).Warning("could not fetch questions from stack exchange")
		l.errors = append(l.errors, errors.Wrap(err, "could not fetch stack exchange questions"))
		dataloader.RecordRun(l.dbc, l.runID, l.Name(), 0, l.errors, time.Since(start))
		return
	}
	rateLimiter.UpdateRate(false)

	created := l.storeQuestions(body)

	log.Infof("stack exchange loader stored %d items in %+v", created, time.Since(start))
	dataloader.RecordRun(l.dbc, l.runID, l.Name(), created, l.errors, time.Since(start))
}

func (l *StackLoader) questionsURL() string {
	params := url.Values{}
	params.Set("order", "desc")
	params.Set("sort", "votes")
	params.Set("tagged", l.tag)
	params.Set("site", l.site)
	params.Set("filter", "withbody")
	params.Set("pagesize", fmt.Sprintf("%d", l.pageSize))
	return fmt.Sprintf("%s/questions?%s", apiBase, params.Encode())
}

func (l *StackLoader) storeQuestions(body []byte) int {
	created := 0
	for _, question := range gjson.GetBytes(body, "items").Array() {
		title := question.Get("title").String()
		text := question.Get("body_markdown").String()
		if text == "" {
			text = question.Get("body").String()
		}
		link := question.Get("link").String()
		score := int(question.Get("score").Int())

		if title == "" || text == "" {
			continue
		}

		var count int64
		if err := l.dbc.DB.Model(&models.ContentItem{}).
			Where("source_url = ?", link).
			Count(&count).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not check for existing question %q", title))
			continue
		}
		if count > 0 {
			continue
		}

		item := models.ContentItem{
			Title:        title,
			Body:         text,
			SourceType:   models.SourceQASite,
			SourceURL:    link,
			QualityScore: knowledge.Score(title, text, score),
		}
		if err := l.dbc.DB.Create(&item).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not store question %q", title))
			continue
		}
		created++
	}
	return created
}
