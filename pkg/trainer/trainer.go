// Package trainer implements the simulated training pipeline: it derives
// question/answer pairs from the knowledge base and records a metrics
// snapshot whose numbers are computed from the pair count, not from any real
// model evaluation.
package trainer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

// ErrInsufficientData is returned when the knowledge base holds fewer items
// than the configured minimum.
var ErrInsufficientData = errors.New("not enough content to train on")

const (
	defaultMinContentItems = 3
	answerExcerptRunes     = 300
)

// topicTemplates maps a body substring to the templated question emitted for
// items covering that topic. Keys sharing a question (dict/dictionary,
// error/exception) collapse to one pair per item.
var topicTemplates = []struct {
	substrings []string
	question   string
}{
	{[]string{"list"}, "How do I work with lists in Python?"},
	{[]string{"function"}, "How do I define a function in Python?"},
	{[]string{"exception", "error"}, "How do I handle errors in Python?"},
	{[]string{"dictionary", "dict"}, "How do I use dictionaries in Python?"},
}

type Result struct {
	PairsCreated int
	Snapshot     models.ModelMetricsSnapshot
}

type Trainer struct {
	dbc             *db.DB
	MinContentItems int

	// now is the clock behind version labels, swapped out in tests.
	now func() time.Time
	// progress receives 0-100 as the run advances; nil is fine.
	progress func(percent int)
}

func New(dbc *db.DB) *Trainer {
	return &Trainer{
		dbc:             dbc,
		MinContentItems: defaultMinContentItems,
		now:             time.Now,
	}
}

// WithProgress sets a callback invoked with the completion percentage as the
// run advances.
func (t *Trainer) WithProgress(fn func(percent int)) *Trainer {
	t.progress = fn
	return t
}

func (t *Trainer) report(percent int) {
	if t.progress != nil {
		t.progress(percent)
	}
}

// Train derives pairs from every content item and writes one metrics
// snapshot. Partial work is not rolled back on failure.
func (t *Trainer) Train(ctx context.Context) (*Result, error) {
	start := time.Now()
	t.report(0)

	var count int64
	if err := t.dbc.DB.Model(&models.ContentItem{}).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "could not count content items")
	}
	if count < int64(t.MinContentItems) {
		return nil, errors.WithMessagef(ErrInsufficientData,
			"have %d content items, need at least %d", count, t.MinContentItems)
	}

	var items []models.ContentItem
	if err := t.dbc.DB.Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "could not load content items")
	}

	pairsCreated := 0
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pairs := derivePairs(item)
		if err := t.dbc.DB.CreateInBatches(pairs, t.dbc.BatchSize).Error; err != nil {
			return nil, errors.Wrapf(err, "could not store pairs for item %d", item.ID)
		}
		pairsCreated += len(pairs)
		t.report((i + 1) * 90 / len(items))
	}

	snapshot := models.ModelMetricsSnapshot{
		VersionLabel:        versionLabel(t.now()),
		AccuracyScore:       accuracy(pairsCreated),
		LossValue:           loss(pairsCreated),
		TrainingSampleCount: pairsCreated,
		EvaluationTimestamp: t.now(),
	}
	if err := t.dbc.DB.Create(&snapshot).Error; err != nil {
		return nil, errors.Wrap(err, "could not store metrics snapshot")
	}
	t.report(100)

	log.WithFields(log.Fields{
		"pairs":    pairsCreated,
		"version":  snapshot.VersionLabel,
		"accuracy": snapshot.AccuracyScore,
	}).Infof("training run complete in %+v", time.Since(start))

	return &Result{PairsCreated: pairsCreated, Snapshot: snapshot}, nil
}

// derivePairs emits the generic "What is {title}?" pair plus one pair per
// topic the item's body covers.
func derivePairs(item models.ContentItem) []models.TrainingPair {
	answer := excerpt(item.Body)
	pairs := []models.TrainingPair{{
		Question:        fmt.Sprintf("What is %s?", item.Title),
		Answer:          answer,
		SourceContentID: item.ID,
		QualityScore:    item.QualityScore,
		UsedForTraining: true,
	}}

	body := strings.ToLower(item.Body)
	for _, template := range topicTemplates {
		for _, substring := range template.substrings {
			if strings.Contains(body, substring) {
				pairs = append(pairs, models.TrainingPair{
					Question:        template.question,
					Answer:          answer,
					SourceContentID: item.ID,
					QualityScore:    item.QualityScore,
					UsedForTraining: true,
				})
				break
			}
		}
	}

	return pairs
}

func excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= answerExcerptRunes {
		return body
	}
	return string(runes[:answerExcerptRunes])
}

func accuracy(pairs int) float64 {
	a := 0.75 + 0.002*float64(pairs)
	if a > 0.95 {
		return 0.95
	}
	return a
}

func loss(pairs int) float64 {
	l := 1.25 - 0.01*float64(pairs)
	if l < 0.05 {
		return 0.05
	}
	return l
}

func versionLabel(now time.Time) string {
	return now.Format("v20060102.150405")
}
