// Package metrics exposes knowledge base and model gauges, refreshed from
// the database.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/api"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

const (
	contentItemsMetricName  = "pylearn_content_items"
	trainingPairsMetricName = "pylearn_training_pairs"
	queriesMetricName       = "pylearn_queries_total"
	modelAccuracyMetricName = "pylearn_model_accuracy"
	modelLossMetricName     = "pylearn_model_loss"
	avgRatingMetricName     = "pylearn_average_rating"
)

var (
	contentItemsMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: contentItemsMetricName,
		Help: "Number of knowledge base items by source type",
	}, []string{"source_type"})
	trainingPairsMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: trainingPairsMetricName,
		Help: "Number of derived training pairs",
	})
	queriesMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: queriesMetricName,
		Help: "Number of recorded user queries",
	})
	modelAccuracyMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: modelAccuracyMetricName,
		Help: "Simulated accuracy of the latest model snapshot",
	}, []string{"version"})
	modelLossMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: modelLossMetricName,
		Help: "Simulated loss of the latest model snapshot",
	}, []string{"version"})
	avgRatingMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: avgRatingMetricName,
		Help: "Average user rating across rated queries",
	})
)

// Refresh recomputes every gauge from the database. Called at startup and
// after each collection or training run.
func Refresh(dbc *db.DB) error {
	type sourceCount struct {
		SourceType string
		Count      int64
	}
	var bySource []sourceCount
	if err := dbc.DB.Model(&models.ContentItem{}).
		Select("source_type, COUNT(*) AS count").
		Group("source_type").
		Scan(&bySource).Error; err != nil {
		return errors.Wrap(err, "could not count content items by source")
	}
	contentItemsMetric.Reset()
	for _, row := range bySource {
		contentItemsMetric.WithLabelValues(row.SourceType).Set(float64(row.Count))
	}

	stats, err := api.GetStats(dbc, nil)
	if err != nil {
		return errors.Wrap(err, "could not compute stats for metrics")
	}

	for _, table := range stats.Tables {
		switch table.Name {
		case "training_pairs":
			trainingPairsMetric.Set(float64(table.RowCount))
		case "query_records":
			queriesMetric.Set(float64(table.RowCount))
		}
	}

	if stats.LatestModel != nil {
		modelAccuracyMetric.Reset()
		modelLossMetric.Reset()
		modelAccuracyMetric.WithLabelValues(stats.LatestModel.Version).Set(stats.LatestModel.AccuracyScore)
		modelLossMetric.WithLabelValues(stats.LatestModel.Version).Set(stats.LatestModel.LossValue)
	}

	if stats.AverageRating != nil {
		avgRatingMetric.Set(*stats.AverageRating)
	}

	log.Debug("refreshed database metrics")
	return nil
}
