package api

import (
	"encoding/json"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/cache"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
)

const (
	statsCacheKey      = "api_stats"
	statsCacheDuration = time.Minute
)

// ModelSummary describes the newest metrics snapshot. Simulated is always
// true; the numbers come from the fabricated training pipeline.
type ModelSummary struct {
	Version             string    `json:"version"`
	AccuracyScore       float64   `json:"accuracy_score"`
	LossValue           float64   `json:"loss_value"`
	TrainingSampleCount int       `json:"training_sample_count"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
	Simulated           bool      `json:"simulated"`
}

type ResponseTimeStats struct {
	Count       int     `json:"count"`
	MeanSeconds float64 `json:"mean_seconds"`
	P95Seconds  float64 `json:"p95_seconds"`
}

type Stats struct {
	Tables        []TableSummary     `json:"tables"`
	LatestModel   *ModelSummary      `json:"latest_model,omitempty"`
	ResponseTimes *ResponseTimeStats `json:"response_times,omitempty"`
	AverageRating *float64           `json:"average_rating,omitempty"`
}

// GetStats assembles the dashboard numbers, serving from cache when one is
// configured. A cache failure only costs us the recomputation.
func GetStats(dbc *db.DB, cacheClient cache.Cache) (*Stats, error) {
	if cacheClient != nil {
		if cached, err := cacheClient.Get(statsCacheKey); err == nil && len(cached) > 0 {
			var result Stats
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
			log.Warning("discarding unparseable cached stats")
		}
	}

	result, err := computeStats(dbc)
	if err != nil {
		return nil, err
	}

	if cacheClient != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			if err := cacheClient.Set(statsCacheKey, payload, statsCacheDuration); err != nil {
				log.WithError(err).Warning("could not cache stats")
			}
		}
	}

	return result, nil
}

func computeStats(dbc *db.DB) (*Stats, error) {
	tables, err := ListTables(dbc)
	if err != nil {
		return nil, err
	}
	result := &Stats{Tables: tables}

	result.LatestModel, err = latestModel(dbc)
	if err != nil {
		return nil, err
	}

	result.ResponseTimes, err = responseTimes(dbc)
	if err != nil {
		return nil, err
	}

	var avg struct{ Avg *float64 }
	if err := dbc.DB.Model(&models.QueryRecord{}).
		Select("AVG(user_rating) AS avg").
		Where("user_rating IS NOT NULL").
		Scan(&avg).Error; err != nil {
		return nil, errors.Wrap(err, "could not average ratings")
	}
	result.AverageRating = avg.Avg

	return result, nil
}

// latestModel picks the snapshot with the highest version label. Labels are
// timestamp-derived, so semantic comparison and recency agree.
func latestModel(dbc *db.DB) (*ModelSummary, error) {
	var snapshots []models.ModelMetricsSnapshot
	if err := dbc.DB.Find(&snapshots).Error; err != nil {
		return nil, errors.Wrap(err, "could not load metrics snapshots")
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	latest := &snapshots[0]
	latestVersion, err := goversion.NewVersion(latest.VersionLabel)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed version label %q", latest.VersionLabel)
	}
	for i := range snapshots[1:] {
		candidate := &snapshots[i+1]
		v, err := goversion.NewVersion(candidate.VersionLabel)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed version label %q", candidate.VersionLabel)
		}
		if v.GreaterThan(latestVersion) {
			latest, latestVersion = candidate, v
		}
	}

	return &ModelSummary{
		Version:             latest.VersionLabel,
		AccuracyScore:       latest.AccuracyScore,
		LossValue:           latest.LossValue,
		TrainingSampleCount: latest.TrainingSampleCount,
		EvaluatedAt:         latest.EvaluationTimestamp,
		Simulated:           true,
	}, nil
}

func responseTimes(dbc *db.DB) (*ResponseTimeStats, error) {
	var seconds []float64
	if err := dbc.DB.Model(&models.QueryRecord{}).
		Pluck("response_time_seconds", &seconds).Error; err != nil {
		return nil, errors.Wrap(err, "could not load response times")
	}
	if len(seconds) == 0 {
		return nil, nil
	}

	mean, err := stats.Mean(seconds)
	if err != nil {
		return nil, err
	}
	p95, err := stats.Percentile(seconds, 95)
	if err != nil {
		return nil, err
	}

	return &ResponseTimeStats{
		Count:       len(seconds),
		MeanSeconds: mean,
		P95Seconds:  p95,
	}, nil
}
