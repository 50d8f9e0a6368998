package api

import (
	"github.com/pkg/errors"

	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/filter"
)

// ErrUnknownTable is returned for table names outside the browsable set.
var ErrUnknownTable = errors.New("unknown table")

// columnSet implements filter.Filterable over a fixed column map.
type columnSet map[string]filter.ColumnType

func (c columnSet) GetFieldType(field string) filter.ColumnType {
	return c[field]
}

// tableDescriptor describes one browsable table: its columns for
// filter validation and how to materialize result rows.
type tableDescriptor struct {
	model            interface{}
	columns          columnSet
	defaultSortField string
	newRows          func() interface{}
}

// browsableTables is the allowlist behind the database browser; anything not
// listed here is not reachable through the API.
var browsableTables = map[string]tableDescriptor{
	"content_items": {
		model: &models.ContentItem{},
		columns: columnSet{
			"id":            filter.ColumnTypeNumerical,
			"title":         filter.ColumnTypeString,
			"body":          filter.ColumnTypeString,
			"source_type":   filter.ColumnTypeString,
			"source_url":    filter.ColumnTypeString,
			"quality_score": filter.ColumnTypeNumerical,
			"created_at":    filter.ColumnTypeTimestamp,
		},
		defaultSortField: "quality_score",
		newRows:          func() interface{} { return &[]models.ContentItem{} },
	},
	"training_pairs": {
		model: &models.TrainingPair{},
		columns: columnSet{
			"id":                filter.ColumnTypeNumerical,
			"question":          filter.ColumnTypeString,
			"answer":            filter.ColumnTypeString,
			"source_content_id": filter.ColumnTypeNumerical,
			"quality_score":     filter.ColumnTypeNumerical,
			"created_at":        filter.ColumnTypeTimestamp,
		},
		defaultSortField: "id",
		newRows:          func() interface{} { return &[]models.TrainingPair{} },
	},
	"query_records": {
		model: &models.QueryRecord{},
		columns: columnSet{
			"id":                    filter.ColumnTypeNumerical,
			"question":              filter.ColumnTypeString,
			"answer":                filter.ColumnTypeString,
			"response_time_seconds": filter.ColumnTypeNumerical,
			"user_rating":           filter.ColumnTypeNumerical,
			"created_at":            filter.ColumnTypeTimestamp,
		},
		defaultSortField: "id",
		newRows:          func() interface{} { return &[]models.QueryRecord{} },
	},
	"model_metrics_snapshots": {
		model: &models.ModelMetricsSnapshot{},
		columns: columnSet{
			"id":                    filter.ColumnTypeNumerical,
			"version_label":         filter.ColumnTypeString,
			"accuracy_score":        filter.ColumnTypeNumerical,
			"loss_value":            filter.ColumnTypeNumerical,
			"training_sample_count": filter.ColumnTypeNumerical,
			"evaluation_timestamp":  filter.ColumnTypeTimestamp,
			"created_at":            filter.ColumnTypeTimestamp,
		},
		defaultSortField: "id",
		newRows:          func() interface{} { return &[]models.ModelMetricsSnapshot{} },
	},
	"collection_runs": {
		model: &models.CollectionRun{},
		columns: columnSet{
			"id":                     filter.ColumnTypeNumerical,
			"run_id":                 filter.ColumnTypeString,
			"source":                 filter.ColumnTypeString,
			"status":                 filter.ColumnTypeString,
			"items_collected":        filter.ColumnTypeNumerical,
			"error_message":          filter.ColumnTypeString,
			"execution_time_seconds": filter.ColumnTypeNumerical,
			"created_at":             filter.ColumnTypeTimestamp,
		},
		defaultSortField: "id",
		newRows:          func() interface{} { return &[]models.CollectionRun{} },
	},
}

// TableSummary is one row of the table listing.
type TableSummary struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// tableNames keeps listing order stable.
var tableNames = []string{
	"content_items",
	"training_pairs",
	"query_records",
	"model_metrics_snapshots",
	"collection_runs",
}

// ListTables returns every browsable table with its row count.
func ListTables(dbc *db.DB) ([]TableSummary, error) {
	summaries := make([]TableSummary, 0, len(tableNames))
	for _, name := range tableNames {
		descriptor := browsableTables[name]
		var count int64
		if err := dbc.DB.Model(descriptor.model).Count(&count).Error; err != nil {
			return nil, errors.Wrapf(err, "could not count rows in %s", name)
		}
		summaries = append(summaries, TableSummary{Name: name, RowCount: count})
	}
	return summaries, nil
}

// DefaultSortField returns the table's default sort column, or ErrUnknownTable.
func DefaultSortField(table string) (string, error) {
	descriptor, ok := browsableTables[table]
	if !ok {
		return "", ErrUnknownTable
	}
	return descriptor.defaultSortField, nil
}

// GetTableRows fetches one page of a browsable table under the given filter
// options.
func GetTableRows(dbc *db.DB, table string, opts *filter.FilterOptions) (interface{}, error) {
	descriptor, ok := browsableTables[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	q, err := filter.FilterableDBResult(dbc.DB.Model(descriptor.model), opts, descriptor.columns)
	if err != nil {
		return nil, err
	}

	rows := descriptor.newRows()
	if err := q.Find(rows).Error; err != nil {
		return nil, errors.Wrapf(err, "could not query %s", table)
	}
	return rows, nil
}
