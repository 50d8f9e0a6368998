// Package filter translates the database browser's filter/sort query
// parameters into gorm clauses.
package filter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ColumnType tells the SQL builder how a column compares.
type ColumnType int

const (
	ColumnTypeUnknown ColumnType = iota
	ColumnTypeString
	ColumnTypeNumerical
	ColumnTypeTimestamp
)

type Sort string

const (
	SortAscending  Sort = "asc"
	SortDescending Sort = "desc"
)

// LinkOperator determines how to chain multiple filters together, 'AND' and 'OR'
// are supported.
type LinkOperator string

const (
	LinkOperatorAnd LinkOperator = "and"
	LinkOperatorOr  LinkOperator = "or"
)

// Operator defines an operator used for filter items such as equals, contains,
// etc, as well as the arithmetic operators like ==, !=, >, etc.
type Operator string

const (
	OperatorContains   Operator = "contains"
	OperatorEquals     Operator = "equals"
	OperatorStartsWith Operator = "starts with"
	OperatorEndsWith   Operator = "ends with"
	OperatorIsEmpty    Operator = "is empty"
	OperatorIsNotEmpty Operator = "is not empty"

	OperatorArithmeticEquals              Operator = "="
	OperatorArithmeticNotEquals           Operator = "!="
	OperatorArithmeticGreaterThan         Operator = ">"
	OperatorArithmeticGreaterThanOrEquals Operator = ">="
	OperatorArithmeticLessThan            Operator = "<"
	OperatorArithmeticLessThanOrEquals    Operator = "<="
)

// Filterable is implemented by table descriptors; it doubles as the column
// allowlist, so any field it does not know is rejected before reaching SQL.
type Filterable interface {
	GetFieldType(field string) ColumnType
}

// Filter is a collection of FilterItem, with a link operator. It is used to
// chain filters together, for example: where title contains list and
// quality_score > 0.8.
type Filter struct {
	Items        []FilterItem `json:"items"`
	LinkOperator LinkOperator `json:"linkOperator"`
}

// FilterItem is an individual filter consisting of a field, operator, value
// and a not boolean that negates the operator.
type FilterItem struct {
	Field    string   `json:"columnField"`
	Not      bool     `json:"not"`
	Operator Operator `json:"operatorValue"`
	Value    string   `json:"value"`
}

// condition renders the item to a SQL fragment with a single placeholder
// argument, or an error when the field or operator is unknown.
func (f FilterItem) condition(filterable Filterable) (sql string, arg interface{}, err error) {
	if filterable.GetFieldType(f.Field) == ColumnTypeUnknown {
		return "", nil, fmt.Errorf("%s: unknown field", f.Field)
	}
	column := pq.QuoteIdentifier(f.Field)

	switch f.Operator {
	case OperatorContains:
		return column + " LIKE ?", fmt.Sprintf("%%%s%%", f.Value), nil
	case OperatorStartsWith:
		return column + " LIKE ?", fmt.Sprintf("%s%%", f.Value), nil
	case OperatorEndsWith:
		return column + " LIKE ?", fmt.Sprintf("%%%s", f.Value), nil
	case OperatorEquals, OperatorArithmeticEquals:
		return column + " = ?", f.Value, nil
	case OperatorArithmeticNotEquals:
		return column + " <> ?", f.Value, nil
	case OperatorArithmeticGreaterThan:
		return column + " > ?", f.Value, nil
	case OperatorArithmeticGreaterThanOrEquals:
		return column + " >= ?", f.Value, nil
	case OperatorArithmeticLessThan:
		return column + " < ?", f.Value, nil
	case OperatorArithmeticLessThanOrEquals:
		return column + " <= ?", f.Value, nil
	case OperatorIsEmpty:
		return column + " = ?", "", nil
	case OperatorIsNotEmpty:
		return column + " != ?", "", nil
	default:
		return "", nil, fmt.Errorf("%s: unknown operator", f.Operator)
	}
}

// ToSQL applies the filter items to a gorm query.
func (filters Filter) ToSQL(db *gorm.DB, filterable Filterable) (*gorm.DB, error) {
	for _, f := range filters.Items {
		sql, arg, err := f.condition(filterable)
		if err != nil {
			return nil, err
		}

		negate := f.Not
		if filters.LinkOperator == LinkOperatorOr {
			if negate {
				db = db.Or(db.Session(&gorm.Session{NewDB: true}).Not(sql, arg))
			} else {
				db = db.Or(sql, arg)
			}
		} else {
			// "and" is the default
			if negate {
				db = db.Not(sql, arg)
			} else {
				db = db.Where(sql, arg)
			}
		}
	}

	return db, nil
}

// FilterOptions carries everything the table browser accepts from the query
// string.
type FilterOptions struct {
	Filter    *Filter
	SortField string
	Sort      Sort
	Limit     int
	Offset    int
}

// FilterOptionsFromRequest parses filter, sort, limit and page query
// parameters.
func FilterOptionsFromRequest(req *http.Request, defaultSortField string, defaultSort Sort, defaultLimit int) (*FilterOptions, error) {
	opts := &FilterOptions{Filter: &Filter{}}

	if queryFilter := req.URL.Query().Get("filter"); queryFilter != "" {
		if err := json.Unmarshal([]byte(queryFilter), opts.Filter); err != nil {
			return nil, fmt.Errorf("could not unmarshal filter: %w", err)
		}
	}

	opts.Limit = defaultLimit
	if limitParam := req.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("invalid limit param: %q", limitParam)
		}
		opts.Limit = limit
	}

	if pageParam := req.URL.Query().Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("invalid page param: %q", pageParam)
		}
		opts.Offset = (page - 1) * opts.Limit
	}

	opts.SortField = req.URL.Query().Get("sortField")
	if opts.SortField == "" {
		opts.SortField = defaultSortField
	}
	opts.Sort = Sort(req.URL.Query().Get("sort"))
	if opts.Sort == "" {
		opts.Sort = defaultSort
	}

	return opts, nil
}

// FilterableDBResult builds the final query: filter clauses, sort order and
// pagination.
func FilterableDBResult(dbClient *gorm.DB, opts *FilterOptions, filterable Filterable) (*gorm.DB, error) {
	if filterable.GetFieldType(opts.SortField) == ColumnTypeUnknown {
		return nil, fmt.Errorf("%s: unknown sort field", opts.SortField)
	}

	q, err := opts.Filter.ToSQL(dbClient, filterable)
	if err != nil {
		return nil, err
	}

	q = q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: opts.SortField},
		Desc:   opts.Sort == SortDescending,
	})
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	return q, nil
}
