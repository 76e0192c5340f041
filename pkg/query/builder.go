package query

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

// TextSearchConfig is the PostgreSQL text search configuration used for
// full-text conditions and ranking.
const TextSearchConfig = "english"

const placeholder = "$%d"

type condition struct {
	clause string
	args   []any
}

// SortField represents a single column in an ORDER BY clause.
// Field is the logical field name (mapped via ProjectionMap).
// Descending controls sort direction (false = ASC, true = DESC).
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	projection        *ProjectionMap
	conditions        []condition
	rank              *condition
	orderByFields     []SortField
	defaultSortFields []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:        projection,
		conditions:        make([]condition, 0),
		defaultSortFields: defaultSort,
	}
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args, _ := b.buildWhere(1)
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.Table(), where)
	return sql, args
}

// BuildPage returns a paginated SELECT query with ordering, limit, and offset.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args, next := b.buildWhere(1)
	orderBy, orderArgs := b.buildOrderBy(next)
	args = append(args, orderArgs...)
	offset := 0
	if page > 1 && pageSize > 0 {
		offset = min(page-1, math.MaxInt/pageSize) * pageSize
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		orderBy,
		pageSize,
		offset,
	)

	return sql, args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	col := b.projection.Column(idField)
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		col,
	)
	return sql, []any{id}
}

// OrderByFields sets the sort order, overriding default sort fields.
// When a text rank is set, these fields follow the rank as tiebreakers.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderByFields = fields
	return b
}

// OrderByTextRank orders results by descending ts_rank of the search vector field
// against the search terms. Default sort fields are not applied while a rank is set.
// No-op for nil or empty search.
func (b *Builder) OrderByTextRank(field string, search *string) *Builder {
	if search == nil || *search == "" {
		return b
	}
	col := b.projection.Column(field)
	b.rank = &condition{
		clause: fmt.Sprintf("ts_rank(%s, %s) DESC", col, anyTermQuery()),
		args:   []any{*search},
	}
	return b
}

// WhereEquals adds an equality condition. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = %s", col, placeholder),
		args:   []any{value},
	})
	return b
}

// WhereOverlaps adds an array overlap (&&) condition against a text[] column,
// matching rows that share at least one element with values. No-op for empty slices.
func (b *Builder) WhereOverlaps(field string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s && %s::text[]", col, placeholder),
		args:   []any{pq.Array(values)},
	})
	return b
}

// WhereTextSearch adds a full-text match of a tsvector field against the search terms.
// Any term may match. No-op for nil or empty search.
func (b *Builder) WhereTextSearch(field string, search *string) *Builder {
	if search == nil || *search == "" {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s @@ %s", col, anyTermQuery()),
		args:   []any{*search},
	})
	return b
}

// anyTermQuery converts free text into a tsquery whose lexemes are OR'ed.
func anyTermQuery() string {
	return fmt.Sprintf(
		"replace(plainto_tsquery('%s', %s)::text, ' & ', ' | ')::tsquery",
		TextSearchConfig, placeholder,
	)
}

func (b *Builder) buildOrderBy(startParam int) (string, []any) {
	fields := b.orderByFields
	if len(fields) == 0 && b.rank == nil {
		fields = b.defaultSortFields
	}

	parts := make([]string, 0, len(fields)+1)
	var args []any

	if b.rank != nil {
		clause, _ := bind(b.rank.clause, startParam, len(b.rank.args))
		parts = append(parts, clause)
		args = append(args, b.rank.args...)
	}

	for _, f := range fields {
		col := b.projection.Column(f.Field)
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", col, dir))
	}

	if len(parts) == 0 {
		return "", nil
	}

	return " ORDER BY " + strings.Join(parts, ", "), args
}

func (b *Builder) buildWhere(startParam int) (string, []any, int) {
	if len(b.conditions) == 0 {
		return "", nil, startParam
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		var clause string
		clause, paramIdx = bind(cond.clause, paramIdx, len(cond.args))
		args = append(args, cond.args...)
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, paramIdx
}

// bind numbers n placeholders in clause starting at paramIdx and returns the next index.
func bind(clause string, paramIdx, n int) (string, int) {
	for range n {
		clause = strings.Replace(clause, placeholder, fmt.Sprintf("$%d", paramIdx), 1)
		paramIdx++
	}
	return clause, paramIdx
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
