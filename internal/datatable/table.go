package datatable

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/quotedesk/internal/logging"
	"github.com/Velocidex/ordereddict"
)

// DefaultPageList is the page-size ladder offered to clients.
var DefaultPageList = []int{10, 15, 20, 30, 50, 100}

// ColumnFactory builds the columns of a table.
type ColumnFactory func() ([]*Column, error)

// Option configures a Table.
type Option func(*Table)

// WithPageList replaces the page-size ladder. Empty lists are ignored.
func WithPageList(list []int) Option {
	return func(t *Table) {
		if len(list) > 0 {
			t.pageList = append([]int(nil), list...)
		}
	}
}

// WithAttribute sets a static UI attribute.
func WithAttribute(key string, value any) Option {
	return func(t *Table) {
		t.attributes[key] = value
	}
}

// WithoutSearch marks the table as not supporting free-text search.
func WithoutSearch() Option {
	return func(t *Table) {
		t.allowSearch = false
	}
}

// Table runs the query -> results pipeline for one kind of record.
// Instances are request-scoped and not safe for concurrent use.
type Table struct {
	name        string
	source      RowSource
	factory     ColumnFactory
	columns     []*Column
	pageList    []int
	attributes  map[string]any
	allowSearch bool
}

// New creates a table and builds its columns. Configuration errors are
// returned here rather than at query time.
func New(name string, source RowSource, factory ColumnFactory, opts ...Option) (*Table, error) {
	if factory == nil {
		return nil, fmt.Errorf("table %s: %w", name, ErrNoColumns)
	}

	t := &Table{
		name:        name,
		source:      source,
		factory:     factory,
		pageList:    DefaultPageList,
		attributes:  map[string]any{},
		allowSearch: true,
	}
	for _, opt := range opts {
		opt(t)
	}

	if _, err := t.Columns(); err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// AllowSearch reports whether free-text search is supported.
func (t *Table) AllowSearch() bool { return t.allowSearch }

// Columns returns the table columns, building them on first use.
func (t *Table) Columns() ([]*Column, error) {
	if t.columns != nil {
		return t.columns, nil
	}
	columns, err := t.factory()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	t.columns = columns
	return t.columns, nil
}

// DefaultColumn returns the default sort column, or nil.
func (t *Table) DefaultColumn() *Column {
	return DefaultColumn(t.columns)
}

// AllowedPageList returns the shortest prefix of the page-size ladder
// whose last size covers total, or the whole ladder when total exceeds it.
func (t *Table) AllowedPageList(total int) []int {
	return allowedPageList(t.pageList, total)
}

func allowedPageList(ladder []int, total int) []int {
	if len(ladder) == 0 {
		return nil
	}
	for i, size := range ladder {
		if size >= total {
			return append([]int(nil), ladder[:i+1]...)
		}
	}
	return append([]int(nil), ladder...)
}

// ProcessDataQuery is the only entry point: it resolves the default sort,
// fetches the page and decorates the results.
func (t *Table) ProcessDataQuery(ctx context.Context, query DataQuery) (*DataResults, error) {
	start := time.Now()

	query = t.updateDataQuery(query)

	results, err := t.handleQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.name, err)
	}

	t.updateResults(query, results)

	logging.FromContext(ctx).Debug("table query processed",
		"table", t.name,
		"callback", query.Callback,
		"total", results.TotalNotFiltered,
		"filtered", results.Filtered,
		"rows", len(results.Rows),
		"status", int(results.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// updateDataQuery fills an empty sort from the default column.
func (t *Table) updateDataQuery(query DataQuery) DataQuery {
	if query.Sort != "" {
		return query
	}
	if c := t.DefaultColumn(); c != nil {
		query.Sort = c.Alias()
		query.Order = c.Order()
	}
	return query
}

func (t *Table) handleQuery(ctx context.Context, query DataQuery) (*DataResults, error) {
	results := NewDataResults()
	if t.source == nil {
		return results, nil
	}

	page, err := t.source.Fetch(ctx, query, t.columns)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return results, nil
	}

	if page.Status != 0 {
		results.Status = page.Status
	}
	results.TotalNotFiltered = page.Total
	results.Filtered = page.Filtered
	results.Rows = t.MapEntities(page.Records)
	for k, v := range page.CustomData {
		results.CustomData[k] = v
	}
	return results, nil
}

func (t *Table) updateResults(query DataQuery, results *DataResults) {
	results.PageList = t.AllowedPageList(results.TotalNotFiltered)

	limit := query.Limit
	if n := len(results.PageList); n > 0 && limit != NoLimit && limit > results.PageList[n-1] {
		limit = results.PageList[n-1]
	}
	query.Limit = limit

	for k, v := range query.Params() {
		if _, exists := results.Params[k]; !exists {
			results.Params[k] = v
		}
	}

	if query.Callback {
		results.Columns = nil
		results.Attributes = map[string]any{}
		return
	}

	results.Columns = t.columns
	for k, v := range t.attributes {
		results.Attributes[k] = v
	}
	defaults := map[string]any{
		"search":      t.allowSearch,
		"sort-name":   query.Sort,
		"sort-order":  query.Order,
		"page-size":   limit,
		"page-number": query.Page(),
		"page-list":   results.PageList,
		"view":        string(query.View),
	}
	for k, v := range defaults {
		if _, exists := results.Attributes[k]; !exists {
			results.Attributes[k] = v
		}
	}
}

// MapEntities converts records to rows keyed by the alias of every visible
// column, in column order.
func (t *Table) MapEntities(records []any) []*ordereddict.Dict {
	rows := make([]*ordereddict.Dict, 0, len(records))
	for _, record := range records {
		rows = append(rows, MapRecord(t.columns, record))
	}
	return rows
}

// MapRecord converts one record.
func MapRecord(columns []*Column, record any) *ordereddict.Dict {
	row := ordereddict.NewDict()
	for _, c := range columns {
		if !c.IsVisible() {
			continue
		}
		value, _ := FieldValue(record, c.Field())
		row.Set(c.Alias(), c.FormatValue(value, record))
	}
	return row
}
