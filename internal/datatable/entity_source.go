package datatable

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
)

// Repository is the persistence collaborator of entity-backed tables.
type Repository interface {
	// NewQuery returns the base statement of the entity: projection,
	// joins and any structural scoping.
	NewQuery() *sqlbuilder.Builder
	// SearchFields resolves a column field to the physical expressions
	// searched for it. A field may span several columns.
	SearchFields(field string) []string
	// SortField resolves a column field to its sort expression, or "" when
	// the field cannot be sorted.
	SortField(field string) string
	// Count runs a COUNT statement.
	Count(ctx context.Context, b *sqlbuilder.Builder) (int, error)
	// Fetch runs the statement and returns one map per row, keyed by the
	// projected aliases.
	Fetch(ctx context.Context, b *sqlbuilder.Builder) ([]map[string]any, error)
}

// QueryFunc mutates a statement for a query.
type QueryFunc func(ctx context.Context, b *sqlbuilder.Builder, query DataQuery) error

// Decorator post-processes a fetched page, typically adding custom data.
type Decorator func(ctx context.Context, query DataQuery, page *Page) error

// OrderField is one term of a static default order.
type OrderField struct {
	Field string
	Order string
}

// EntityOption configures an EntitySource.
type EntityOption func(*EntitySource)

// WithDefaultOrder appends terms applied after the requested sort.
func WithDefaultOrder(fields ...OrderField) EntityOption {
	return func(s *EntitySource) {
		s.defaultOrder = append(s.defaultOrder, fields...)
	}
}

// WithScope adds a structural restriction. Scopes apply to both the total
// and the filtered count.
func WithScope(fn QueryFunc) EntityOption {
	return func(s *EntitySource) {
		s.scopes = append(s.scopes, fn)
	}
}

// WithFilter adds a restriction applied together with the search term.
// Filters only affect the filtered count.
func WithFilter(fn QueryFunc) EntityOption {
	return func(s *EntitySource) {
		s.filters = append(s.filters, fn)
	}
}

// WithDecorator adds a page post-processor.
func WithDecorator(fn Decorator) EntityOption {
	return func(s *EntitySource) {
		s.decorators = append(s.decorators, fn)
	}
}

// EntitySource reads pages of a relational entity through a Repository.
type EntitySource struct {
	repo         Repository
	defaultOrder []OrderField
	scopes       []QueryFunc
	filters      []QueryFunc
	decorators   []Decorator
}

// NewEntitySource creates a source over repo.
func NewEntitySource(repo Repository, opts ...EntityOption) *EntitySource {
	s := &EntitySource{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch counts, searches, sorts and pages the entity rows.
func (s *EntitySource) Fetch(ctx context.Context, query DataQuery, columns []*Column) (*Page, error) {
	b := s.repo.NewQuery()
	for _, scope := range s.scopes {
		if err := scope(ctx, b, query); err != nil {
			return nil, err
		}
	}

	total, err := s.repo.Count(ctx, b.CountQuery())
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	scoped := b.WhereCount()
	if err := s.search(ctx, b, query, columns); err != nil {
		return nil, err
	}

	filtered := total
	if b.WhereCount() > scoped {
		if filtered, err = s.repo.Count(ctx, b.CountQuery()); err != nil {
			return nil, fmt.Errorf("count filtered: %w", err)
		}
	}

	s.orderBy(b, query, columns)

	b.Offset(query.Offset)
	if query.Limit > 0 {
		b.Limit(query.Limit)
	}

	rows, err := s.repo.Fetch(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	records := make([]any, len(rows))
	for i, row := range rows {
		records[i] = row
	}

	page := &Page{
		Records:    records,
		Total:      total,
		Filtered:   filtered,
		CustomData: map[string]any{},
	}
	for _, decorate := range s.decorators {
		if err := decorate(ctx, query, page); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// search ORs a substring predicate over every searchable column, then
// applies the filters.
func (s *EntitySource) search(ctx context.Context, b *sqlbuilder.Builder, query DataQuery, columns []*Column) error {
	if query.Search != "" {
		var conds []sqlbuilder.Cond
		for _, c := range columns {
			if !c.IsSearchable() {
				continue
			}
			for _, expr := range s.repo.SearchFields(c.Field()) {
				conds = append(conds, sqlbuilder.Like(expr, query.Search))
			}
		}
		b.WhereOr(conds...)
	}

	for _, filter := range s.filters {
		if err := filter(ctx, b, query); err != nil {
			return err
		}
	}
	return nil
}

// orderBy applies the requested sort, or the default column, then the
// static default order. An expression is only applied once.
func (s *EntitySource) orderBy(b *sqlbuilder.Builder, query DataQuery, columns []*Column) {
	add := func(field, order string) {
		expr := s.repo.SortField(field)
		if expr == "" || b.HasOrder(expr) {
			return
		}
		b.OrderBy(expr, order)
	}

	if c := FindColumn(columns, query.Sort); c != nil && c.IsSortable() {
		add(c.Field(), query.Order)
	} else if c := DefaultColumn(columns); c != nil && c.IsSortable() {
		add(c.Field(), c.Order())
	}

	for _, o := range s.defaultOrder {
		add(o.Field, o.Order)
	}
}
