// Package repository implements the persistence collaborators of the
// tables on PostgreSQL through pgx.
//
// Entity lists are described declaratively (projection, joins, search and
// sort expressions) and executed through statements composed with
// sqlbuilder. Reports that are not plain lists (duplicate or empty
// calculation items) and drop-down lists have dedicated queries.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Field is one projected value of an entity list.
type Field struct {
	// Name is the output key and the column field ("state.code").
	Name string
	// Expr is the SQL expression.
	Expr string
	// Search lists the expressions searched for the field. Empty means
	// Expr itself.
	Search []string
	// Sort overrides Expr for ordering.
	Sort string
	// NoSearch excludes the field from free-text search.
	NoSearch bool
	// NoSort excludes the field from ordering.
	NoSort bool
}

// Entity describes the list statement of an entity.
type Entity struct {
	Name   string
	From   string
	Joins  []string
	Fields []Field
}

// EntityRepository runs list statements for one entity.
type EntityRepository struct {
	db     DBTX
	entity Entity
	fields map[string]Field
}

// NewEntityRepository creates a repository for e.
func NewEntityRepository(db DBTX, e Entity) *EntityRepository {
	fields := make(map[string]Field, len(e.Fields))
	for _, f := range e.Fields {
		fields[f.Name] = f
	}
	return &EntityRepository{db: db, entity: e, fields: fields}
}

// Name returns the entity name.
func (r *EntityRepository) Name() string { return r.entity.Name }

// NewQuery returns the projection of every field, aliased by name.
func (r *EntityRepository) NewQuery() *sqlbuilder.Builder {
	cols := make([]string, len(r.entity.Fields))
	for i, f := range r.entity.Fields {
		cols[i] = sqlbuilder.As(f.Expr, f.Name)
	}
	b := sqlbuilder.Select(cols...).From(r.entity.From)
	for _, j := range r.entity.Joins {
		b.Join(j)
	}
	return b
}

// SearchFields returns the expressions searched for field.
func (r *EntityRepository) SearchFields(field string) []string {
	f, ok := r.fields[field]
	if !ok || f.NoSearch {
		return nil
	}
	if len(f.Search) > 0 {
		return f.Search
	}
	return []string{f.Expr}
}

// SortField returns the ordering expression of field, or "".
func (r *EntityRepository) SortField(field string) string {
	f, ok := r.fields[field]
	if !ok || f.NoSort {
		return ""
	}
	if f.Sort != "" {
		return f.Sort
	}
	return f.Expr
}

// Count runs a COUNT statement.
func (r *EntityRepository) Count(ctx context.Context, b *sqlbuilder.Builder) (int, error) {
	query, args := b.SQL()

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.entity.Name, err)
	}
	return int(n), nil
}

// Fetch runs the statement and returns the rows keyed by field name.
func (r *EntityRepository) Fetch(ctx context.Context, b *sqlbuilder.Builder) ([]map[string]any, error) {
	query, args := b.SQL()
	rows, err := queryMaps(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.entity.Name, err)
	}
	return rows, nil
}

// queryMaps runs query and returns one map per row keyed by the result
// column names.
func queryMaps(ctx context.Context, db DBTX, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			if i < len(values) {
				row[fd.Name] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
