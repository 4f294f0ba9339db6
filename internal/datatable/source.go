package datatable

import (
	"context"
	"strings"

	"github.com/Velocidex/ordereddict"
)

// Page is what a row source returns for one query.
type Page struct {
	// Records are the raw rows of the requested page. Each is a
	// map[string]any, an *ordereddict.Dict or an Accessor.
	Records []any
	// Total counts rows ignoring search and filters, honoring structural
	// scoping.
	Total int
	// Filtered counts rows matching search and filters.
	Filtered int
	// Status is StatusSuccess when left zero.
	Status Status
	// CustomData is merged into the results.
	CustomData map[string]any
}

// RowSource fetches the records of one page. Columns are the table's
// resolved columns, used for search and sort eligibility.
type RowSource interface {
	Fetch(ctx context.Context, query DataQuery, columns []*Column) (*Page, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func(ctx context.Context, query DataQuery, columns []*Column) (*Page, error)

// Fetch calls f.
func (f RowSourceFunc) Fetch(ctx context.Context, query DataQuery, columns []*Column) (*Page, error) {
	return f(ctx, query, columns)
}

// Accessor exposes named values of a record that is not a map.
type Accessor interface {
	Field(name string) (any, bool)
}

// FieldValue reads a field from a record. Dotted paths ("state.code") are
// first looked up as flat keys, then by descending into nested maps.
func FieldValue(record any, field string) (any, bool) {
	if v, ok := lookup(record, field); ok {
		return v, true
	}

	head, rest, found := strings.Cut(field, ".")
	if !found {
		return nil, false
	}
	inner, ok := lookup(record, head)
	if !ok || inner == nil {
		return nil, false
	}
	return FieldValue(inner, rest)
}

func lookup(record any, key string) (any, bool) {
	switch r := record.(type) {
	case map[string]any:
		v, ok := r[key]
		return v, ok
	case *ordereddict.Dict:
		if r == nil {
			return nil, false
		}
		return r.Get(key)
	case Accessor:
		return r.Field(key)
	}
	return nil, false
}

// slicePage returns the [offset, offset+limit) window of records.
func slicePage(records []any, offset, limit int) []any {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []any{}
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}

// SlicePage is slicePage for sources outside this package.
func SlicePage(records []any, offset, limit int) []any {
	return slicePage(records, offset, limit)
}
