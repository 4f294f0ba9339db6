package datatable

import "context"

// ItemsCountKey is the custom data key of the secondary items count.
const ItemsCountKey = "itemsCount"

// ItemsFetcher returns a fully materialized report sorted by sortField.
// sortField is empty when the requested sort is not a sortable column.
type ItemsFetcher func(ctx context.Context, sortField, order string) ([]any, error)

// ItemsReducer computes the items count of a report.
type ItemsReducer func(records []any) int

// ArraySource serves a materialized report. Search is not supported: the
// total and filtered counts are both the report length and pages are
// in-memory slices.
type ArraySource struct {
	fetch  ItemsFetcher
	reduce ItemsReducer
}

// NewArraySource creates a source over fetch. reduce may be nil.
func NewArraySource(fetch ItemsFetcher, reduce ItemsReducer) *ArraySource {
	return &ArraySource{fetch: fetch, reduce: reduce}
}

// Fetch loads the whole report and returns the requested window.
func (s *ArraySource) Fetch(ctx context.Context, query DataQuery, columns []*Column) (*Page, error) {
	var sortField string
	if c := FindColumn(columns, query.Sort); c != nil && c.IsSortable() {
		sortField = c.Field()
	}

	records, err := s.fetch(ctx, sortField, query.Order)
	if err != nil {
		return nil, err
	}

	count := s.Count(records)
	return &Page{
		Records:  slicePage(records, query.Offset, query.Limit),
		Total:    count,
		Filtered: count,
		CustomData: map[string]any{
			ItemsCountKey: s.ItemsCount(records),
		},
	}, nil
}

// Count returns the number of report rows.
func (s *ArraySource) Count(records []any) int {
	return len(records)
}

// ItemsCount applies the reducer.
func (s *ArraySource) ItemsCount(records []any) int {
	if s.reduce == nil {
		return 0
	}
	return s.reduce(records)
}

// SumItems sums countField over the nested itemsField list of each record.
func SumItems(itemsField, countField string) ItemsReducer {
	return func(records []any) int {
		total := 0
		for _, r := range records {
			for _, item := range nestedItems(r, itemsField) {
				if v, ok := FieldValue(item, countField); ok {
					if n, ok := ToInt(v); ok {
						total += n
					}
				}
			}
		}
		return total
	}
}

// CountItems counts the entries of the nested itemsField list of each
// record.
func CountItems(itemsField string) ItemsReducer {
	return func(records []any) int {
		total := 0
		for _, r := range records {
			total += len(nestedItems(r, itemsField))
		}
		return total
	}
}

func nestedItems(record any, field string) []any {
	v, ok := FieldValue(record, field)
	if !ok {
		return nil
	}
	switch items := v.(type) {
	case []any:
		return items
	case []map[string]any:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	}
	return nil
}
