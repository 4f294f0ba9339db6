package datatable

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
)

// Choice is one entry of a filter drop-down (category, group, state).
type Choice struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
	Color       string `json:"color,omitempty"`
	Editable    *bool  `json:"editable,omitempty"`
}

// ChoiceLookup loads drop-down entries.
type ChoiceLookup interface {
	// Choice returns the entry with the given id, or nil if none exists.
	Choice(ctx context.Context, id int) (*Choice, error)
	// Choices returns all entries in display order.
	Choices(ctx context.Context) ([]Choice, error)
}

// ChoiceFilter describes an equality filter driven by a drop-down.
type ChoiceFilter struct {
	// Expr is the filtered expression ("p.category_id").
	Expr string
	// Value extracts the selected id from the query.
	Value func(CustomData) int
	// SelectedKey receives the selected entry in the custom data.
	SelectedKey string
	// ListKey receives all entries in the custom data.
	ListKey string
	Lookup  ChoiceLookup
}

// WithChoiceFilter restricts rows to the selected entry and exposes the
// drop-down in the custom data of non-callback requests. Ids that do not
// resolve to an entry are ignored.
func WithChoiceFilter(f ChoiceFilter) EntityOption {
	filter := func(ctx context.Context, b *sqlbuilder.Builder, query DataQuery) error {
		id := f.Value(query.CustomData)
		if id <= 0 {
			return nil
		}
		choice, err := f.Lookup.Choice(ctx, id)
		if err != nil {
			return fmt.Errorf("load %s %d: %w", f.SelectedKey, id, err)
		}
		if choice != nil {
			b.Where(f.Expr+" = ?", id)
		}
		return nil
	}

	decorate := func(ctx context.Context, query DataQuery, page *Page) error {
		if query.Callback {
			return nil
		}
		choices, err := f.Lookup.Choices(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", f.ListKey, err)
		}
		page.CustomData[f.ListKey] = choices

		if id := f.Value(query.CustomData); id > 0 {
			for i := range choices {
				if choices[i].ID == id {
					page.CustomData[f.SelectedKey] = choices[i]
					break
				}
			}
		}
		return nil
	}

	return func(s *EntitySource) {
		WithFilter(filter)(s)
		WithDecorator(decorate)(s)
	}
}

// WithCategoryFilter is the category drop-down filter on expr.
func WithCategoryFilter(expr string, lookup ChoiceLookup) EntityOption {
	return WithChoiceFilter(ChoiceFilter{
		Expr:        expr,
		Value:       func(cd CustomData) int { return cd.CategoryID },
		SelectedKey: "category",
		ListKey:     "categories",
		Lookup:      lookup,
	})
}
