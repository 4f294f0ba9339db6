package tables

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/repository"
	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
)

func init() {
	Register(Definition{
		Info:    Info{Name: "calculation", Group: GroupEntity, Label: "calculation.list.title"},
		Factory: NewCalculationTable,
	})
	Register(Definition{
		Info:    Info{Name: "calculation_below", Group: GroupReport, Label: "below.title"},
		Factory: NewCalculationBelowTable,
	})
	Register(Definition{
		Info:    Info{Name: "calculation_state", Group: GroupEntity, Label: "calculationstate.list.title"},
		Factory: NewCalculationStateTable,
	})
	Register(Definition{
		Info:    Info{Name: "calculation_duplicate", Group: GroupReport, Label: "duplicate.title"},
		Factory: NewCalculationDuplicateTable,
	})
	Register(Definition{
		Info:    Info{Name: "calculation_empty", Group: GroupReport, Label: "empty.title"},
		Factory: NewCalculationEmptyTable,
	})
}

// Custom data keys of the calculation tables.
const (
	stateEditableKey = "stateEditable"
	minMarginKey     = "minMargin"
)

// NewCalculationTable lists calculations, newest first, filtered by state
// and by the editable flag of the state.
func NewCalculationTable(d Deps) (*datatable.Table, error) {
	source := datatable.NewEntitySource(
		entityRepository(d, repository.CalculationEntity),
		datatable.WithDefaultOrder(datatable.OrderField{Field: "id", Order: datatable.OrderDesc}),
		datatable.WithChoiceFilter(datatable.ChoiceFilter{
			Expr:        "c.state_id",
			Value:       func(cd datatable.CustomData) int { return cd.StateID },
			SelectedKey: "state",
			ListKey:     "states",
			Lookup:      repository.NewStateChoices(d.DB),
		}),
		datatable.WithFilter(filterStateEditable),
		datatable.WithDecorator(decorateStateEditable),
	)
	return datatable.New("calculation", source, columns(d, "calculation", nil), options(d)...)
}

func filterStateEditable(_ context.Context, b *sqlbuilder.Builder, query datatable.DataQuery) error {
	switch query.CustomData.StateEditable {
	case datatable.EditableYes:
		b.Where("s.editable = ?", true)
	case datatable.EditableNo:
		b.Where("s.editable = ?", false)
	}
	return nil
}

func decorateStateEditable(_ context.Context, query datatable.DataQuery, page *datatable.Page) error {
	if !query.Callback {
		page.CustomData[stateEditableKey] = int(query.CustomData.StateEditable)
	}
	return nil
}

// NewCalculationBelowTable lists the calculations whose overall margin is
// below the minimum margin. The restriction applies to both counts.
func NewCalculationBelowTable(d Deps) (*datatable.Table, error) {
	minMargin := d.minMargin()
	source := datatable.NewEntitySource(
		entityRepository(d, repository.CalculationEntity),
		datatable.WithScope(func(_ context.Context, b *sqlbuilder.Builder, _ datatable.DataQuery) error {
			b.Where(repository.OverallMarginExpr+" < ?", minMargin)
			return nil
		}),
		datatable.WithDefaultOrder(datatable.OrderField{Field: "id", Order: datatable.OrderDesc}),
		datatable.WithDecorator(func(_ context.Context, query datatable.DataQuery, page *datatable.Page) error {
			if !query.Callback {
				page.CustomData[minMarginKey] = minMargin
			}
			return nil
		}),
	)
	return datatable.New("calculation_below", source, columns(d, "calculation_below", nil), options(d)...)
}

// NewCalculationStateTable lists the calculation states.
func NewCalculationStateTable(d Deps) (*datatable.Table, error) {
	tr := d.translator()
	source := datatable.NewEntitySource(
		entityRepository(d, repository.CalculationStateEntity),
		datatable.WithDefaultOrder(datatable.OrderField{Field: "code", Order: datatable.OrderAsc}),
	)
	formatters := datatable.Formatters{
		"formatEditable": booleanFormatter(tr, "calculationstate.list.editable_1", "calculationstate.list.editable_0"),
	}
	return datatable.New("calculation_state", source, columns(d, "calculation_state", formatters), options(d)...)
}

// NewCalculationDuplicateTable lists the calculations with duplicated
// items. The items count is the number of duplicated lines.
func NewCalculationDuplicateTable(d Deps) (*datatable.Table, error) {
	reports := d.reports()
	if reports == nil {
		return nil, fmt.Errorf("table calculation_duplicate: %w: no report repository", datatable.ErrInvalidConfiguration)
	}
	source := datatable.NewArraySource(reports.FindDuplicateItems, datatable.SumItems("items", "count"))
	formatters := datatable.Formatters{
		"formatDuplicateItems": formatDuplicateItems,
	}
	return datatable.New("calculation_duplicate", source,
		columns(d, "calculation_duplicate", formatters),
		options(d, datatable.WithoutSearch())...)
}

// NewCalculationEmptyTable lists the calculations with items lacking a
// price or a quantity. The items count is the number of such items.
func NewCalculationEmptyTable(d Deps) (*datatable.Table, error) {
	reports := d.reports()
	if reports == nil {
		return nil, fmt.Errorf("table calculation_empty: %w: no report repository", datatable.ErrInvalidConfiguration)
	}
	source := datatable.NewArraySource(reports.FindEmptyItems, datatable.CountItems("items"))
	formatters := datatable.Formatters{
		"formatEmptyItems": emptyItemsFormatter(d.translator()),
	}
	return datatable.New("calculation_empty", source,
		columns(d, "calculation_empty", formatters),
		options(d, datatable.WithoutSearch())...)
}
