package tables

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/repository"
)

func TestCalculationBelowScope(t *testing.T) {
	db := &fakeDB{count: 3}
	table, err := NewCalculationBelowTable(Deps{DB: db, MinMargin: 1.25})
	require.NoError(t, err)

	results, err := table.ProcessDataQuery(context.Background(),
		datatable.DataQuery{Limit: 10, Order: datatable.OrderAsc, Search: "bath"})
	require.NoError(t, err)

	require.Len(t, db.queries, 3)
	scope := repository.OverallMarginExpr + " < $1"
	for i, q := range db.queries {
		assert.Contains(t, q, scope, "statement %d", i)
		assert.Equal(t, 1.25, db.args[i][0], "statement %d", i)
	}
	assert.True(t, strings.HasPrefix(db.queries[0], "SELECT COUNT(*) FROM calculation c"))
	assert.Contains(t, db.queries[1], "ILIKE")
	assert.Contains(t, db.queries[2], "ORDER BY "+repository.OverallMarginExpr+" ASC, c.id DESC")

	assert.Equal(t, 3, results.TotalNotFiltered)
	assert.Equal(t, 1.25, results.CustomData[minMarginKey])
}

func TestCalculationEditableFilter(t *testing.T) {
	db := &fakeDB{count: 2}
	table, err := NewCalculationTable(Deps{DB: db})
	require.NoError(t, err)

	results, err := table.ProcessDataQuery(context.Background(), datatable.DataQuery{
		Limit:      10,
		Order:      datatable.OrderAsc,
		Callback:   true,
		CustomData: datatable.CustomData{StateEditable: datatable.EditableNo},
	})
	require.NoError(t, err)

	// Total, filtered count and fetch; no drop-down on callbacks.
	require.Len(t, db.queries, 3)
	assert.NotContains(t, db.queries[0], "s.editable = $1")
	assert.Contains(t, db.queries[1], "s.editable = $1")
	assert.Equal(t, []any{false}, db.args[1])
	assert.Contains(t, db.queries[2], "ORDER BY c.id DESC")
	assert.NotContains(t, results.CustomData, stateEditableKey)
}

func TestCalculationDuplicateReport(t *testing.T) {
	reports := fakeReports{duplicates: []any{
		map[string]any{
			"id":          1,
			"description": "Kitchen",
			"items": []map[string]any{
				{"description": "Screw", "count": 2, "quantity": 10.0},
				{"description": "Nail", "count": 3, "quantity": 5.0},
			},
		},
	}}
	table, err := NewCalculationDuplicateTable(Deps{Reports: reports})
	require.NoError(t, err)
	assert.False(t, table.AllowSearch())

	results, err := table.ProcessDataQuery(context.Background(),
		datatable.DataQuery{Limit: 10, Order: datatable.OrderAsc, Search: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, 1, results.TotalNotFiltered)
	assert.Equal(t, 1, results.Filtered)
	assert.Equal(t, 5, results.CustomData[datatable.ItemsCountKey])
	assert.Equal(t, false, results.Attributes["search"])
	require.Len(t, results.Rows, 1)
	assert.Equal(t, "Screw (2), Nail (3)", cell(results.Rows[0], "items"))
	assert.Equal(t, "000001", cell(results.Rows[0], "id"))
}

func TestCalculationEmptyReport(t *testing.T) {
	reports := fakeReports{empties: []any{
		map[string]any{
			"id": 4,
			"items": []map[string]any{
				{"description": "Screw", "quantity": 2.0, "price": 0.0},
				{"description": "Labour", "quantity": 0.0, "price": 0.0},
			},
		},
		map[string]any{
			"id": 2,
			"items": []map[string]any{
				{"description": "Pipe", "quantity": 0.0, "price": 12.5},
			},
		},
	}}
	table, err := NewCalculationEmptyTable(Deps{Reports: reports})
	require.NoError(t, err)

	results, err := table.ProcessDataQuery(context.Background(),
		datatable.DataQuery{Offset: 1, Limit: 1, Order: datatable.OrderAsc})
	require.NoError(t, err)

	assert.Equal(t, 2, results.TotalNotFiltered)
	assert.Equal(t, 3, results.CustomData[datatable.ItemsCountKey])
	require.Len(t, results.Rows, 1)
	assert.Equal(t, "Pipe (calculation.empty.quantity)", cell(results.Rows[0], "items"))
}

func TestReportWithoutRepository(t *testing.T) {
	_, err := NewCalculationDuplicateTable(Deps{})
	assert.ErrorIs(t, err, datatable.ErrInvalidConfiguration)
}

func TestFormatEmptyItems(t *testing.T) {
	f := emptyItemsFormatter(plainTranslator{})
	got := f([]any{
		map[string]any{"description": "Screw", "quantity": 0, "price": 0},
	}, nil)
	assert.Equal(t, "Screw (calculation.empty.price, calculation.empty.quantity)", got)
}

func TestCalculationRowsCarryStateColumns(t *testing.T) {
	for _, name := range []string{"calculation", "calculation_below"} {
		t.Run(name, func(t *testing.T) {
			table, err := Create(name, Deps{DB: &fakeDB{}})
			require.NoError(t, err)

			columns, err := table.Columns()
			require.NoError(t, err)
			color := datatable.FindColumn(columns, "stateColor")
			require.NotNil(t, color)
			assert.True(t, color.IsVisible())
			assert.False(t, color.IsSortable())
			assert.False(t, color.IsSearchable())
			assert.Equal(t, "d-none", color.ClassName())

			rows := table.MapEntities([]any{map[string]any{
				"id":             7,
				"state.code":     "Open",
				"state.color":    "#00ff00",
				"state.editable": true,
			}})
			require.Len(t, rows, 1)
			assert.Equal(t, "#00ff00", cell(rows[0], "stateColor"))
			assert.Equal(t, "Open", cell(rows[0], "state"))
		})
	}

	table, err := Create("calculation", Deps{DB: &fakeDB{}})
	require.NoError(t, err)
	_, err = table.Columns()
	require.NoError(t, err)
	rows := table.MapEntities([]any{map[string]any{"id": 7, "state.editable": true}})
	assert.Equal(t, "1", cell(rows[0], "editable"))
}
