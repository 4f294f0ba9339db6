package repository

import (
	"context"
	"fmt"
	"strings"
)

// reportSorts maps report column fields to their ordering expression.
var reportSorts = map[string]string{
	"id":          "c.id",
	"date":        "c.date",
	"customer":    "c.customer",
	"description": "c.description",
	"state.code":  "s.code",
}

const reportColumns = `c.id, c.date, c.customer, c.description, s.code AS state_code, s.color AS state_color`

const duplicateItemsQuery = `SELECT ` + reportColumns + `,
	MIN(i.description) AS item_description,
	COUNT(*) AS item_count,
	SUM(i.quantity) AS item_quantity
FROM calculation c
JOIN calculation_state s ON s.id = c.state_id
JOIN calculation_item i ON i.calculation_id = c.id
GROUP BY c.id, s.code, s.color, LOWER(i.description)
HAVING COUNT(*) > 1
ORDER BY %s, LOWER(MIN(i.description))`

const emptyItemsQuery = `SELECT ` + reportColumns + `,
	i.description AS item_description,
	i.quantity AS item_quantity,
	i.price AS item_price
FROM calculation c
JOIN calculation_state s ON s.id = c.state_id
JOIN calculation_item i ON i.calculation_id = c.id
WHERE i.price = 0 OR i.quantity = 0
ORDER BY %s, i.description`

// CalculationItemsRepository computes the calculation item reports.
type CalculationItemsRepository struct {
	db DBTX
}

// NewCalculationItems creates the report repository.
func NewCalculationItems(db DBTX) *CalculationItemsRepository {
	return &CalculationItemsRepository{db: db}
}

// FindDuplicateItems returns the calculations having items with the same
// description, one record per calculation. Each record holds an "items"
// list of {description, count, quantity}.
func (r *CalculationItemsRepository) FindDuplicateItems(ctx context.Context, sortField, order string) ([]any, error) {
	rows, err := queryMaps(ctx, r.db, fmt.Sprintf(duplicateItemsQuery, reportOrder(sortField, order)))
	if err != nil {
		return nil, fmt.Errorf("find duplicate items: %w", err)
	}
	return groupByCalculation(rows, func(row map[string]any) map[string]any {
		return map[string]any{
			"description": row["item_description"],
			"count":       row["item_count"],
			"quantity":    row["item_quantity"],
		}
	}), nil
}

// FindEmptyItems returns the calculations having items without price or
// quantity, one record per calculation. Each record holds an "items" list
// of {description, quantity, price}.
func (r *CalculationItemsRepository) FindEmptyItems(ctx context.Context, sortField, order string) ([]any, error) {
	rows, err := queryMaps(ctx, r.db, fmt.Sprintf(emptyItemsQuery, reportOrder(sortField, order)))
	if err != nil {
		return nil, fmt.Errorf("find empty items: %w", err)
	}
	return groupByCalculation(rows, func(row map[string]any) map[string]any {
		return map[string]any{
			"description": row["item_description"],
			"quantity":    row["item_quantity"],
			"price":       row["item_price"],
		}
	}), nil
}

// reportOrder renders the ORDER BY terms. Unknown fields sort by id,
// newest first.
func reportOrder(sortField, order string) string {
	expr, ok := reportSorts[sortField]
	if !ok {
		return "c.id DESC"
	}
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	if expr == "c.id" {
		return expr + " " + dir
	}
	return expr + " " + dir + ", c.id DESC"
}

// groupByCalculation folds item rows into one record per calculation,
// keeping the order in which calculations first appear.
func groupByCalculation(rows []map[string]any, item func(map[string]any) map[string]any) []any {
	var records []any
	index := make(map[any]map[string]any)

	for _, row := range rows {
		id := row["id"]
		rec, ok := index[id]
		if !ok {
			rec = map[string]any{
				"id":          id,
				"date":        row["date"],
				"customer":    row["customer"],
				"description": row["description"],
				"state.code":  row["state_code"],
				"state.color": row["state_color"],
				"items":       []any{},
			}
			index[id] = rec
			records = append(records, rec)
		}
		rec["items"] = append(rec["items"].([]any), item(row))
	}
	return records
}
