package repository

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/search"
)

// searchDocumentsQuery exports every searchable text of the entities as
// (id, type, field, content) tuples.
const searchDocumentsQuery = `
SELECT id, 'calculation' AS type, 'customer' AS field, customer AS content FROM calculation
UNION ALL SELECT id, 'calculation', 'description', description FROM calculation
UNION ALL SELECT id, 'calculation', 'overallTotal', CAST(overall_total AS TEXT) FROM calculation
UNION ALL SELECT id, 'calculation', 'id', CAST(id AS TEXT) FROM calculation
UNION ALL SELECT id, 'calculationstate', 'code', code FROM calculation_state
UNION ALL SELECT id, 'calculationstate', 'description', description FROM calculation_state
UNION ALL SELECT id, 'category', 'code', code FROM category
UNION ALL SELECT id, 'category', 'description', description FROM category
UNION ALL SELECT id, 'customer', 'company', company FROM customer
UNION ALL SELECT id, 'customer', 'firstName', first_name FROM customer
UNION ALL SELECT id, 'customer', 'lastName', last_name FROM customer
UNION ALL SELECT id, 'customer', 'email', email FROM customer
UNION ALL SELECT id, 'group', 'code', code FROM product_group
UNION ALL SELECT id, 'group', 'description', description FROM product_group
UNION ALL SELECT id, 'product', 'description', description FROM product
UNION ALL SELECT id, 'product', 'supplier', supplier FROM product
UNION ALL SELECT id, 'product', 'price', CAST(price AS TEXT) FROM product
UNION ALL SELECT id, 'task', 'name', name FROM task
UNION ALL SELECT id, 'task', 'supplier', supplier FROM task
UNION ALL SELECT id, 'user', 'username', username FROM app_user
UNION ALL SELECT id, 'user', 'email', email FROM app_user`

// SearchDocuments exports the search documents of all entities. Rows
// without content are skipped.
func SearchDocuments(ctx context.Context, db DBTX) ([]search.Document, error) {
	rows, err := queryMaps(ctx, db, searchDocumentsQuery)
	if err != nil {
		return nil, fmt.Errorf("export search documents: %w", err)
	}
	return toDocuments(rows), nil
}

// DocumentLoader adapts SearchDocuments to the index rebuild.
func DocumentLoader(db DBTX) search.Loader {
	return func(ctx context.Context) ([]search.Document, error) {
		return SearchDocuments(ctx, db)
	}
}

func toDocuments(rows []map[string]any) []search.Document {
	docs := make([]search.Document, 0, len(rows))
	for _, row := range rows {
		content := datatable.Stringify(row["content"])
		if content == "" {
			continue
		}
		id, _ := datatable.ToInt(row["id"])
		docs = append(docs, search.Document{
			ID:      id,
			Type:    datatable.Stringify(row["type"]),
			Field:   datatable.Stringify(row["field"]),
			Content: content,
		})
	}
	return docs
}
