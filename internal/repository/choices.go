package repository

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
)

// ChoiceRepository loads drop-down entries with a fixed statement. The
// statement must project id, code and optionally description, grp, color
// and editable.
type ChoiceRepository struct {
	db    DBTX
	name  string
	query string
}

// Choice returns the entry with id, or nil.
func (r *ChoiceRepository) Choice(ctx context.Context, id int) (*datatable.Choice, error) {
	rows, err := queryMaps(ctx, r.db, "SELECT * FROM ("+r.query+") AS choices WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", r.name, id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := toChoice(rows[0])
	return &c, nil
}

// Choices returns all entries in display order.
func (r *ChoiceRepository) Choices(ctx context.Context) ([]datatable.Choice, error) {
	rows, err := queryMaps(ctx, r.db, r.query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.name, err)
	}
	choices := make([]datatable.Choice, len(rows))
	for i, row := range rows {
		choices[i] = toChoice(row)
	}
	return choices, nil
}

func toChoice(row map[string]any) datatable.Choice {
	id, _ := datatable.ToInt(row["id"])
	c := datatable.Choice{
		ID:          id,
		Code:        datatable.Stringify(row["code"]),
		Description: datatable.Stringify(row["description"]),
		Group:       datatable.Stringify(row["grp"]),
		Color:       datatable.Stringify(row["color"]),
	}
	if v, ok := row["editable"].(bool); ok {
		c.Editable = &v
	}
	return c
}

// NewStateChoices lists calculation states, editable ones first.
func NewStateChoices(db DBTX) *ChoiceRepository {
	return &ChoiceRepository{
		db:   db,
		name: "calculation states",
		query: "SELECT s.id, s.code, s.description, s.color, s.editable " +
			"FROM calculation_state s ORDER BY s.editable DESC, s.code",
	}
}

// NewGroupChoices lists product groups.
func NewGroupChoices(db DBTX) *ChoiceRepository {
	return &ChoiceRepository{
		db:    db,
		name:  "groups",
		query: "SELECT g.id, g.code, g.description FROM product_group g ORDER BY g.code",
	}
}

// NewCategoryChoices lists categories grouped by their product group.
func NewCategoryChoices(db DBTX) *ChoiceRepository {
	return &ChoiceRepository{
		db:   db,
		name: "categories",
		query: "SELECT cat.id, cat.code, cat.description, g.code AS grp " +
			"FROM category cat JOIN product_group g ON g.id = cat.group_id ORDER BY g.code, cat.code",
	}
}
