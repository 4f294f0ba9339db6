package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
)

// fakeRows serves fixed values through the pgx.Rows interface.
type fakeRows struct {
	names  []string
	values [][]any
	pos    int
	err    error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) Scan(...any) error             { return errors.New("not supported") }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.names))
	for i, n := range r.names {
		fds[i] = pgconn.FieldDescription{Name: n}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

type fakeRow struct {
	n   int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.n
	return nil
}

// fakeDB records statements and replies with canned results.
type fakeDB struct {
	rows     *fakeRows
	count    int64
	queryErr error

	queries []string
	args    [][]any
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	if db.rows == nil {
		return &fakeRows{}, nil
	}
	return db.rows, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return fakeRow{n: db.count, err: db.queryErr}
}

func TestEntityRepositoryNewQuery(t *testing.T) {
	repo := NewEntityRepository(nil, Entity{
		Name:  "product",
		From:  "product p",
		Joins: []string{productCategoryJoin},
		Fields: []Field{
			{Name: "id", Expr: "p.id"},
			{Name: "category.code", Expr: "cat.code"},
		},
	})

	sql, args := repo.NewQuery().SQL()
	assert.Equal(t, `SELECT p.id AS "id", cat.code AS "category.code" FROM product p JOIN category cat ON cat.id = p.category_id`, sql)
	assert.Empty(t, args)
}

func TestEntityRepositoryFieldResolution(t *testing.T) {
	repo := NewEntityRepository(nil, CustomerEntity)

	assert.Equal(t, []string{"cu.company", "cu.first_name", "cu.last_name"}, repo.SearchFields("nameAndCompany"))
	assert.Equal(t, []string{"cu.email"}, repo.SearchFields("email"))
	assert.Nil(t, repo.SearchFields("unknown"))
	assert.Equal(t, "cu.company", repo.SortField("nameAndCompany"))
	assert.Equal(t, "cu.email", repo.SortField("email"))
	assert.Equal(t, "", repo.SortField("unknown"))

	calc := NewEntityRepository(nil, CalculationEntity)
	assert.Nil(t, calc.SearchFields("overallMargin"))
	assert.Equal(t, "", calc.SortField("state.color"))
	assert.Equal(t, "s.code", calc.SortField("state.code"))
}

func TestEntityRepositoryCountAndFetch(t *testing.T) {
	db := &fakeDB{
		count: 3,
		rows: &fakeRows{
			names:  []string{"id", "code"},
			values: [][]any{{int64(1), "A"}, {int64(2), "B"}},
		},
	}
	repo := NewEntityRepository(db, GlobalMarginEntity)

	n, err := repo.Count(context.Background(), repo.NewQuery().CountQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "SELECT COUNT(*) FROM global_margin gm", db.queries[0])

	rows, err := repo.Fetch(context.Background(), repo.NewQuery().Limit(5))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[1]["code"])
	assert.Equal(t, []any{5}, db.args[1])
}

func TestEntityRepositoryErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	db := &fakeDB{queryErr: storeErr}
	repo := NewEntityRepository(db, UserEntity)

	_, err := repo.Count(context.Background(), sqlbuilder.Select("COUNT(*)").From("app_user u"))
	assert.ErrorIs(t, err, storeErr)

	_, err = repo.Fetch(context.Background(), repo.NewQuery())
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "fetch app_user")
}

func TestEntityRepositoryImplementsRepository(t *testing.T) {
	var _ datatable.Repository = NewEntityRepository(nil, TaskEntity)
	var _ datatable.ChoiceLookup = NewCategoryChoices(nil)
}

func TestChoices(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{
		names:  []string{"id", "code", "description", "color", "editable"},
		values: [][]any{{int32(4), "OPEN", "Open", "#00ff00", true}},
	}}
	repo := NewStateChoices(db)

	choice, err := repo.Choice(context.Background(), 4)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, 4, choice.ID)
	assert.Equal(t, "OPEN", choice.Code)
	assert.Equal(t, "#00ff00", choice.Color)
	require.NotNil(t, choice.Editable)
	assert.True(t, *choice.Editable)
	assert.Contains(t, db.queries[0], "WHERE id = $1")
	assert.Equal(t, []any{4}, db.args[0])

	missing, err := NewGroupChoices(&fakeDB{}).Choice(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindDuplicateItems(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{
		names: []string{"id", "date", "customer", "description", "state_code", "state_color", "item_description", "item_count", "item_quantity"},
		values: [][]any{
			{int32(12), nil, "ACME", "Roof", "OPEN", "#fff", "Screw", int64(2), nil},
			{int32(12), nil, "ACME", "Roof", "OPEN", "#fff", "Nail", int64(3), nil},
			{int32(15), nil, "Foo", "Door", "DONE", "#000", "Hinge", int64(2), nil},
		},
	}}

	records, err := NewCalculationItems(db).FindDuplicateItems(context.Background(), "customer", "desc")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, db.queries[0], "ORDER BY c.customer DESC, c.id DESC, LOWER(MIN(i.description))")

	first := records[0].(map[string]any)
	assert.Equal(t, "OPEN", first["state.code"])
	assert.Len(t, first["items"], 2)

	assert.Equal(t, 7, datatable.SumItems("items", "count")(records))
}

func TestFindEmptyItems(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{
		names: []string{"id", "item_description", "item_quantity", "item_price"},
		values: [][]any{
			{int32(3), "Paint", 0.0, 12.5},
		},
	}}

	records, err := NewCalculationItems(db).FindEmptyItems(context.Background(), "bogus", "asc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, db.queries[0], "ORDER BY c.id DESC, i.description")
	assert.Equal(t, 1, datatable.CountItems("items")(records))
}

func TestReportOrder(t *testing.T) {
	tests := []struct {
		field, order, want string
	}{
		{"id", "asc", "c.id ASC"},
		{"date", "DESC", "c.date DESC, c.id DESC"},
		{"state.code", "asc", "s.code ASC, c.id DESC"},
		{"", "asc", "c.id DESC"},
	}
	for _, tt := range tests {
		if got := reportOrder(tt.field, tt.order); got != tt.want {
			t.Errorf("reportOrder(%q, %q) = %q, want %q", tt.field, tt.order, got, tt.want)
		}
	}
}

func TestSearchDocuments(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{
		names: []string{"id", "type", "field", "content"},
		values: [][]any{
			{int32(1), "product", "description", "Copper pipe"},
			{int32(2), "customer", "email", nil},
		},
	}}

	docs, err := SearchDocuments(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].ID)
	assert.Equal(t, "product", docs[0].Type)
	assert.Equal(t, "Copper pipe", docs[0].Content)
}
