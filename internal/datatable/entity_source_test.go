package datatable

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/quotedesk/internal/sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	counts   []int
	rows     []map[string]any
	fetchErr error

	countSQL []string
	fetchSQL string
	args     []any
}

func (r *fakeRepository) NewQuery() *sqlbuilder.Builder {
	return sqlbuilder.Select("p.id", "p.description", "p.price").From("product p")
}

func (r *fakeRepository) SearchFields(field string) []string {
	switch field {
	case "nameAndCompany":
		return []string{"c.company", "c.last_name"}
	case "description":
		return []string{"p.description"}
	}
	return nil
}

func (r *fakeRepository) SortField(field string) string {
	switch field {
	case "id", "description", "price":
		return "p." + field
	}
	return ""
}

func (r *fakeRepository) Count(_ context.Context, b *sqlbuilder.Builder) (int, error) {
	query, _ := b.SQL()
	r.countSQL = append(r.countSQL, query)
	n := r.counts[0]
	r.counts = r.counts[1:]
	return n, nil
}

func (r *fakeRepository) Fetch(_ context.Context, b *sqlbuilder.Builder) ([]map[string]any, error) {
	r.fetchSQL, r.args = b.SQL()
	return r.rows, r.fetchErr
}

func productColumns() []*Column {
	return []*Column{
		NewColumn("id").SetVisible(false),
		NewColumn("description").SetDefault(true),
		NewColumn("price").SetSearchable(false),
		NewActionColumn(),
	}
}

func TestEntitySourceWithoutSearch(t *testing.T) {
	repo := &fakeRepository{counts: []int{42}, rows: []map[string]any{{"id": 1}}}
	src := NewEntitySource(repo, WithDefaultOrder(OrderField{Field: "id", Order: OrderAsc}))

	page, err := src.Fetch(context.Background(), DataQuery{Limit: 10, Offset: 20, Sort: "description", Order: OrderDesc}, productColumns())
	require.NoError(t, err)

	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 42, page.Filtered)
	assert.Len(t, repo.countSQL, 1, "filtered count reuses the total")
	assert.Equal(t, "SELECT COUNT(*) FROM product p", repo.countSQL[0])
	assert.Equal(t,
		"SELECT p.id, p.description, p.price FROM product p ORDER BY p.description DESC, p.id ASC LIMIT $1 OFFSET $2",
		repo.fetchSQL)
	assert.Equal(t, []any{10, 20}, repo.args)
	assert.Len(t, page.Records, 1)
}

func TestEntitySourceSearch(t *testing.T) {
	repo := &fakeRepository{counts: []int{42, 3}}
	columns := append([]*Column{NewColumn("nameAndCompany")}, productColumns()...)
	src := NewEntitySource(repo)

	page, err := src.Fetch(context.Background(), DataQuery{Limit: 10, Search: "50%", Sort: "price", Order: OrderAsc}, columns)
	require.NoError(t, err)

	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 3, page.Filtered)
	require.Len(t, repo.countSQL, 2)
	assert.Equal(t,
		"SELECT COUNT(*) FROM product p WHERE (CAST(c.company AS TEXT) ILIKE $1 OR CAST(c.last_name AS TEXT) ILIKE $2 OR CAST(p.description AS TEXT) ILIKE $3)",
		repo.countSQL[1])
	assert.Equal(t, `%50\%%`, repo.args[0])
	assert.Contains(t, repo.fetchSQL, "ORDER BY p.price ASC")
}

func TestEntitySourceScopeAndFilter(t *testing.T) {
	repo := &fakeRepository{counts: []int{7, 2}}
	src := NewEntitySource(repo,
		WithScope(func(_ context.Context, b *sqlbuilder.Builder, _ DataQuery) error {
			b.Where("p.price < ?", 100)
			return nil
		}),
		WithFilter(func(_ context.Context, b *sqlbuilder.Builder, q DataQuery) error {
			if q.CustomData.GroupID > 0 {
				b.Where("p.group_id = ?", q.CustomData.GroupID)
			}
			return nil
		}),
	)

	page, err := src.Fetch(context.Background(), DataQuery{Limit: 10, CustomData: CustomData{GroupID: 5}}, productColumns())
	require.NoError(t, err)

	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.Filtered)
	assert.Equal(t, "SELECT COUNT(*) FROM product p WHERE p.price < $1", repo.countSQL[0])
	assert.Equal(t, "SELECT COUNT(*) FROM product p WHERE p.price < $1 AND p.group_id = $2", repo.countSQL[1])
}

func TestEntitySourceUnknownSortFallsBack(t *testing.T) {
	repo := &fakeRepository{counts: []int{1}}
	src := NewEntitySource(repo, WithDefaultOrder(OrderField{Field: "description", Order: OrderDesc}))

	_, err := src.Fetch(context.Background(), DataQuery{Limit: NoLimit, Sort: "bogus", Order: OrderAsc}, productColumns())
	require.NoError(t, err)

	assert.Equal(t, "SELECT p.id, p.description, p.price FROM product p ORDER BY p.description ASC", repo.fetchSQL)
}

func TestEntitySourceFetchError(t *testing.T) {
	storeErr := errors.New("ERROR: column p.bogus does not exist")
	repo := &fakeRepository{counts: []int{1}, fetchErr: storeErr}

	_, err := NewEntitySource(repo).Fetch(context.Background(), DataQuery{Limit: 10}, productColumns())
	assert.ErrorIs(t, err, storeErr)
}

type fakeChoices struct {
	choices []Choice
	calls   int
}

func (f *fakeChoices) Choice(_ context.Context, id int) (*Choice, error) {
	for i := range f.choices {
		if f.choices[i].ID == id {
			return &f.choices[i], nil
		}
	}
	return nil, nil
}

func (f *fakeChoices) Choices(context.Context) ([]Choice, error) {
	f.calls++
	return f.choices, nil
}

func TestCategoryFilter(t *testing.T) {
	lookup := &fakeChoices{choices: []Choice{{ID: 1, Code: "Hardware"}, {ID: 2, Code: "Software"}}}

	t.Run("known category", func(t *testing.T) {
		repo := &fakeRepository{counts: []int{10, 4}}
		src := NewEntitySource(repo, WithCategoryFilter("p.category_id", lookup))

		page, err := src.Fetch(context.Background(), DataQuery{Limit: 10, CustomData: CustomData{CategoryID: 2}}, productColumns())
		require.NoError(t, err)

		assert.Equal(t, 10, page.Total)
		assert.Equal(t, 4, page.Filtered)
		assert.Contains(t, repo.fetchSQL, "WHERE p.category_id = $1")
		assert.Equal(t, Choice{ID: 2, Code: "Software"}, page.CustomData["category"])
		assert.Len(t, page.CustomData["categories"], 2)
	})

	t.Run("unknown category is ignored", func(t *testing.T) {
		repo := &fakeRepository{counts: []int{10}}
		src := NewEntitySource(repo, WithCategoryFilter("p.category_id", lookup))

		page, err := src.Fetch(context.Background(), DataQuery{Limit: 10, CustomData: CustomData{CategoryID: 9}}, productColumns())
		require.NoError(t, err)

		assert.Equal(t, 10, page.Filtered)
		assert.NotContains(t, repo.fetchSQL, "category_id")
		assert.NotContains(t, page.CustomData, "category")
	})

	t.Run("callback skips drop-down", func(t *testing.T) {
		calls := lookup.calls
		repo := &fakeRepository{counts: []int{10, 4}}
		src := NewEntitySource(repo, WithCategoryFilter("p.category_id", lookup))

		page, err := src.Fetch(context.Background(), DataQuery{Callback: true, Limit: 10, CustomData: CustomData{CategoryID: 1}}, productColumns())
		require.NoError(t, err)

		assert.Equal(t, calls, lookup.calls)
		assert.Empty(t, page.CustomData)
	})
}
