package tables

import (
	"context"
	"errors"

	"github.com/Velocidex/ordereddict"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/quotedesk/internal/access"
	"github.com/JonMunkholm/quotedesk/internal/applog"
	"github.com/JonMunkholm/quotedesk/internal/search"
)

// emptyRows is a pgx.Rows without rows.
type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(...any) error                            { return errors.New("no rows") }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

type countRow struct{ n int64 }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.n
	return nil
}

// fakeDB records statements; counts reply with count, queries with no
// rows.
type fakeDB struct {
	count   int64
	queries []string
	args    [][]any
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return emptyRows{}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	return countRow{n: db.count}
}

type fakeLogs struct {
	file *applog.File
	err  error
}

func (l fakeLogs) Read(context.Context) (*applog.File, error) {
	return l.file, l.err
}

type fakeSearcher struct {
	hits  []search.Hit
	types []string
	calls int
	last  string
}

func (s *fakeSearcher) Search(_ context.Context, term, entity string, _ int) ([]search.Hit, error) {
	s.calls++
	s.last = term
	var hits []search.Hit
	for _, h := range s.hits {
		if entity == "" || h.Type == entity {
			hits = append(hits, h)
		}
	}
	return hits, nil
}

func (s *fakeSearcher) Types() []string { return s.types }

type fakeReports struct {
	duplicates []any
	empties    []any
}

func (r fakeReports) FindDuplicateItems(context.Context, string, string) ([]any, error) {
	return r.duplicates, nil
}

func (r fakeReports) FindEmptyItems(context.Context, string, string) ([]any, error) {
	return r.empties, nil
}

// readOnly grants show only.
type readOnly struct{}

func (readOnly) IsGranted(action access.Action, _ string) bool {
	return action == access.ActionShow
}

func cell(row *ordereddict.Dict, key string) string {
	v, _ := row.GetString(key)
	return v
}
