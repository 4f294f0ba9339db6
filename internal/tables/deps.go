// Package tables holds the concrete tables served by the application.
// Each table registers a factory at init time; a fresh instance is built
// per request from the shared Deps.
package tables

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/JonMunkholm/quotedesk/internal/access"
	"github.com/JonMunkholm/quotedesk/internal/applog"
	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/repository"
	"github.com/JonMunkholm/quotedesk/internal/search"
)

//go:embed columns/*.json
var columnFiles embed.FS

// ColumnFS holds the column definition files, one "<table>.json" each.
var ColumnFS fs.FS = mustSub(columnFiles, "columns")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Translator translates column titles and search labels.
type Translator interface {
	datatable.Translator
	TransDomain(domain, id string, params map[string]string) string
	Title(s string) string
}

// Searcher is the full-text search service.
type Searcher interface {
	Search(ctx context.Context, term, entity string, limit int) ([]search.Hit, error)
	Types() []string
}

// LogReader reads the application log file.
type LogReader interface {
	Read(ctx context.Context) (*applog.File, error)
}

// ItemsReports computes the calculation item reports.
type ItemsReports interface {
	FindDuplicateItems(ctx context.Context, sortField, order string) ([]any, error)
	FindEmptyItems(ctx context.Context, sortField, order string) ([]any, error)
}

// Deps are the collaborators shared by all tables.
type Deps struct {
	DB         repository.DBTX
	Reports    ItemsReports
	Translator Translator
	Checker    access.Checker
	Search     Searcher
	Logs       LogReader
	// Formatters extend the built-in field formatters.
	Formatters datatable.Formatters
	PageList   []int
	// MinMargin is the threshold of the CalculationBelow table.
	MinMargin float64
	// SearchMinLength is the shortest term sent to the search service.
	SearchMinLength int
}

const (
	defaultMinMargin       = 1.1
	defaultSearchMinLength = 2
)

func (d Deps) translator() Translator {
	if d.Translator == nil {
		return plainTranslator{}
	}
	return d.Translator
}

func (d Deps) reports() ItemsReports {
	if d.Reports == nil && d.DB != nil {
		return repository.NewCalculationItems(d.DB)
	}
	return d.Reports
}

func (d Deps) minMargin() float64 {
	if d.MinMargin <= 0 {
		return defaultMinMargin
	}
	return d.MinMargin
}

func (d Deps) searchMinLength() int {
	if d.SearchMinLength < 1 {
		return defaultSearchMinLength
	}
	return d.SearchMinLength
}

// plainTranslator returns ids untouched.
type plainTranslator struct{}

func (plainTranslator) Trans(id string, _ map[string]string) string { return id }

func (plainTranslator) TransDomain(_, id string, _ map[string]string) string { return id }

func (plainTranslator) Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// columns returns the factory of the "<file>.json" definitions, with the
// built-in formatters extended by extra and by d.Formatters.
func columns(d Deps, file string, extra datatable.Formatters) datatable.ColumnFactory {
	registry := datatable.DefaultFormatters().With(extra).With(d.Formatters)
	return datatable.DefinitionColumns(ColumnFS, file, registry, d.translator())
}

// options prepends the configured page list to opts.
func options(d Deps, opts ...datatable.Option) []datatable.Option {
	return append([]datatable.Option{datatable.WithPageList(d.PageList)}, opts...)
}

// entityRepository binds an entity to the database.
func entityRepository(d Deps, e repository.Entity) *repository.EntityRepository {
	return repository.NewEntityRepository(d.DB, e)
}
