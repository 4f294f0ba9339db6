package tables

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/quotedesk/internal/access"
	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/search"
)

func init() {
	Register(Definition{
		Info:    Info{Name: "search", Group: GroupSystem, Label: "search.title"},
		Factory: NewSearchTable,
	})
}

const entitiesKey = "entities"

// contentFormatters formats the content of a hit by "type.field".
var contentFormatters = map[string]datatable.Formatter{
	"calculation.id":           datatable.FormatID,
	"calculation.overallTotal": datatable.FormatAmount,
	"product.price":            datatable.FormatAmount,
}

// searchSortKeys lists, per sortable field, the comparison keys in
// priority order.
var searchSortKeys = map[string][]string{
	"content":    {"content", "entityName", "fieldName"},
	"entityName": {"entityName", "fieldName", "content"},
	"fieldName":  {"fieldName", "entityName", "content"},
}

// NewSearchTable lists the full-text search hits across entities.
func NewSearchTable(d Deps) (*datatable.Table, error) {
	source := NewSearchSource(d.Search, d.translator(), d.Checker, d.searchMinLength())
	return datatable.New("search", source, columns(d, "search", nil), options(d)...)
}

// SearchSource serves the hits of the search service.
type SearchSource struct {
	searcher  Searcher
	tr        Translator
	checker   access.Checker
	minLength int
}

// NewSearchSource creates a source over searcher. Terms shorter than
// minLength characters are not searched. A nil checker grants nothing.
func NewSearchSource(searcher Searcher, tr Translator, checker access.Checker, minLength int) *SearchSource {
	if tr == nil {
		tr = plainTranslator{}
	}
	return &SearchSource{searcher: searcher, tr: tr, checker: checker, minLength: minLength}
}

// Fetch searches the term, then translates, sorts and pages the hits.
func (s *SearchSource) Fetch(ctx context.Context, query datatable.DataQuery, columns []*datatable.Column) (*datatable.Page, error) {
	page := &datatable.Page{CustomData: map[string]any{}}
	if !query.Callback && s.searcher != nil {
		page.CustomData[entitiesKey] = s.entities()
	}

	if s.searcher == nil || utf8.RuneCountInString(query.Search) < s.minLength {
		return page, nil
	}

	hits, err := s.searcher.Search(ctx, query.Search, query.CustomData.Entity, datatable.NoLimit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query.Search, err)
	}

	rows := make([]map[string]any, len(hits))
	for i, hit := range hits {
		rows[i] = s.row(hit)
	}
	s.sort(rows, columns, query)

	records := make([]any, len(rows))
	for i, row := range rows {
		records[i] = row
	}
	page.Records = datatable.SlicePage(records, query.Offset, query.Limit)
	page.Total = len(rows)
	page.Filtered = len(rows)
	return page, nil
}

// entities maps each indexed type to its translated name.
func (s *SearchSource) entities() map[string]string {
	types := s.searcher.Types()
	result := make(map[string]string, len(types))
	for _, t := range types {
		result[t] = s.tr.Trans(t+".name", nil)
	}
	return result
}

func (s *SearchSource) row(hit search.Hit) map[string]any {
	content := hit.Content
	if f, ok := contentFormatters[hit.Type+"."+hit.Field]; ok {
		content = f(hit.Content, nil)
	}
	return map[string]any{
		"id":          hit.ID,
		"type":        hit.Type,
		"field":       hit.Field,
		"entityName":  s.tr.Trans(hit.Type+".name", nil),
		"fieldName":   s.tr.Trans(hit.Type+".fields."+hit.Field, nil),
		"content":     content,
		"allowShow":   s.isGranted(access.ActionShow, hit.Type),
		"allowEdit":   s.isGranted(access.ActionEdit, hit.Type),
		"allowDelete": s.isGranted(access.ActionDelete, hit.Type),
	}
}

func (s *SearchSource) isGranted(action access.Action, entity string) bool {
	return s.checker != nil && s.checker.IsGranted(action, entity)
}

// sort orders rows by the requested column then two fixed tiebreaks.
func (s *SearchSource) sort(rows []map[string]any, columns []*datatable.Column, query datatable.DataQuery) {
	c := datatable.FindColumn(columns, query.Sort)
	if c == nil || !c.IsSortable() {
		return
	}
	keys, ok := searchSortKeys[c.Field()]
	if !ok {
		return
	}
	desc := query.Order == datatable.OrderDesc

	slices.SortStableFunc(rows, func(a, b map[string]any) int {
		for i, key := range keys {
			r := strings.Compare(
				strings.ToLower(datatable.Stringify(a[key])),
				strings.ToLower(datatable.Stringify(b[key])),
			)
			if r == 0 {
				continue
			}
			if i == 0 && desc {
				return -r
			}
			return r
		}
		return 0
	})
}
