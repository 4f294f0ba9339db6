// Package search is the full-text search service behind the Search table.
//
// Entity texts exported by the repositories are kept in an in-memory bleve
// index. A search matches every word of the term as a substring of the
// indexed content, optionally restricted to one entity type.
package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/JonMunkholm/quotedesk/internal/logging"
)

// Document is one searchable text of an entity.
type Document struct {
	ID      int
	Type    string
	Field   string
	Content string
}

// Key returns the index document id.
func (d Document) Key() string {
	return d.Type + "." + d.Field + "." + strconv.Itoa(d.ID)
}

// Hit is a search result.
type Hit = Document

// Loader supplies the documents of a rebuild.
type Loader func(ctx context.Context) ([]Document, error)

// Index is a rebuildable in-memory search index. It is safe for concurrent
// use.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	types []string
}

// NewIndex returns an empty index.
func NewIndex() (*Index, error) {
	idx, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Index{index: idx}, nil
}

// contentAnalyzer keeps the whole content as one lowercased term, so the
// wildcard of each searched word can span spaces and punctuation.
const contentAnalyzer = "content_lower"

func newMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()
	if err := m.AddCustomAnalyzer(contentAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register content analyzer: %w", err)
	}

	keyword := bleve.NewKeywordFieldMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = contentAnalyzer

	id := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("type", keyword)
	doc.AddFieldMappingsAt("field", keyword)
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("entityId", id)

	m.DefaultMapping = doc
	return m, nil
}

// newMemIndex creates an empty in-memory index.
func newMemIndex() (bleve.Index, error) {
	m, err := newMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return idx, nil
}

// Rebuild replaces the index content with the documents of load.
func (x *Index) Rebuild(ctx context.Context, load Loader) error {
	docs, err := load(ctx)
	if err != nil {
		return fmt.Errorf("load search documents: %w", err)
	}

	idx, err := newMemIndex()
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	seen := map[string]bool{}
	for _, d := range docs {
		if err := batch.Index(d.Key(), map[string]any{
			"type":     d.Type,
			"field":    d.Field,
			"content":  d.Content,
			"entityId": float64(d.ID),
		}); err != nil {
			return fmt.Errorf("index %s: %w", d.Key(), err)
		}
		seen[d.Type] = true
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("index search documents: %w", err)
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	x.mu.Lock()
	old := x.index
	x.index = idx
	x.types = types
	x.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	logging.Channel(ctx, "search").Info("search index rebuilt",
		"documents", len(docs),
		"types", len(types),
	)
	return nil
}

// Types returns the entity types present in the index.
func (x *Index) Types() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.types...)
}

// Search returns the documents whose content contains every word of term.
// entity restricts the type when non-empty. A limit below one returns all
// matches.
func (x *Index) Search(ctx context.Context, term, entity string, limit int) ([]Hit, error) {
	words := strings.Fields(strings.ToLower(term))
	conjuncts := make([]query.Query, 0, len(words)+1)
	for _, w := range words {
		w = strings.NewReplacer("*", "", "?", "", `\`, "").Replace(w)
		if w == "" {
			continue
		}
		q := bleve.NewWildcardQuery("*" + w + "*")
		q.SetField("content")
		conjuncts = append(conjuncts, q)
	}
	if len(conjuncts) == 0 {
		return nil, nil
	}
	if entity != "" {
		q := bleve.NewTermQuery(entity)
		q.SetField("type")
		conjuncts = append(conjuncts, q)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	size := limit
	if size < 1 {
		n, err := x.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("count search documents: %w", err)
		}
		size = int(n)
	}
	if size == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), size, 0, false)
	req.Fields = []string{"type", "field", "content", "entityId"}

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{
			Type:    fieldString(h.Fields, "type"),
			Field:   fieldString(h.Fields, "field"),
			Content: fieldString(h.Fields, "content"),
		}
		if id, ok := h.Fields["entityId"].(float64); ok {
			hit.ID = int(id)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

func fieldString(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}
