package search

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocuments() []Document {
	return []Document{
		{ID: 1, Type: "product", Field: "description", Content: "Copper pipe 15mm"},
		{ID: 2, Type: "product", Field: "description", Content: "Steel pipe"},
		{ID: 2, Type: "product", Field: "supplier", Content: "Pipemaster Ltd"},
		{ID: 7, Type: "customer", Field: "company", Content: "Copperfield Plumbing"},
		{ID: 9, Type: "task", Field: "name", Content: "Install boiler"},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.Rebuild(context.Background(), func(context.Context) ([]Document, error) {
		return testDocuments(), nil
	}))
	return idx
}

func keys(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Key()
	}
	sort.Strings(out)
	return out
}

func TestSearchSubstring(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "PIPE", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"product.description.1",
		"product.description.2",
		"product.supplier.2",
	}, keys(hits))
}

func TestSearchAllWords(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "copper pip", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].ID)
	assert.Equal(t, "Copper pipe 15mm", hits[0].Content)
}

func TestSearchEntity(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "copper", "customer", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer.company.7"}, keys(hits))
}

func TestSearchLimit(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "pipe", "", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchEmptyTerm(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "  * ", "", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTypes(t *testing.T) {
	idx := newTestIndex(t)
	assert.Equal(t, []string{"customer", "product", "task"}, idx.Types())
}

func TestRebuildReplacesContent(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Rebuild(context.Background(), func(context.Context) ([]Document, error) {
		return []Document{{ID: 3, Type: "group", Field: "code", Content: "Sanitary"}}, nil
	}))

	hits, err := idx.Search(context.Background(), "pipe", "", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, []string{"group"}, idx.Types())
}

func TestRebuildLoaderError(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)

	loadErr := errors.New("connection refused")
	err = idx.Rebuild(context.Background(), func(context.Context) ([]Document, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)

	hits, err := idx.Search(context.Background(), "pipe", "", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchAcrossPunctuationAndStopWords(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	require.NoError(t, idx.Rebuild(context.Background(), func(context.Context) ([]Document, error) {
		return []Document{
			{ID: 1, Type: "product", Field: "description", Content: "Nuts and bolts"},
			{ID: 2, Type: "product", Field: "code", Content: "AB-1234"},
			{ID: 3, Type: "customer", Field: "email", Content: "john.doe@example.com"},
			{ID: 4, Type: "calculation", Field: "overallTotal", Content: "1234.50"},
		}, nil
	}))

	tests := []struct {
		term string
		want []string
	}{
		{"and", []string{"product.description.1"}},
		{"ts and bo", []string{"product.description.1"}},
		{"bolts", []string{"product.description.1"}},
		{"b-12", []string{"product.code.2"}},
		{"DOE@EXA", []string{"customer.email.3"}},
		{"4.5", []string{"calculation.overallTotal.4"}},
		{"1234", []string{"calculation.overallTotal.4", "product.code.2"}},
		{"nuts washers", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			hits, err := idx.Search(context.Background(), tt.term, "", 0)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, keys(hits), "Search(%q)", tt.term)
		})
	}
}
