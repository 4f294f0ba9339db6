package datatable

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperTranslator struct{}

func (upperTranslator) Trans(id string, _ map[string]string) string { return strings.ToUpper(id) }

func TestParseColumnDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantLen int
	}{
		{"valid", `[{"field":"id"},{"field":"code","default":true}]`, nil, 2},
		{"empty array", `[]`, ErrNoColumns, 0},
		{"unknown key", `[{"field":"id","bogus":1}]`, ErrInvalidConfiguration, 0},
		{"missing field", `[{"title":"x"}]`, ErrInvalidConfiguration, 0},
		{"malformed", `[{"field":`, ErrInvalidConfiguration, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := ParseColumnDefinitions([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseColumnDefinitions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Len(t, defs, tt.wantLen)
		})
	}
}

func TestLoadColumnDefinitionsMissingFile(t *testing.T) {
	_, err := LoadColumnDefinitions(fstest.MapFS{}, "product")
	assert.ErrorIs(t, err, ErrNoColumns)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestBuildColumns(t *testing.T) {
	fsys := fstest.MapFS{
		"product.json": {Data: []byte(`[
			{"field": "id", "title": "product.fields.id", "fieldFormatter": "formatId", "visible": false},
			{"field": "description", "title": "product.fields.description", "default": true},
			{"field": "price", "order": "DESC", "searchable": false, "className": "text-currency"}
		]`)},
	}

	columns, err := DefinitionColumns(fsys, "product", DefaultFormatters(), upperTranslator{})()
	require.NoError(t, err)
	require.Len(t, columns, 4)

	id := columns[0]
	assert.Equal(t, "PRODUCT.FIELDS.ID", id.Title())
	assert.False(t, id.IsVisible())
	assert.True(t, id.HasFieldFormatter())
	assert.Equal(t, "000003", id.FormatValue(3, nil))

	assert.True(t, columns[1].IsDefault())

	price := columns[2]
	assert.Equal(t, OrderDesc, price.Order())
	assert.False(t, price.IsSearchable())
	assert.True(t, price.IsSortable())
	assert.Equal(t, "text-currency", price.ClassName())

	assert.Equal(t, ActionAlias, columns[3].Alias())
}

func TestBuildColumnsUnknownFormatter(t *testing.T) {
	defs := []ColumnDefinition{{Field: "price", FieldFormatter: "formatPrice"}}

	_, err := BuildColumns(defs, DefaultFormatters(), nil)
	assert.ErrorIs(t, err, ErrFormatterNotFound)
	assert.Contains(t, err.Error(), `"price"`)
}
