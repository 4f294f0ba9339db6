package datatable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Translator resolves a message id to a localized string. Named
// placeholders are given without their surrounding percent signs.
type Translator interface {
	Trans(id string, params map[string]string) string
}

// identity returns message ids untouched.
type identity struct{}

func (identity) Trans(id string, _ map[string]string) string { return id }

// ColumnDefinition is one entry of a table's JSON column file.
// Unset flags default to true (visible, sortable, searchable).
type ColumnDefinition struct {
	Field          string `json:"field"`
	Alias          string `json:"alias,omitempty"`
	Title          string `json:"title,omitempty"`
	ClassName      string `json:"className,omitempty"`
	Order          string `json:"order,omitempty"`
	Visible        *bool  `json:"visible,omitempty"`
	Sortable       *bool  `json:"sortable,omitempty"`
	Searchable     *bool  `json:"searchable,omitempty"`
	Default        bool   `json:"default,omitempty"`
	CellFormatter  string `json:"cellFormatter,omitempty"`
	StyleFormatter string `json:"styleFormatter,omitempty"`
	FieldFormatter string `json:"fieldFormatter,omitempty"`
}

// ParseColumnDefinitions decodes a JSON column file. Unknown keys, entries
// without a field and empty arrays are rejected.
func ParseColumnDefinitions(data []byte) ([]ColumnDefinition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var defs []ColumnDefinition
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("%w: parse column definitions: %v", ErrInvalidConfiguration, err)
	}
	if len(defs) == 0 {
		return nil, ErrNoColumns
	}
	for i, d := range defs {
		if strings.TrimSpace(d.Field) == "" {
			return nil, fmt.Errorf("%w: column %d has no field", ErrInvalidConfiguration, i)
		}
	}
	return defs, nil
}

// LoadColumnDefinitions reads "<name>.json" from fsys.
func LoadColumnDefinitions(fsys fs.FS, name string) ([]ColumnDefinition, error) {
	file := path.Clean(name) + ".json"
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoColumns, file)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfiguration, file, err)
	}
	defs, err := ParseColumnDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return defs, nil
}

// BuildColumns turns definitions into columns, resolving field formatters
// against registry and translating titles. The action column is appended.
func BuildColumns(defs []ColumnDefinition, registry Formatters, tr Translator) ([]*Column, error) {
	if len(defs) == 0 {
		return nil, ErrNoColumns
	}
	if tr == nil {
		tr = identity{}
	}

	columns := make([]*Column, 0, len(defs)+1)
	for _, d := range defs {
		c := NewColumn(d.Field).
			SetAlias(d.Alias).
			SetClassName(d.ClassName).
			SetOrder(d.Order).
			SetDefault(d.Default).
			SetCellFormatter(d.CellFormatter).
			SetStyleFormatter(d.StyleFormatter)
		if d.Title != "" {
			c.SetTitle(tr.Trans(d.Title, nil))
		}
		if d.Visible != nil {
			c.SetVisible(*d.Visible)
		}
		if d.Sortable != nil {
			c.SetSortable(*d.Sortable)
		}
		if d.Searchable != nil {
			c.SetSearchable(*d.Searchable)
		}
		if d.FieldFormatter != "" {
			f, err := ResolveFormatter(Named(d.FieldFormatter), registry)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", d.Field, err)
			}
			c.SetFieldFormatter(f)
		}
		columns = append(columns, c)
	}

	return append(columns, NewActionColumn()), nil
}

// DefinitionColumns returns a ColumnFactory reading "<name>.json" from fsys.
func DefinitionColumns(fsys fs.FS, name string, registry Formatters, tr Translator) ColumnFactory {
	return func() ([]*Column, error) {
		defs, err := LoadColumnDefinitions(fsys, name)
		if err != nil {
			return nil, err
		}
		return BuildColumns(defs, registry, tr)
	}
}
