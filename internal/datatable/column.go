package datatable

import (
	"encoding/json"
	"strings"
)

// Sort directions accepted by columns and queries.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ActionAlias is the alias of the terminal action column.
const ActionAlias = "action"

// Column describes one display field of a table.
//
// Visibility gates both sorting and searching: a hidden column is never
// sortable nor searchable whatever its own flags say.
type Column struct {
	field          string
	alias          string
	title          string
	order          string
	className      string
	cellFormatter  string
	styleFormatter string
	visible        bool
	sortable       bool
	searchable     bool
	isDefault      bool
	formatter      Formatter
}

// NewColumn returns a visible, sortable and searchable column sorted
// ascending.
func NewColumn(field string) *Column {
	return &Column{
		field:      field,
		order:      OrderAsc,
		visible:    true,
		sortable:   true,
		searchable: true,
	}
}

// NewActionColumn returns the terminal action column appended to every
// table. It carries the row id.
func NewActionColumn() *Column {
	c := NewColumn("id")
	c.alias = ActionAlias
	c.title = ""
	c.className = "actions rowlink-skip d-print-none"
	c.cellFormatter = "formatActions"
	c.sortable = false
	c.searchable = false
	return c
}

// Field returns the source property path ("state.code").
func (c *Column) Field() string { return c.field }

// SetField sets the source property path.
func (c *Column) SetField(field string) *Column {
	c.field = field
	return c
}

// Alias returns the output key, falling back to the field.
func (c *Column) Alias() string {
	if c.alias != "" {
		return c.alias
	}
	return c.field
}

// SetAlias overrides the output key.
func (c *Column) SetAlias(alias string) *Column {
	c.alias = alias
	return c
}

// Title returns the (translated) label.
func (c *Column) Title() string { return c.title }

// SetTitle sets the label.
func (c *Column) SetTitle(title string) *Column {
	c.title = title
	return c
}

// Order returns the default sort direction, "asc" or "desc".
func (c *Column) Order() string { return c.order }

// SetOrder sets the default sort direction. Only "asc" and "desc" are
// accepted (case-insensitive); anything else leaves the order unchanged.
func (c *Column) SetOrder(order string) *Column {
	switch o := strings.ToLower(strings.TrimSpace(order)); o {
	case OrderAsc, OrderDesc:
		c.order = o
	}
	return c
}

// IsVisible reports whether the column is displayed.
func (c *Column) IsVisible() bool { return c.visible }

// SetVisible shows or hides the column.
func (c *Column) SetVisible(visible bool) *Column {
	c.visible = visible
	return c
}

// IsSortable reports whether the column can be sorted.
func (c *Column) IsSortable() bool { return c.visible && c.sortable }

// SetSortable sets the sortable flag.
func (c *Column) SetSortable(sortable bool) *Column {
	c.sortable = sortable
	return c
}

// IsSearchable reports whether the column takes part in free-text search.
func (c *Column) IsSearchable() bool { return c.visible && c.searchable }

// SetSearchable sets the searchable flag.
func (c *Column) SetSearchable(searchable bool) *Column {
	c.searchable = searchable
	return c
}

// IsDefault reports whether the column is the default sort column.
func (c *Column) IsDefault() bool { return c.isDefault }

// SetDefault sets the default sort flag.
func (c *Column) SetDefault(isDefault bool) *Column {
	c.isDefault = isDefault
	return c
}

// ClassName returns the CSS class hint.
func (c *Column) ClassName() string { return c.className }

// SetClassName sets the CSS class hint.
func (c *Column) SetClassName(className string) *Column {
	c.className = className
	return c
}

// CellFormatter returns the client-side rendering hint.
func (c *Column) CellFormatter() string { return c.cellFormatter }

// SetCellFormatter sets the client-side rendering hint.
func (c *Column) SetCellFormatter(name string) *Column {
	c.cellFormatter = name
	return c
}

// StyleFormatter returns the client-side style hint.
func (c *Column) StyleFormatter() string { return c.styleFormatter }

// SetStyleFormatter sets the client-side style hint.
func (c *Column) SetStyleFormatter(name string) *Column {
	c.styleFormatter = name
	return c
}

// HasFieldFormatter reports whether a server-side formatter is bound.
func (c *Column) HasFieldFormatter() bool { return c.formatter != nil }

// SetFieldFormatter binds a resolved server-side formatter.
func (c *Column) SetFieldFormatter(f Formatter) *Column {
	c.formatter = f
	return c
}

// FormatValue renders a raw value for this column. row is the record the
// value was read from.
func (c *Column) FormatValue(value any, row any) string {
	if c.formatter != nil {
		return c.formatter(value, row)
	}
	return Stringify(value)
}

// MarshalJSON exposes the metadata the client needs to build the grid.
func (c *Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Field          string `json:"field"`
		Alias          string `json:"alias"`
		Title          string `json:"title"`
		Order          string `json:"order"`
		ClassName      string `json:"className,omitempty"`
		CellFormatter  string `json:"cellFormatter,omitempty"`
		StyleFormatter string `json:"styleFormatter,omitempty"`
		Visible        bool   `json:"visible"`
		Sortable       bool   `json:"sortable"`
		Searchable     bool   `json:"searchable"`
		Default        bool   `json:"default"`
	}{
		Field:          c.field,
		Alias:          c.Alias(),
		Title:          c.title,
		Order:          c.order,
		ClassName:      c.className,
		CellFormatter:  c.cellFormatter,
		StyleFormatter: c.styleFormatter,
		Visible:        c.visible,
		Sortable:       c.IsSortable(),
		Searchable:     c.IsSearchable(),
		Default:        c.isDefault,
	})
}

// FindColumn returns the column whose alias, or failing that field, equals
// name. Returns nil if none matches.
func FindColumn(columns []*Column, name string) *Column {
	if name == "" {
		return nil
	}
	for _, c := range columns {
		if c.Alias() == name {
			return c
		}
	}
	for _, c := range columns {
		if c.field == name {
			return c
		}
	}
	return nil
}

// DefaultColumn returns the first column flagged default, else the first
// visible column, else nil.
func DefaultColumn(columns []*Column) *Column {
	for _, c := range columns {
		if c.isDefault {
			return c
		}
	}
	for _, c := range columns {
		if c.visible {
			return c
		}
	}
	return nil
}
