package datatable

import (
	"fmt"
	"strings"
)

// NoLimit disables paging.
const NoLimit = -1

// View is the presentation mode requested by the client.
type View string

const (
	ViewTable  View = "table"
	ViewCustom View = "custom"
	ViewCard   View = "card"
)

// ParseView returns the view for s, or false if s is not a known view.
func ParseView(s string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewTable, ViewCustom, ViewCard:
		return v, true
	}
	return "", false
}

// Editable is a tri-state filter on the calculation state "editable" flag.
type Editable int

const (
	EditableAny Editable = 0
	EditableYes Editable = 1
	EditableNo  Editable = -1
)

// CustomData holds the table-specific filters. Zero values mean "not set".
type CustomData struct {
	GroupID       int      `json:"groupId,omitempty"`
	CategoryID    int      `json:"categoryId,omitempty"`
	StateID       int      `json:"stateId,omitempty"`
	StateEditable Editable `json:"stateEditable,omitempty"`
	Level         string   `json:"level,omitempty"`
	Channel       string   `json:"channel,omitempty"`
	Entity        string   `json:"entity,omitempty"`
	Type          string   `json:"type,omitempty"`
}

// DataQuery is a normalized request for one page of table data.
type DataQuery struct {
	// Callback marks a partial refresh that only needs rows and counts.
	Callback   bool
	ID         int
	View       View
	Offset     int
	Limit      int
	Search     string
	Sort       string
	Order      string
	CustomData CustomData
}

// Page returns the 1-based page number.
func (q DataQuery) Page() int {
	if q.Limit < 1 {
		return 1
	}
	return 1 + q.Offset/q.Limit
}

// Validate checks the numeric ranges and the sort order.
func (q DataQuery) Validate() error {
	var errs []string

	if q.Offset < 0 {
		errs = append(errs, fmt.Sprintf("offset (%d) must be non-negative", q.Offset))
	}
	if q.Limit < 1 && q.Limit != NoLimit {
		errs = append(errs, fmt.Sprintf("limit (%d) must be positive", q.Limit))
	}
	if q.ID < 0 {
		errs = append(errs, fmt.Sprintf("id (%d) must be non-negative", q.ID))
	}
	if q.Order != OrderAsc && q.Order != OrderDesc {
		errs = append(errs, fmt.Sprintf("order (%q) must be asc or desc", q.Order))
	}
	if q.View != "" {
		if _, ok := ParseView(string(q.View)); !ok {
			errs = append(errs, fmt.Sprintf("view (%q) is unknown", q.View))
		}
	}

	cd := q.CustomData
	if cd.GroupID < 0 || cd.CategoryID < 0 || cd.StateID < 0 {
		errs = append(errs, "filter ids must be non-negative")
	}
	if cd.StateEditable < EditableNo || cd.StateEditable > EditableYes {
		errs = append(errs, fmt.Sprintf("state editable (%d) must be -1, 0 or 1", cd.StateEditable))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(errs, "; "))
	}
	return nil
}

// QueryDefaults are the caller-side defaults (cookies, session) applied to
// an incoming query.
type QueryDefaults struct {
	Limit int
	View  View
	Order string
}

// ResolveQuery fills the unset parts of in from d. It returns a new value
// and never touches in; the resolved query is what crosses into a table.
func ResolveQuery(in DataQuery, d QueryDefaults) DataQuery {
	out := in
	out.Search = strings.TrimSpace(in.Search)
	out.Sort = strings.TrimSpace(in.Sort)

	if out.Limit == 0 {
		out.Limit = d.Limit
	}
	if out.Limit == 0 {
		out.Limit = DefaultPageList[0]
	}
	if out.Offset < 0 {
		out.Offset = 0
	}

	if v, ok := ParseView(string(out.View)); ok {
		out.View = v
	} else if d.View != "" {
		out.View = d.View
	} else {
		out.View = ViewTable
	}

	switch o := strings.ToLower(strings.TrimSpace(out.Order)); o {
	case OrderAsc, OrderDesc:
		out.Order = o
	default:
		out.Order = OrderAsc
		if d.Order == OrderDesc {
			out.Order = OrderDesc
		}
	}
	return out
}

// Params returns the query-derived parameters echoed in the results.
func (q DataQuery) Params() map[string]any {
	params := map[string]any{
		"offset": q.Offset,
		"limit":  q.Limit,
		"page":   q.Page(),
		"view":   string(q.View),
		"order":  q.Order,
	}
	if q.ID > 0 {
		params["id"] = q.ID
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	if q.Sort != "" {
		params["sort"] = q.Sort
	}

	cd := q.CustomData
	if cd.GroupID > 0 {
		params["groupId"] = cd.GroupID
	}
	if cd.CategoryID > 0 {
		params["categoryId"] = cd.CategoryID
	}
	if cd.StateID > 0 {
		params["stateId"] = cd.StateID
	}
	if cd.StateEditable != EditableAny {
		params["stateEditable"] = int(cd.StateEditable)
	}
	if cd.Level != "" {
		params["level"] = cd.Level
	}
	if cd.Channel != "" {
		params["channel"] = cd.Channel
	}
	if cd.Entity != "" {
		params["entity"] = cd.Entity
	}
	if cd.Type != "" {
		params["type"] = cd.Type
	}
	return params
}
