package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
)

// Cookie suffixes of the per-table defaults.
const (
	limitCookie = "_limit"
	viewCookie  = "_view"
)

const cookieMaxAge = 365 * 24 * time.Hour

// parseDataQuery reads the table query from the URL parameters. Missing
// parameters are left at their zero value for ResolveQuery to fill.
func parseDataQuery(r *http.Request) (datatable.DataQuery, error) {
	values := r.URL.Query()
	p := intParser{values: values}

	query := datatable.DataQuery{
		Callback: isCallback(r),
		ID:       p.int("id"),
		View:     datatable.View(values.Get("view")),
		Offset:   p.int("offset"),
		Limit:    p.int("limit"),
		Search:   values.Get("search"),
		Sort:     values.Get("sort"),
		Order:    values.Get("order"),
		CustomData: datatable.CustomData{
			GroupID:       p.int("groupId"),
			CategoryID:    p.int("categoryId"),
			StateID:       p.int("stateId"),
			StateEditable: datatable.Editable(p.int("stateEditable")),
			Level:         values.Get("level"),
			Channel:       values.Get("channel"),
			Entity:        values.Get("entity"),
			Type:          values.Get("type"),
		},
	}
	// NoLimit is reserved for server-side callers.
	if query.Limit < 0 {
		p.errs = append(p.errs, fmt.Sprintf("limit (%d) must not be negative", query.Limit))
	}
	if len(p.errs) > 0 {
		return query, fmt.Errorf("%w: %s", datatable.ErrInvalidQuery, strings.Join(p.errs, "; "))
	}
	return query, nil
}

// isCallback reports whether the client asks for a partial refresh.
func isCallback(r *http.Request) bool {
	if v := r.URL.Query().Get("callback"); v != "" {
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// intParser collects the integer parse failures.
type intParser struct {
	values url.Values
	errs   []string
}

func (p *intParser) int(name string) int {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return 0
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s (%q) is not a number", name, raw))
		return 0
	}
	return i
}

// queryDefaults returns the defaults of table name: the cookies saved by
// previous responses, then the configured page size.
func (s *Server) queryDefaults(r *http.Request, name string) datatable.QueryDefaults {
	d := datatable.QueryDefaults{Limit: s.cfg.Table.DefaultLimit}

	if c, err := r.Cookie(name + limitCookie); err == nil {
		if limit, err := strconv.Atoi(c.Value); err == nil && limit > 0 {
			d.Limit = limit
		}
	}
	if c, err := r.Cookie(name + viewCookie); err == nil {
		if view, ok := datatable.ParseView(c.Value); ok {
			d.View = view
		}
	}
	return d
}

// saveDefaults stores the page size and view of query for the next visit.
func saveDefaults(w http.ResponseWriter, name string, query datatable.DataQuery) {
	http.SetCookie(w, &http.Cookie{
		Name:     name + limitCookie,
		Value:    strconv.Itoa(query.Limit),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     name + viewCookie,
		Value:    string(query.View),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
