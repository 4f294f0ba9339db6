package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/quotedesk/internal/access"
	"github.com/JonMunkholm/quotedesk/internal/datatable"
	"github.com/JonMunkholm/quotedesk/internal/logging"
	"github.com/JonMunkholm/quotedesk/internal/tables"
	mw "github.com/JonMunkholm/quotedesk/internal/web/middleware"
)

// TableGroup is one group of the table listing.
type TableGroup struct {
	Group  string        `json:"group"`
	Tables []tables.Info `json:"tables"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTables returns the registered tables by group, with the
// labels translated.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	groups := tables.Groups()
	result := make([]TableGroup, 0, len(groups))
	for _, group := range groups {
		defs := tables.ByGroup(group)
		infos := make([]tables.Info, 0, len(defs))
		for _, def := range defs {
			info := def.Info
			if s.deps.Translator != nil {
				info.Label = s.deps.Translator.Trans(info.Label, nil)
			}
			infos = append(infos, info)
		}
		result = append(result, TableGroup{Group: group, Tables: infos})
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleTable runs one data query against the named table. Callback
// requests get the rows and counts only; full requests also get the
// columns, the page list and the custom data, and save the page size and
// view for the next visit.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	if _, ok := tables.Get(name); !ok {
		respondError(w, r, fmt.Errorf("%w: %s", datatable.ErrUnknownTable, name))
		return
	}

	incoming, err := parseDataQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	query := datatable.ResolveQuery(incoming, s.queryDefaults(r, name))
	if err := query.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	role := mw.RoleFromContext(ctx)
	deps := s.deps
	deps.Checker = access.NewRoleChecker(role)

	table, err := tables.Create(name, deps)
	if err != nil {
		respondError(w, r, err)
		return
	}

	results, err := table.ProcessDataQuery(ctx, query)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Debug("table query",
		slog.String("table", name),
		slog.Int("total", results.TotalNotFiltered),
		slog.Int("filtered", results.Filtered),
		slog.Int("rows", len(results.Rows)),
		slog.Bool("callback", query.Callback),
	)

	if query.Callback {
		writeJSON(w, r, http.StatusOK, results)
		return
	}
	saveDefaults(w, name, query)
	writeJSON(w, r, http.StatusOK, results.Detail())
}
