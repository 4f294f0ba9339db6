package tables

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/JonMunkholm/quotedesk/internal/applog"
	"github.com/JonMunkholm/quotedesk/internal/datatable"
)

func init() {
	Register(Definition{
		Info:    Info{Name: "log", Group: GroupSystem, Label: "log.title"},
		Factory: NewLogTable,
	})
}

// Custom data keys of the log table.
const (
	levelsKey   = "levels"
	channelsKey = "channels"
)

const logDateField = "createdAt"

// NewLogTable lists the application log file, newest first.
func NewLogTable(d Deps) (*datatable.Table, error) {
	tr := d.translator()
	formatters := datatable.Formatters{
		"formatLevel":   titleFormatter(tr),
		"formatChannel": titleFormatter(tr),
	}
	return datatable.New("log", NewLogSource(d.Logs), columns(d, "log", formatters), options(d)...)
}

// LogSource serves the entries of the application log file.
type LogSource struct {
	reader LogReader
}

// NewLogSource creates a source over reader. A nil reader behaves as a
// missing file.
func NewLogSource(reader LogReader) *LogSource {
	return &LogSource{reader: reader}
}

// Fetch filters, sorts and pages the log entries. A missing or empty file
// yields a precondition-failed page rather than an error.
func (s *LogSource) Fetch(ctx context.Context, query datatable.DataQuery, columns []*datatable.Column) (*datatable.Page, error) {
	file, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if file.Empty() {
		return &datatable.Page{Status: datatable.StatusPreconditionFailed}, nil
	}

	entries := filterEntries(file.Entries, query)
	entries = sortEntries(entries, columns, query)

	records := make([]any, len(entries))
	for i, e := range entries {
		records[i] = e
	}

	page := &datatable.Page{
		Records:    datatable.SlicePage(records, query.Offset, query.Limit),
		Total:      len(file.Entries),
		Filtered:   len(entries),
		CustomData: map[string]any{},
	}
	if !query.Callback {
		page.CustomData[levelsKey] = file.Levels
		page.CustomData[channelsKey] = file.Channels
	}
	return page, nil
}

func (s *LogSource) read(ctx context.Context) (*applog.File, error) {
	if s.reader == nil {
		return nil, nil
	}
	file, err := s.reader.Read(ctx)
	if errors.Is(err, applog.ErrNoFile) {
		return nil, nil
	}
	return file, err
}

// filterEntries applies the level and channel filters, then the search
// term over channel, level, date and message.
func filterEntries(entries []applog.Entry, query datatable.DataQuery) []applog.Entry {
	level := strings.ToLower(query.CustomData.Level)
	channel := strings.ToLower(query.CustomData.Channel)
	term := strings.ToLower(query.Search)
	if level == "" && channel == "" && term == "" {
		return entries
	}

	result := make([]applog.Entry, 0, len(entries))
	for _, e := range entries {
		if level != "" && e.Level != level {
			continue
		}
		if channel != "" && e.Channel != channel {
			continue
		}
		if term != "" && !matchEntry(e, term) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matchEntry(e applog.Entry, term string) bool {
	return strings.Contains(e.Channel, term) ||
		strings.Contains(e.Level, term) ||
		strings.Contains(datatable.FormatDateTime(e.CreatedAt, nil), term) ||
		strings.Contains(strings.ToLower(e.Message), term)
}

// sortEntries orders a copy of entries. The file order (date descending)
// is kept as is.
func sortEntries(entries []applog.Entry, columns []*datatable.Column, query datatable.DataQuery) []applog.Entry {
	c := datatable.FindColumn(columns, query.Sort)
	if c == nil || !c.IsSortable() {
		return entries
	}
	field := c.Field()
	desc := query.Order == datatable.OrderDesc
	if field == logDateField && desc {
		return entries
	}

	sorted := slices.Clone(entries)
	if field == logDateField {
		slices.SortStableFunc(sorted, func(a, b applog.Entry) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b applog.Entry) int {
		r := compareEntryField(a, b, field)
		if desc {
			r = -r
		}
		if r != 0 {
			return r
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

func compareEntryField(a, b applog.Entry, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "channel":
		return strings.Compare(a.Channel, b.Channel)
	case "level":
		return strings.Compare(a.Level, b.Level)
	case "message":
		return strings.Compare(strings.ToLower(a.Message), strings.ToLower(b.Message))
	}
	return 0
}
