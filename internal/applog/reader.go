// Package applog reads the application log file written by the JSON log
// handler (see logging.Options.File).
//
// Each line is one JSON record. The keys "time", "level", "msg" and
// "channel" are recognized (Monolog-style "datetime", "level_name" and
// "message" as well); every other key is kept as context. Files ending in
// ".gz" are decompressed.
package applog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"github.com/JonMunkholm/quotedesk/internal/logging"
)

// ErrNoFile reports that no log file is configured or that it does not
// exist.
var ErrNoFile = errors.New("log file not found")

const maxLineSize = 1 << 20

// Entry is one log record.
type Entry struct {
	// ID is the 1-based line number of the record in the file.
	ID        int
	CreatedAt time.Time
	Channel   string
	Level     string
	Message   string
	Context   map[string]string
}

// Field exposes the entry to table row mapping.
func (e Entry) Field(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "createdAt":
		return e.CreatedAt, true
	case "channel":
		return e.Channel, true
	case "level":
		return e.Level, true
	case "message":
		return e.Message, true
	case "context":
		return e.Context, true
	}
	return nil, false
}

// File is a parsed log file.
type File struct {
	// Entries are sorted newest first.
	Entries []Entry
	// Levels and Channels are the distinct values observed, sorted.
	Levels   []string
	Channels []string
	// Skipped counts lines that could not be parsed.
	Skipped int
}

// Empty reports whether the file holds no entries.
func (f *File) Empty() bool {
	return f == nil || len(f.Entries) == 0
}

// Reader reads a log file from disk.
type Reader struct {
	path string
}

// NewReader creates a reader for path. An empty path means no log file.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the file path.
func (r *Reader) Path() string { return r.path }

// Read parses the whole file. It returns ErrNoFile when the file is not
// configured or missing.
func (r *Reader) Read(ctx context.Context) (*File, error) {
	if r.path == "" {
		return nil, ErrNoFile
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoFile, r.path)
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var in io.Reader = f
	if strings.HasSuffix(r.path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open compressed log file: %w", err)
		}
		defer zr.Close()
		in = zr
	}

	file, err := Parse(in)
	if err != nil {
		return nil, fmt.Errorf("read log file %s: %w", r.path, err)
	}
	if file.Skipped > 0 {
		logging.FromContext(ctx).Debug("skipped malformed log lines",
			"path", r.path,
			"skipped", file.Skipped,
		)
	}
	return file, nil
}

// Parse reads JSON-lines records from in. Blank lines are ignored and
// malformed ones counted as skipped.
func Parse(in io.Reader) (*File, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		p        fastjson.Parser
		file     = &File{}
		levels   = map[string]bool{}
		channels = map[string]bool{}
		line     int
	)

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		entry, err := parseEntry(&p, raw)
		if err != nil {
			file.Skipped++
			continue
		}
		entry.ID = line

		file.Entries = append(file.Entries, entry)
		levels[entry.Level] = true
		channels[entry.Channel] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Records are appended, so the newest is last.
	for i, j := 0, len(file.Entries)-1; i < j; i, j = i+1, j-1 {
		file.Entries[i], file.Entries[j] = file.Entries[j], file.Entries[i]
	}
	file.Levels = sortedKeys(levels)
	file.Channels = sortedKeys(channels)
	return file, nil
}

func parseEntry(p *fastjson.Parser, raw []byte) (Entry, error) {
	v, err := p.ParseBytes(raw)
	if err != nil {
		return Entry{}, err
	}
	obj, err := v.Object()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Context: map[string]string{}}
	var when string
	obj.Visit(func(key []byte, v *fastjson.Value) {
		switch k := string(key); k {
		case "time", "datetime", "timestamp":
			when = text(v)
		case "level", "level_name":
			entry.Level = strings.ToLower(text(v))
		case "msg", "message":
			entry.Message = text(v)
		case logging.ChannelKey:
			entry.Channel = strings.ToLower(text(v))
		default:
			entry.Context[k] = text(v)
		}
	})

	if when == "" {
		return Entry{}, errors.New("missing time")
	}
	entry.CreatedAt, err = dateparse.ParseAny(when)
	if err != nil {
		return Entry{}, fmt.Errorf("parse time %q: %w", when, err)
	}
	if entry.Level == "" {
		entry.Level = "info"
	}
	if entry.Channel == "" {
		entry.Channel = logging.DefaultChannel
	}
	return entry, nil
}

// text renders a value: strings unquoted, anything else as JSON.
func text(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		b, _ := v.StringBytes()
		return string(b)
	}
	return string(v.MarshalTo(nil))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
