// Package i18n translates message ids with golang.org/x/text.
//
// Messages are flat JSON files embedded from translations/, named
// "<domain>.<locale>.json". Placeholders are written "%name%" and filled
// from the params given to Trans.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultDomain is the domain used by Trans.
const DefaultDomain = "messages"

//go:embed translations/*.json
var translations embed.FS

// Translator resolves message ids for one locale. Unknown ids are returned
// unchanged.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for locale, falling back to the closest
// available language.
func New(locale string) (*Translator, error) {
	return NewFromFS(translations, "translations", locale)
}

// NewFromFS loads the message files found in dir of fsys.
func NewFromFS(fsys fs.FS, dir, locale string) (*Translator, error) {
	b, err := loadCatalog(fsys, dir)
	if err != nil {
		return nil, err
	}

	tags := b.Languages()
	if len(tags) == 0 {
		return nil, fmt.Errorf("no translations in %s", dir)
	}
	// English first so it is the matcher's fallback.
	sort.SliceStable(tags, func(i, j int) bool { return tags[i] == language.English })

	requested, err := language.Parse(locale)
	if err != nil {
		requested = language.English
	}
	_, index, _ := language.NewMatcher(tags).Match(requested)
	tag := tags[index]

	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}, nil
}

func loadCatalog(fsys fs.FS, dir string) (*catalog.Builder, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, file := range files {
		domain, locale, ok := splitName(path.Base(file))
		if !ok {
			return nil, fmt.Errorf("translation file %s: expected <domain>.<locale>.json", file)
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("translation file %s: %w", file, err)
		}

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		for id, msg := range messages {
			// Printer treats messages as format strings.
			if err := b.SetString(tag, key(domain, id), strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, fmt.Errorf("%s %s: %w", file, id, err)
			}
		}
	}
	return b, nil
}

func splitName(name string) (domain, locale string, ok bool) {
	parts := strings.Split(strings.TrimSuffix(name, ".json"), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func key(domain, id string) string {
	if domain == DefaultDomain {
		return id
	}
	return domain + "|" + id
}

// Locale returns the resolved language.
func (t *Translator) Locale() language.Tag { return t.tag }

// Trans translates id in the default domain.
func (t *Translator) Trans(id string, params map[string]string) string {
	return t.TransDomain(DefaultDomain, id, params)
}

// TransDomain translates id in domain, replacing "%name%" placeholders.
func (t *Translator) TransDomain(domain, id string, params map[string]string) string {
	msg := id
	if !strings.Contains(id, "%") {
		if translated := t.printer.Sprintf(key(domain, id)); translated != key(domain, id) {
			msg = translated
		}
	}
	if len(params) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		name = strings.Trim(name, "%")
		pairs = append(pairs, "%"+name+"%", value)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Title title-cases s for the translator language ("warning" -> "Warning").
func (t *Translator) Title(s string) string {
	// Casers keep state and cannot be shared.
	return cases.Title(t.tag).String(strings.ToLower(s))
}
