package config

import (
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/quotedesk/internal/access"
)

// LookupFunc returns the value of a variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup. An empty value counts
// as unset, so the default or the alternate name applies.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envSpec is the parsed env, envAlt, default and required tags of a field.
type envSpec struct {
	names    []string
	fallback string
	required bool
}

func specOf(field reflect.StructField) (envSpec, bool) {
	name := field.Tag.Get("env")
	if name == "" {
		return envSpec{}, false
	}
	spec := envSpec{
		names:    []string{name},
		fallback: field.Tag.Get("default"),
		required: field.Tag.Get("required") == "true",
	}
	if alt := field.Tag.Get("envAlt"); alt != "" {
		spec.names = append(spec.names, alt)
	}
	return spec, true
}

// resolve returns the first non-empty variable, else the default. ok is
// false when nothing applies.
func (s envSpec) resolve(lookup LookupFunc) (value string, ok bool, err error) {
	for _, name := range s.names {
		if v, found := lookup(name); found && v != "" {
			return v, true, nil
		}
	}
	if s.required {
		return "", false, fmt.Errorf("required environment variable %s is not set", s.names[0])
	}
	return s.fallback, s.fallback != "", nil
}

// fill walks the section structs of v and sets every tagged field.
func fill(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()
	for i := range t.NumField() {
		field, target := t.Field(i), v.Field(i)
		if !target.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := fill(target, lookup); err != nil {
				return err
			}
			continue
		}

		spec, tagged := specOf(field)
		if !tagged {
			continue
		}
		raw, ok, err := spec.resolve(lookup)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := assign(target, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", spec.names[0], raw, err)
		}
	}
	return nil
}

// parsers converts a raw value for each supported field type.
var parsers = map[reflect.Type]func(string) (any, error){
	reflect.TypeFor[string]():        func(s string) (any, error) { return s, nil },
	reflect.TypeFor[int]():           func(s string) (any, error) { return strconv.Atoi(s) },
	reflect.TypeFor[float64]():       func(s string) (any, error) { return strconv.ParseFloat(s, 64) },
	reflect.TypeFor[bool]():          func(s string) (any, error) { return strconv.ParseBool(s) },
	reflect.TypeFor[time.Duration](): func(s string) (any, error) { return time.ParseDuration(s) },
	reflect.TypeFor[[]string]():      func(s string) (any, error) { return splitList(s), nil },
	reflect.TypeFor[[]int]():         parseIntList,
}

func assign(target reflect.Value, raw string) error {
	parse, ok := parsers[target.Type()]
	if !ok {
		return fmt.Errorf("unsupported field type %s", target.Type())
	}
	v, err := parse(raw)
	if err != nil {
		return err
	}
	target.Set(reflect.ValueOf(v))
	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntList(value string) (any, error) {
	parts := splitList(value)
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		out[i] = n
	}
	return out, nil
}

// Validate checks every section and reports all failures at once.
func (c *Config) Validate() error {
	errs := slices.Concat(
		c.Database.problems(),
		c.Server.problems(),
		c.Table.problems(),
		c.Logging.problems(),
		c.App.problems(),
	)
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var errs []string
	if d.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	switch {
	case d.MaxConns <= 0:
		errs = append(errs, "DB_MAX_CONNS must be positive")
	case d.MaxConns < d.MinConns:
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	return errs
}

func (s ServerConfig) problems() []string {
	var errs []string
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", s.Port))
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.RequestTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and SERVER_REQUEST_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	for _, proxy := range s.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			errs = append(errs, fmt.Sprintf("SERVER_TRUSTED_PROXIES entry %q is neither a CIDR nor an IP", proxy))
		}
	}
	return errs
}

func (t TableConfig) problems() []string {
	var errs []string
	if len(t.PageList) == 0 {
		errs = append(errs, "TABLE_PAGE_LIST must not be empty")
	}
	for i, size := range t.PageList {
		if size <= 0 {
			errs = append(errs, fmt.Sprintf("TABLE_PAGE_LIST entry %d must be positive", size))
		}
		if i > 0 && size <= t.PageList[i-1] {
			errs = append(errs, "TABLE_PAGE_LIST must be strictly increasing")
			break
		}
	}
	if !slices.Contains(t.PageList, t.DefaultLimit) {
		errs = append(errs, fmt.Sprintf("TABLE_DEFAULT_LIMIT (%d) must be one of TABLE_PAGE_LIST", t.DefaultLimit))
	}
	if t.MinMargin <= 0 {
		errs = append(errs, "TABLE_MIN_MARGIN must be positive")
	}
	if t.SearchMinLength < 2 {
		errs = append(errs, fmt.Sprintf("TABLE_SEARCH_MIN_LENGTH (%d) must be at least 2", t.SearchMinLength))
	}
	return errs
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

func (l LoggingConfig) problems() []string {
	var errs []string
	if !slices.Contains(logLevels, strings.ToLower(l.Level)) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: %s", l.Level, strings.Join(logLevels, ", ")))
	}
	if !slices.Contains(logFormats, strings.ToLower(l.Format)) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: %s", l.Format, strings.Join(logFormats, ", ")))
	}
	return errs
}

func (a AppConfig) problems() []string {
	var errs []string
	if a.Locale == "" {
		errs = append(errs, "APP_LOCALE is required")
	}
	// ParseRole falls back to ROLE_USER, which would hide a typo.
	if role := strings.ToUpper(strings.TrimSpace(a.Role)); string(access.ParseRole(role)) != role {
		errs = append(errs, fmt.Sprintf("APP_ROLE (%q) must be one of: %s, %s, %s",
			a.Role, access.RoleUser, access.RoleAdmin, access.RoleSuperAdmin))
	}
	return errs
}

// String renders the configuration for logging with the database URL masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Host: %q, Port: %d, TrustedProxies: %d}, ",
		c.Server.Host, c.Server.Port, len(c.Server.TrustedProxies))
	fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Table: {PageList: %v, DefaultLimit: %d, MinMargin: %g}, ",
		c.Table.PageList, c.Table.DefaultLimit, c.Table.MinMargin)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q, File: %q}, ",
		c.Logging.Level, c.Logging.Format, c.Logging.File)
	fmt.Fprintf(&b, "App: {Locale: %q, Role: %q}}", c.App.Locale, c.App.Role)
	return b.String()
}
