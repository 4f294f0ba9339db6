package datatable

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgtype"
)

// Formatter renders a raw field value server-side. row is the whole record
// the value was read from, for formatters that combine several fields.
type Formatter func(value any, row any) string

// FormatterRef designates a field formatter, either by the name it is
// registered under or as a function. It is resolved once, when the column
// is built.
type FormatterRef interface {
	resolve(registry Formatters) (Formatter, error)
}

// Named refers to a registered formatter.
type Named string

func (n Named) resolve(registry Formatters) (Formatter, error) {
	f, ok := registry[string(n)]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %q", ErrFormatterNotFound, string(n))
	}
	return f, nil
}

// Func wraps a formatter function.
type Func Formatter

func (f Func) resolve(Formatters) (Formatter, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil function", ErrFormatterNotFound)
	}
	return Formatter(f), nil
}

// ResolveFormatter resolves ref against registry.
func ResolveFormatter(ref FormatterRef, registry Formatters) (Formatter, error) {
	return ref.resolve(registry)
}

// Formatters maps formatter names to functions.
type Formatters map[string]Formatter

// With returns a copy of f extended with other. Entries in other win.
func (f Formatters) With(other Formatters) Formatters {
	merged := make(Formatters, len(f)+len(other))
	for k, v := range f {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// DefaultFormatters returns the formatters shared by all tables.
func DefaultFormatters() Formatters {
	return Formatters{
		"formatId":       FormatID,
		"formatAmount":   FormatAmount,
		"formatPercent":  FormatPercent,
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"formatCount":    FormatCount,
	}
}

// FormatID pads an integer id to six digits.
func FormatID(value any, _ any) string {
	id, ok := ToInt(value)
	if !ok {
		return Stringify(value)
	}
	return fmt.Sprintf("%06d", id)
}

// FormatAmount renders a number with grouped thousands and two decimals.
func FormatAmount(value any, _ any) string {
	f, ok := ToFloat(value)
	if !ok {
		return Stringify(value)
	}
	return humanize.FormatFloat("#,###.##", f)
}

// FormatPercent renders a ratio (1.25) as a rounded percentage ("125%").
func FormatPercent(value any, _ any) string {
	f, ok := ToFloat(value)
	if !ok {
		return Stringify(value)
	}
	return strconv.FormatInt(int64(math.Round(f*100)), 10) + "%"
}

// FormatDate renders a date as dd.mm.yyyy.
func FormatDate(value any, _ any) string {
	t, ok := ToTime(value)
	if !ok {
		return Stringify(value)
	}
	return t.Format("02.01.2006")
}

// FormatDateTime renders a timestamp as dd.mm.yyyy hh:mm:ss.
func FormatDateTime(value any, _ any) string {
	t, ok := ToTime(value)
	if !ok {
		return Stringify(value)
	}
	return t.Format("02.01.2006 15:04:05")
}

// FormatCount renders an integer with grouped thousands.
func FormatCount(value any, _ any) string {
	n, ok := ToInt(value)
	if !ok {
		return Stringify(value)
	}
	return humanize.Comma(int64(n))
}

// Stringify is the default rendering: booleans become "1"/"0", nil becomes
// the empty string and everything else its natural text form.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case pgtype.Numeric:
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts numeric values, including pgx numerics and numeric
// strings, to float64.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int16:
		return float64(v), true
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// ToInt converts integer-like values to int.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case int16:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	}
	return 0, false
}

// ToTime converts time values, including pgx dates and timestamps.
func ToTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case pgtype.Date:
		return v.Time, v.Valid
	case pgtype.Timestamp:
		return v.Time, v.Valid
	case pgtype.Timestamptz:
		return v.Time, v.Valid
	}
	return time.Time{}, false
}
