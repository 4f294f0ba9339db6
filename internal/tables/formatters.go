package tables

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
)

// booleanFormatter renders a flag with the translated trueID/falseID.
func booleanFormatter(tr Translator, trueID, falseID string) datatable.Formatter {
	return func(value, _ any) string {
		if b, ok := value.(bool); ok && b {
			return tr.Trans(trueID, nil)
		}
		return tr.Trans(falseID, nil)
	}
}

func roleFormatter(tr Translator) datatable.Formatter {
	return func(value, _ any) string {
		role := strings.ToLower(datatable.Stringify(value))
		if role == "" {
			return ""
		}
		return tr.Trans("user.roles."+strings.TrimPrefix(role, "role_"), nil)
	}
}

func titleFormatter(tr Translator) datatable.Formatter {
	return func(value, _ any) string {
		return tr.Title(datatable.Stringify(value))
	}
}

// formatDuplicateItems lists the duplicated descriptions with their
// occurrence count: "Screw (2), Nail (3)".
func formatDuplicateItems(value, _ any) string {
	parts := make([]string, 0)
	for _, item := range items(value) {
		desc, _ := datatable.FieldValue(item, "description")
		count, _ := datatable.FieldValue(item, "count")
		parts = append(parts, fmt.Sprintf("%s (%s)", datatable.Stringify(desc), datatable.FormatCount(count, nil)))
	}
	return strings.Join(parts, ", ")
}

// emptyItemsFormatter lists the descriptions of items without price or
// quantity, naming what is missing: "Screw (price), Nail (quantity)".
func emptyItemsFormatter(tr Translator) datatable.Formatter {
	return func(value, _ any) string {
		parts := make([]string, 0)
		for _, item := range items(value) {
			desc, _ := datatable.FieldValue(item, "description")

			var missing []string
			if v, _ := datatable.FieldValue(item, "price"); isZero(v) {
				missing = append(missing, tr.Trans("calculation.empty.price", nil))
			}
			if v, _ := datatable.FieldValue(item, "quantity"); isZero(v) {
				missing = append(missing, tr.Trans("calculation.empty.quantity", nil))
			}
			parts = append(parts, fmt.Sprintf("%s (%s)", datatable.Stringify(desc), strings.Join(missing, ", ")))
		}
		return strings.Join(parts, ", ")
	}
}

func items(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	}
	return nil
}

func isZero(v any) bool {
	f, ok := datatable.ToFloat(v)
	return !ok || f == 0
}
