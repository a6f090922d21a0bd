package search

import (
	"fmt"
	"strings"
)

// NormalizePattern trims name and collapses runs of whitespace to a single
// space, so "  Paula   Erickson " searches for "Paula Erickson".
func NormalizePattern(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// valueString renders a decoded column value as text.
func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// columnIndex finds column in columns, ignoring case. Returns -1 if absent.
func columnIndex(columns []string, column string) int {
	for i, c := range columns {
		if strings.EqualFold(c, column) {
			return i
		}
	}
	return -1
}
