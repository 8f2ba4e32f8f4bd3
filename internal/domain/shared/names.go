package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey returns the case-folded, trimmed form of a display name. Entities
// that must be unique by name regardless of case store it next to the name.
func NameKey(name string) string {
	// Casers keep state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(name))
}
