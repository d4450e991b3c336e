// Package ids generates client-side placeholder identifiers.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix marks identifiers that the server has not issued yet.
const PlaceholderPrefix = "tmp-"

// NewPlaceholder returns a random, locally unique placeholder id.
func NewPlaceholder() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholder reports whether id was produced by NewPlaceholder.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}
