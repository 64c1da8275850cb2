package twin

import (
	"regexp"
	"strings"
)

// DefaultNamespace is the namespace prepended to identifiers that arrive
// without one. It matches the namespace used by the Ditto sandbox and the
// recorded factory data sets.
const DefaultNamespace = "org.eclipse.ditto"

// namespaceSeparator splits the namespace from the entity name in a Ditto
// entity ID.
const namespaceSeparator = ":"

// invalidIDChars matches every character that is not allowed in the name
// part of a Ditto entity ID (allowed: alphanumerics, '.', '_', '-').
var invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// EnsureNamespaced coerces a raw identifier into Ditto's namespaced entity
// ID format ("namespace:name").
//
// Identifiers that already contain a namespace separator are returned
// unchanged. Otherwise spaces are mapped to hyphens, any remaining
// disallowed character is replaced with a hyphen, and the default namespace
// is prepended.
//
// An empty defaultNamespace falls back to DefaultNamespace.
func EnsureNamespaced(raw string, defaultNamespace string) string {
	if strings.Contains(raw, namespaceSeparator) {
		return raw
	}

	if defaultNamespace == "" {
		defaultNamespace = DefaultNamespace
	}

	// Spaces first, then everything else outside the allowed set.
	sanitized := strings.ReplaceAll(raw, " ", "-")
	sanitized = invalidIDChars.ReplaceAllString(sanitized, "-")

	return defaultNamespace + namespaceSeparator + sanitized
}

// Name returns the entity name part of a namespaced identifier (everything
// after the first separator). Identifiers without a separator are returned
// whole.
func Name(id string) string {
	if _, name, found := strings.Cut(id, namespaceSeparator); found {
		return name
	}
	return id
}
