// Package slug derives the canonical identifier for a ring and guards
// catalog uniqueness with a debounced, race-safe existence check.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccenter strips combining marks so accented input transliterates to
// plain ASCII before the allow-list pass.
var deaccenter = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Derive builds the canonical slug from the three metadata fields:
// source-media name, item name, and variant label. Empty fields drop out.
// The result is deterministic and idempotent.
func Derive(mediaName, itemName, variantLabel string) string {
	parts := make([]string, 0, 3)
	for _, field := range []string{mediaName, itemName, variantLabel} {
		if token := slugify(field); token != "" {
			parts = append(parts, token)
		}
	}
	return strings.Join(parts, "-")
}

// slugify lowercases, transliterates, and reduces a field to the
// [a-z0-9-] allow-list with single hyphen separators.
func slugify(field string) string {
	field = strings.TrimSpace(field)
	if field == "" {
		return ""
	}

	if flat, _, err := transform.String(deaccenter, field); err == nil {
		field = flat
	}
	field = strings.ToLower(field)

	var b strings.Builder
	pendingHyphen := false
	for _, r := range field {
		isAllowed := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAllowed {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
