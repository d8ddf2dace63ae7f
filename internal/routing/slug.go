// internal/routing/slug.go
//
// URL slug helper for form addresses.
//
// Every form is reachable at /forms/{slug}; the slug is derived from the
// form title at creation time and then frozen so published URLs survive
// renames.  Rules:
//
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Collapse consecutive “-” to a single “-”.
// 4. Trim leading / trailing “-”.
// 5. If the result is empty, return "form".
//
// No Unicode transliteration; slugs are ASCII-only and at most 100 bytes.

package routing

import (
	"strings"
)

// MakeSlug converts a form title into lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "form"
	}
	if len(slug) > 100 {
		slug = slug[:100]
		slug = strings.TrimRightFunc(slug, func(r rune) bool { return r == '-' })
	}
	return slug
}
