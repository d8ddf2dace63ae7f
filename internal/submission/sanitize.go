// internal/submission/sanitize.go
//
// FormRelayer – per-type input sanitization.
//
// Context
//   Raw posted values are cleaned before validation so that everything
//   downstream (storage, admin list, emails, export) sees one canonical
//   string per field.  Text values are stored HTML-escaped; consumers that
//   need plain text (the plain-text email body) unescape on the way out.
//   Multi-value checkbox groups are joined with ", ", the same joining the
//   conditional evaluator applies on the client.
//
//------------------------------------------------------------------------------

package submission

import (
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/formrelayer/formrelayer/internal/condition"
	"github.com/formrelayer/formrelayer/internal/schema"
)

// value caps.  Anything longer is truncated rather than rejected; these exist
// to bound row size, not to express business rules.
const (
	maxSingleLine = 1000
	maxMultiLine  = 20000
)

// postedValues extracts the raw submitted values for a field, accepting both
// the plain name and the group form the renderer emits for checkbox groups.
func postedValues(posted url.Values, f *schema.Field) ([]string, bool) {
	if vs, ok := posted[f.ID]; ok && len(vs) > 0 {
		return vs, true
	}
	if vs, ok := posted[f.ID+"[]"]; ok && len(vs) > 0 {
		return vs, true
	}
	return nil, false
}

// sanitize produces the canonical stored string for one field.  The boolean
// reports whether the cleaned value is non-empty.
func sanitize(f *schema.Field, raw []string) (string, bool) {
	switch f.Type {
	case "textarea":
		v := truncate(stripControl(strings.TrimSpace(raw[0]), true), maxMultiLine)
		return html.EscapeString(v), v != ""

	case "checkbox":
		cleaned := make([]string, 0, len(raw))
		for _, r := range raw {
			if v := singleLine(r); v != "" {
				cleaned = append(cleaned, html.EscapeString(v))
			}
		}
		joined := condition.JoinValues(cleaned)
		return joined, joined != ""

	case "email", "url", "number", "phone", "date", "time", "color", "range":
		// Typed values stay literal so the type check that follows sees the
		// exact input.  Both email and url legally admit HTML metacharacters
		// (quoted local-parts, angle brackets in paths), so HTML consumers
		// must escape these per context on the way out.
		v := singleLine(raw[0])
		return v, v != ""

	default: // text, select, radio, hidden, password, and unknown types
		v := singleLine(raw[0])
		return html.EscapeString(v), v != ""
	}
}

// singleLine trims, removes control characters including newlines, and caps
// the length.
func singleLine(s string) string {
	return truncate(stripControl(strings.TrimSpace(s), false), maxSingleLine)
}

// stripControl removes ASCII control characters.  keepBreaks preserves \n and
// \t for multi-line values; \r is always dropped.
func stripControl(s string, keepBreaks bool) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' {
			return -1
		}
		if keepBreaks && (r == '\n' || r == '\t') {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// truncate caps s at max bytes, backing up to the nearest rune boundary so
// a multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
