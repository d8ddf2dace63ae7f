// internal/render/sanitize.go
//
// FormRelayer – allow-list sanitizer for html-type content fields.
//
// Context
//   The builder lets administrators drop a free-form HTML block into a form.
//   Admin-supplied or not, that content is served to anonymous visitors, so
//   it runs through a restricted bluemonday policy: basic text markup,
//   lists, links, and images.  Scripts, styles, event handlers, and anything
//   interactive are stripped.
//
//------------------------------------------------------------------------------

package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// SanitizeContent cleans an html-type field's content for output.  Empty or
// fully stripped input yields "".
func SanitizeContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(contentSanitizer().Sanitize(trimmed))
}

func contentSanitizer() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(
			"p", "br", "hr", "b", "strong", "i", "em", "u", "s", "small",
			"span", "div", "blockquote", "pre", "code",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li",
		)
		p.AllowAttrs("class").OnElements("p", "span", "div", "blockquote")
		p.AllowAttrs("href", "title").OnElements("a")
		p.AllowElements("a")
		p.AllowStandardURLs()
		p.RequireNoFollowOnLinks(true)
		p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		p.AllowElements("img")
		contentPolicy = p
	})
	return contentPolicy
}
