// internal/render/assets.go
//
// Embedded client assets: the conditional-logic runtime and the base form
// stylesheet.  Served by the public component so embeds need exactly one
// script and one stylesheet from this service, versioned with the binary.

package render

import _ "embed"

// ConditionalJS re-evaluates data-fr-cond rules on trigger input events.  It
// interprets the same operator names as internal/condition; the two must
// change together.
//
//go:embed assets/conditional.js
var ConditionalJS []byte

// FormCSS holds layout defaults: width columns, honeypot off-screening, and
// the fr-hidden class the evaluator toggles.
//
//go:embed assets/form.css
var FormCSS []byte
