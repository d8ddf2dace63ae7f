// internal/render/renderer.go
//
// FormRelayer – Field Renderer.
//
// Context
//   Converts Field Schema entries into form-control markup.  The renderer is
//   pure string building: no I/O, no storage access.  It is used from two
//   places with slightly different needs, expressed as a Mode:
//
//     •  ModeLive    – the hosted/embedded form.  Emits the submission nonce,
//        the honeypot decoy, and the conditional-rule data attributes that
//        the embedded client runtime interprets.
//     •  ModePreview – the builder's preview pane.  Inputs are disabled and
//        the security inputs are omitted, so the preview can never submit.
//
// Workflow
//   •  Fields walks the list in order and dispatches per type through
//      writeField.  Unknown types degrade to a plain text input.
//   •  Initial visibility is evaluated against trigger default values, so a
//      field hidden by its rule carries the fr-hidden class from the first
//      paint (no flash of content before the client runtime boots).
//   •  All user-supplied text is escaped for its output context.  Only
//      html-type content passes through, via the bluemonday allow-list
//      policy in sanitize.go.
//
// Style
//   Output is deliberately plain.  Each control is wrapped in
//   <div class="fr-field fr-col-{width}"> so stylesheets hook on classes,
//   and every input gets id="fr-{field id}".
//
//------------------------------------------------------------------------------

package render

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"

	"github.com/formrelayer/formrelayer/internal/condition"
	"github.com/formrelayer/formrelayer/internal/nonce"
	"github.com/formrelayer/formrelayer/internal/schema"
)

// Mode selects live-frontend or builder-preview output.
type Mode int

const (
	ModeLive Mode = iota
	ModePreview
)

// HoneypotField is the decoy input name.  Styled off-screen; real users never
// see or fill it.  The processor rejects any submission carrying a value.
const HoneypotField = "fr_website"

// Fields renders the full field list.  The caller wraps the result in its
// own <form> element; this function only produces the controls plus, in live
// mode, the nonce and honeypot inputs.
func Fields(fields []schema.Field, mode Mode) (template.HTML, error) {
	var buf bytes.Buffer
	buf.WriteString(`<div class="fr-fields">` + "\n")

	for i := range fields {
		if err := writeField(&buf, &fields[i], fields, mode); err != nil {
			return "", err
		}
	}

	if mode == ModeLive {
		tok, err := nonce.Generate()
		if err != nil {
			return "", fmt.Errorf("render: generate nonce: %w", err)
		}
		fmt.Fprintf(&buf, `<input type="hidden" name="%s" value="%s">`+"\n", nonce.FieldName, tok)
		// Honeypot: positioned off-screen by the stylesheet, tabindex -1 so
		// keyboard users cannot land in it.
		fmt.Fprintf(&buf,
			`<div class="fr-hp" aria-hidden="true"><input type="text" name="%s" tabindex="-1" autocomplete="off"></div>`+"\n",
			HoneypotField)
	}

	buf.WriteString(`</div>`)
	return template.HTML(buf.String()), nil
}

// InitiallyVisible evaluates a field's rule against its trigger's default
// value.  Missing trigger means the rule no-ops and the field is visible.
func InitiallyVisible(f *schema.Field, fields []schema.Field) bool {
	c := f.Condition
	if c == nil || !c.Enabled {
		return true
	}
	trigger := schema.ByID(fields, c.Field)
	if trigger == nil {
		return true
	}
	return condition.Visible(c, trigger.Default)
}

// writeField emits one field into buf.
func writeField(buf *bytes.Buffer, f *schema.Field, all []schema.Field, mode Mode) error {
	esc := html.EscapeString

	// Container with width class, custom class, and initial-visibility class.
	buf.WriteString(`<div class="fr-field fr-col-` + strconv.Itoa(f.Width))
	if f.CSSClass != "" {
		buf.WriteString(" " + esc(f.CSSClass))
	}
	if !InitiallyVisible(f, all) {
		buf.WriteString(" fr-hidden")
	}
	buf.WriteString(`"`)
	if rule := condition.MarshalRule(f.Condition); rule != "" {
		buf.WriteString(` data-fr-cond='` + attrSingleQuote(rule) + `'`)
	}
	buf.WriteString(`>` + "\n")

	idAttr := `id="fr-` + esc(f.ID) + `"`
	nameAttr := `name="` + esc(f.ID) + `"`
	disabled := ""
	if mode == ModePreview {
		disabled = ` disabled`
	}

	// Display-only types first: no label element, no input.
	switch f.Type {
	case "header":
		buf.WriteString(`<h3 class="fr-header">` + esc(f.Label) + `</h3>` + "\n")
		buf.WriteString(`</div>` + "\n")
		return nil
	case "html":
		buf.WriteString(`<div class="fr-content">` + SanitizeContent(f.Content) + `</div>` + "\n")
		buf.WriteString(`</div>` + "\n")
		return nil
	case "hidden":
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="hidden" value="` + esc(f.Default) + `">` + "\n")
		buf.WriteString(`</div>` + "\n")
		return nil
	}

	// Visible label.  Checkbox singles render the label after the box.
	single := f.Type == "checkbox" && len(f.OptionList()) == 0
	if !single {
		buf.WriteString(`<label for="fr-` + esc(f.ID) + `">` + esc(f.Label))
		if f.Required {
			buf.WriteString(`<span class="fr-req" aria-hidden="true">*</span>`)
		}
		buf.WriteString(`</label>` + "\n")
	}

	switch f.Type {
	case "text", "email", "number", "url", "date", "time", "color", "range", "password", "file", "phone":
		typ := f.Type
		if typ == "phone" {
			typ = "tel"
		}
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + typ + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + esc(f.Placeholder) + `"`)
		}
		if f.Required {
			buf.WriteString(` required`)
		}
		if f.Default != "" && typ != "password" && typ != "file" {
			buf.WriteString(` value="` + esc(f.Default) + `"`)
		}
		buf.WriteString(disabled + `>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + idAttr + ` ` + nameAttr + ` rows="4"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + esc(f.Placeholder) + `"`)
		}
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(disabled + `>`)
		if f.Default != "" {
			buf.WriteString(esc(f.Default))
		}
		buf.WriteString(`</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(disabled + `>` + "\n")
		if f.Placeholder != "" {
			buf.WriteString(`<option value="">` + esc(f.Placeholder) + `</option>` + "\n")
		}
		for _, opt := range f.OptionList() {
			sel := ""
			if opt == f.Default {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + esc(opt) + `"` + sel + `>` + esc(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "radio":
		// HTML applies required per radio group, so only the first input
		// needs the attribute.
		for i, opt := range f.OptionList() {
			optID := fmt.Sprintf("fr-%s-%d", esc(f.ID), i)
			checked := ""
			if opt == f.Default {
				checked = ` checked`
			}
			req := ""
			if f.Required && i == 0 {
				req = ` required`
			}
			buf.WriteString(`<div class="fr-option">` + "\n")
			buf.WriteString(`<input id="` + optID + `" ` + nameAttr + ` type="radio" value="` + esc(opt) + `"` + checked + req + disabled + `>` + "\n")
			buf.WriteString(`<label for="` + optID + `">` + esc(opt) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}

	case "checkbox":
		opts := f.OptionList()
		if len(opts) == 0 {
			// Single boolean checkbox named exactly the field ID.
			buf.WriteString(`<div class="fr-option">` + "\n")
			buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="checkbox" value="1"`)
			if f.Required {
				buf.WriteString(` required`)
			}
			buf.WriteString(disabled + `>` + "\n")
			buf.WriteString(`<label for="fr-` + esc(f.ID) + `">` + esc(f.Label) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
			break
		}
		// Group: each box posts under "id[]" so multiple values survive.
		groupName := `name="` + esc(f.ID) + `[]"`
		for i, opt := range opts {
			optID := fmt.Sprintf("fr-%s-%d", esc(f.ID), i)
			buf.WriteString(`<div class="fr-option">` + "\n")
			buf.WriteString(`<input id="` + optID + `" ` + groupName + ` type="checkbox" value="` + esc(opt) + `"` + disabled + `>` + "\n")
			buf.WriteString(`<label for="` + optID + `">` + esc(opt) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}

	default:
		// Unknown type: degrade to a generic text input instead of failing
		// the whole form.
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="text"`)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(disabled + `>` + "\n")
	}

	buf.WriteString(`<span class="fr-error" aria-live="polite"></span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}

// attrSingleQuote escapes a JSON payload for embedding inside a
// single-quoted HTML attribute.  JSON already escapes control characters;
// only the quote characters and ampersand need attention here.
func attrSingleQuote(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("&#39;")
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
