// internal/submission/validate.go
//
// FormRelayer – server-side validation of posted form data.
//
// Context
//   The renderer outputs inputs named by field ID; when the browser posts
//   them back, this file re-checks everything the client promised: required
//   fields, type constraints, and option membership.  Conditionally hidden
//   fields are excluded first, using the same rule evaluation the client
//   runs, so a field hidden by its rule is neither required nor stored.
//
// Workflow
//   •  Collect walks the field list, resolves visibility against the raw
//      posted trigger values, sanitizes per type, and validates.
//   •  Errors are collected into a fieldID→message map so the client can
//      highlight exact inputs; an empty map means the data is clean.
//
//------------------------------------------------------------------------------

package submission

import (
	"html"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/formrelayer/formrelayer/internal/condition"
	"github.com/formrelayer/formrelayer/internal/schema"
)

// user-facing messages, keyed by field ID in the error map.
const (
	msgRequired     = "This field is required."
	msgInvalidEmail = "Please enter a valid email address."
	msgInvalidURL   = "Please enter a valid URL."
	msgInvalidNum   = "Please enter a number."
	msgInvalidPhone = "Please enter a valid phone number."
	msgInvalidDate  = "Please enter a valid date."
	msgInvalidOpt   = "Please choose one of the offered options."
)

// Collect sanitizes and validates posted values against the field list.  It
// returns the cleaned fieldID→value map and a fieldID→message error map;
// a non-empty error map means the submission must be rejected.
func Collect(fields []schema.Field, posted url.Values) (map[string]string, map[string]string) {
	clean := make(map[string]string)
	errs := make(map[string]string)

	for i := range fields {
		f := &fields[i]
		if !f.HasInput() {
			continue
		}
		if !visible(fields, f, posted) {
			continue
		}

		raw, present := postedValues(posted, f)
		var val string
		var nonEmpty bool
		if present {
			val, nonEmpty = sanitize(f, raw)
		}

		if !nonEmpty {
			if f.Required {
				errs[f.ID] = msgRequired
			}
			continue
		}

		if msg := checkType(f, val); msg != "" {
			errs[f.ID] = msg
			continue
		}
		clean[f.ID] = val
	}

	return clean, errs
}

// visible evaluates a field's condition against the raw posted value of its
// trigger, mirroring what the client-side runtime does.  A missing trigger
// field leaves the field visible.
func visible(fields []schema.Field, f *schema.Field, posted url.Values) bool {
	if f.Condition == nil {
		return true
	}
	trigger := schema.ByID(fields, f.Condition.Field)
	if trigger == nil {
		return true
	}
	raw, _ := postedValues(posted, trigger)
	return condition.Visible(f.Condition, strings.Join(raw, ", "))
}

// checkType applies the per-type constraint to an already sanitized,
// non-empty value.  Empty return means the value is acceptable.
func checkType(f *schema.Field, val string) string {
	switch f.Type {
	case "email":
		if _, err := mail.ParseAddress(val); err != nil {
			return msgInvalidEmail
		}

	case "url":
		u, err := url.ParseRequestURI(val)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return msgInvalidURL
		}

	case "number", "range":
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return msgInvalidNum
		}

	case "phone":
		if !strings.ContainsAny(val, "0123456789") {
			return msgInvalidPhone
		}

	case "date":
		if _, err := time.Parse("2006-01-02", val); err != nil {
			return msgInvalidDate
		}

	case "select", "radio":
		if !optionAllowed(f.OptionList(), val) {
			return msgInvalidOpt
		}

	case "checkbox":
		// Groups must stay within the offered options; a lone checkbox has
		// no option list and accepts whatever value the renderer gave it.
		opts := f.OptionList()
		if len(opts) == 0 {
			return ""
		}
		for _, part := range strings.Split(val, ", ") {
			if !optionAllowed(opts, part) {
				return msgInvalidOpt
			}
		}
	}
	return ""
}

// optionAllowed compares the HTML-escaped stored value against the escaped
// form of each offered option.
func optionAllowed(opts []string, v string) bool {
	for _, o := range opts {
		if o == v || html.EscapeString(o) == v {
			return true
		}
	}
	return false
}
