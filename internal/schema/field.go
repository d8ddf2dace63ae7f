// internal/schema/field.go
//
// FormRelayer – Field Schema: field descriptors and structural rules.
//
// Context
//   Every form is defined by an ordered list of Field descriptors.  The
//   builder UI edits this list as a JSON array, the repository persists it in
//   the form row, and the renderer, validator, and conditional evaluator all
//   consume it.  This file is the single source of truth for what a field
//   looks like; other packages must not invent parallel shapes.
//
// Workflow
//   •  Field and Condition mirror the JSON the builder produces.
//   •  Normalize fills defaults and snaps enum-ish attributes (width) onto
//      their legal values so downstream code never branches on junk.
//   •  Validate enforces rules JSON tags cannot express: unique IDs, and
//      condition triggers that reference a real sibling field.
//   •  MintID and Regenerate create collision-free IDs for new and imported
//      fields.
//
// Style
//   Comments follow the house guide: full sentences, two spaces after
//   periods, Oxford commas.
//
//------------------------------------------------------------------------------

package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Field describes a single input control on a form.  ID doubles as the HTML
// input name and as the key under which the submitted value is stored, so it
// must be unique within the form.
type Field struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`                  // text, email, phone, select, …
	Label       string     `json:"label"`
	Required    bool       `json:"required"`
	Placeholder string     `json:"placeholder,omitempty"`
	Options     string     `json:"options,omitempty"`     // comma- or newline-separated choices
	Width       int        `json:"width,omitempty"`       // percentage: 25, 33, 50, 66, 75, or 100
	CSSClass    string     `json:"css_class,omitempty"`
	Default     string     `json:"default,omitempty"`
	Content     string     `json:"content,omitempty"`     // html-type fields only
	Condition   *Condition `json:"condition,omitempty"`
}

// Condition is a per-field visibility rule.  Field names the trigger whose
// value drives the rule; the evaluator silently disables the rule when that
// trigger does not exist in the same form.
type Condition struct {
	Enabled  bool   `json:"enabled"`
	Action   string `json:"action"`   // "show" or "hide"
	Field    string `json:"field"`    // trigger field ID
	Operator string `json:"operator"` // equals, not_equals, contains, empty, not_empty
	Value    string `json:"value"`
}

// Known field types.  Anything else falls back to a plain text input at
// render time rather than failing the whole form.
var knownTypes = map[string]struct{}{
	"text": {}, "email": {}, "phone": {}, "tel": {}, "textarea": {},
	"number": {}, "url": {}, "date": {}, "time": {}, "select": {},
	"radio": {}, "checkbox": {}, "header": {}, "html": {}, "hidden": {},
	"color": {}, "range": {}, "password": {}, "file": {},
}

// legal width percentages, in ascending order for snapping.
var widths = []int{25, 33, 50, 66, 75, 100}

// -----------------------------------------------------------------------------
// Helpers on Field
// -----------------------------------------------------------------------------

// KnownType reports whether Type is one of the supported field kinds.
func (f *Field) KnownType() bool {
	_, ok := knownTypes[f.Type]
	return ok
}

// HasInput reports whether the field produces a submittable value.  Headers
// and html content blocks are display-only.
func (f *Field) HasInput() bool {
	return f.Type != "header" && f.Type != "html"
}

// OptionList splits Options on commas or newlines, trims each entry, and
// drops empties.  The same splitting rules apply in the renderer and the
// submission validator, so they must live here.
func (f *Field) OptionList() []string {
	if f.Options == "" {
		return nil
	}
	raw := strings.FieldsFunc(f.Options, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Normalization and validation
// -----------------------------------------------------------------------------

// Normalize fills defaults in place: "tel" is folded into "phone", a zero
// width becomes 100, and any other width snaps to the nearest legal stop.
// Disabled or structurally empty conditions are dropped entirely so later
// code can treat a non-nil Condition as live.
func Normalize(fields []Field) {
	for i := range fields {
		f := &fields[i]
		if f.Type == "tel" {
			f.Type = "phone"
		}
		if f.Width == 0 {
			f.Width = 100
		} else {
			f.Width = snapWidth(f.Width)
		}
		if f.Condition != nil && (!f.Condition.Enabled || f.Condition.Field == "") {
			f.Condition = nil
		}
	}
}

// snapWidth returns the closest legal width percentage.
func snapWidth(w int) int {
	best, dist := widths[0], 1<<30
	for _, cand := range widths {
		d := cand - w
		if d < 0 {
			d = -d
		}
		if d < dist {
			best, dist = cand, d
		}
	}
	return best
}

// Validate enforces structural rules across the field list: non-empty unique
// IDs, and no condition that triggers on the field itself.  A condition
// whose trigger is missing from the form is NOT an error; the evaluator
// no-ops on it, matching the builder's lenient behavior when a trigger field
// is deleted after the rule was written.
func Validate(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.ID == "" {
			return fmt.Errorf("field %d: missing id", i)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = struct{}{}

		if f.Condition != nil && f.Condition.Field == f.ID {
			return fmt.Errorf("field %q: condition references itself", f.ID)
		}
	}
	return nil
}

// ByID returns the field with the given ID, or nil.
func ByID(fields []Field, id string) *Field {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i]
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// ID minting
// -----------------------------------------------------------------------------

// MintID returns a fresh field ID: "field_" plus the first eight hex chars of
// a UUID.  Short enough for readable HTML, random enough that two imports of
// the same file never collide.
func MintID() string {
	return "field_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Regenerate replaces every field ID with a fresh one and remaps condition
// trigger references onto the new IDs.  Used on import so a copied form can
// never collide with the original.  The input slice is modified in place.
func Regenerate(fields []Field) {
	remap := make(map[string]string, len(fields))
	for i := range fields {
		old := fields[i].ID
		fields[i].ID = MintID()
		if old != "" {
			remap[old] = fields[i].ID
		}
	}
	for i := range fields {
		c := fields[i].Condition
		if c == nil {
			continue
		}
		if fresh, ok := remap[c.Field]; ok {
			c.Field = fresh
		}
		// Trigger not in this form: leave as-is; the evaluator ignores it.
	}
}
