// internal/form/model.go
//
// FormRelayer – Form aggregate.
//
// Context
//   A Form bundles the Field Schema with its per-form settings overrides.
//   The builder edits both and saves them in one request; the public
//   component renders them; the submission processor validates against them.
//
//------------------------------------------------------------------------------

package form

import (
	"strings"
	"time"

	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
)

// Form statuses.  Forms are never hard-deleted; Trash flips the status and
// the public component refuses to serve trashed forms.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusTrashed   = "trashed"
)

// Form is the stored aggregate.
type Form struct {
	ID        int64
	Slug      string
	Title     string
	Status    string
	Fields    []schema.Field
	Settings  settings.Overrides
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Servable reports whether the public component may render and accept
// submissions for this form.
func (f *Form) Servable() bool {
	return f.Status == StatusPublished
}

// EmailField returns the ID of the first email-type field, or "".  Used to
// derive submission titles and the auto-reply recipient.
func (f *Form) EmailField() string {
	for i := range f.Fields {
		if f.Fields[i].Type == "email" {
			return f.Fields[i].ID
		}
	}
	return ""
}

// NameField returns the ID of the first field whose label or ID suggests a
// person's name, or "".  Best-effort; only used for cosmetic purposes such
// as submission titles and the {name} placeholder.
func (f *Form) NameField() string {
	for i := range f.Fields {
		fld := &f.Fields[i]
		if fld.Type != "text" {
			continue
		}
		if strings.Contains(strings.ToLower(fld.ID), "name") ||
			strings.Contains(strings.ToLower(fld.Label), "name") {
			return fld.ID
		}
	}
	return ""
}
