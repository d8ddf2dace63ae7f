// internal/submission/model.go
//
// FormRelayer – Submission aggregate.
//
// Context
//   A Submission is one accepted post against a published form: the cleaned
//   field values plus request metadata captured at intake (client IP, parsed
//   user agent, GeoIP country when available).  Values are stored as a flat
//   fieldID→string map; multi-value inputs such as checkbox groups are joined
//   before storage so the admin list, the emails, and the export all see the
//   same representation.
//
//------------------------------------------------------------------------------

package submission

import (
	"fmt"
	"time"

	"github.com/formrelayer/formrelayer/internal/form"
)

// Submission is the stored aggregate.
type Submission struct {
	ID          int64
	FormID      int64
	Title       string
	Data        map[string]string
	Read        bool
	IP          string
	UserAgent   string
	Country     string
	SubmittedAt time.Time
}

// Meta carries the request metadata the handler extracts before the pipeline
// runs.  Country is empty when no GeoIP database is configured.
type Meta struct {
	IP        string
	UserAgent string
	Country   string
}

// DeriveTitle picks a human-readable list title for a submission: the value
// of the form's first email field, else its first name-ish field, else a
// numbered fallback.  Cosmetic only; never used as a key.
func DeriveTitle(f *form.Form, data map[string]string) string {
	if id := f.EmailField(); id != "" && data[id] != "" {
		return data[id]
	}
	if id := f.NameField(); id != "" && data[id] != "" {
		return data[id]
	}
	return fmt.Sprintf("Submission for %s", f.Title)
}
