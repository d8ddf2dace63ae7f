// internal/importexport/importexport.go
//
// FormRelayer – form export and import.
//
// Context
//   Exports are versioned JSON envelopes carrying a form's definition
//   (title, status, fields, settings) but never its submissions.  Import is
//   additive only: every imported form is created as a fresh draft with
//   regenerated field IDs, so importing can never overwrite or collide with
//   existing forms.  A multi-form file imports what it can; per-form
//   failures are collected and reported alongside the success count rather
//   than aborting the batch.
//
//------------------------------------------------------------------------------

package importexport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
)

// Version identifies the envelope format.
const Version = "1.0"

// portableForm is the form definition as it travels in an envelope.
type portableForm struct {
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Fields   []schema.Field  `json:"fields"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// SingleExport wraps one form.
type SingleExport struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Form       portableForm `json:"form"`
}

// BulkExport wraps every form on the site.
type BulkExport struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	SiteURL    string         `json:"site_url,omitempty"`
	Forms      []portableForm `json:"forms"`
}

// Result summarizes an import run.
type Result struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	FormIDs  []int64  `json:"form_ids,omitempty"`
}

// Creator is the slice of the form repository import needs.
type Creator interface {
	Create(ctx context.Context, f *form.Form) (int64, error)
}

// settings keys that survive an import.  Everything else in the settings
// object (unknown keys, site-specific values from the source install) is
// dropped.
var allowedSettingKeys = map[string]struct{}{
	"email": {}, "button_text": {}, "success_message": {}, "redirect_url": {},
	"auto_reply": {}, "auto_reply_subject": {}, "auto_reply_message": {},
	"email_template": {}, "custom_email_html": {},
	"primary_color": {}, "button_color": {},
}

// -----------------------------------------------------------------------------
// Export
// -----------------------------------------------------------------------------

// ExportForm builds a single-form envelope.
func ExportForm(f *form.Form) (*SingleExport, error) {
	p, err := toPortable(f)
	if err != nil {
		return nil, err
	}
	return &SingleExport{Version: Version, ExportedAt: time.Now().UTC(), Form: *p}, nil
}

// ExportAll builds a whole-site envelope.
func ExportAll(forms []*form.Form, siteURL string) (*BulkExport, error) {
	out := &BulkExport{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		SiteURL:    siteURL,
		Forms:      make([]portableForm, 0, len(forms)),
	}
	for _, f := range forms {
		p, err := toPortable(f)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", f.ID, err)
		}
		out.Forms = append(out.Forms, *p)
	}
	return out, nil
}

func toPortable(f *form.Form) (*portableForm, error) {
	sj, err := json.Marshal(f.Settings)
	if err != nil {
		return nil, err
	}
	return &portableForm{
		Title:    f.Title,
		Status:   f.Status,
		Fields:   f.Fields,
		Settings: sj,
	}, nil
}

// -----------------------------------------------------------------------------
// Import
// -----------------------------------------------------------------------------

// Import parses an export file of either shape and creates the forms it
// contains.  The returned Result always reflects what actually happened;
// only an unreadable file produces a non-nil error.
func Import(ctx context.Context, repo Creator, raw []byte) (*Result, error) {
	// Envelope sniff: a bulk file has "forms", a single file has "form".
	var probe struct {
		Form  *portableForm  `json:"form"`
		Forms []portableForm `json:"forms"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("unreadable import file: %w", err)
	}

	var items []portableForm
	switch {
	case probe.Forms != nil:
		items = probe.Forms
	case probe.Form != nil:
		items = []portableForm{*probe.Form}
	default:
		return nil, fmt.Errorf("import file contains no forms")
	}

	res := &Result{}
	for i, p := range items {
		id, err := importOne(ctx, repo, p)
		if err != nil {
			res.Failed++
			label := p.Title
			if label == "" {
				label = fmt.Sprintf("form #%d", i+1)
			}
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		res.Imported++
		res.FormIDs = append(res.FormIDs, id)
	}
	return res, nil
}

func importOne(ctx context.Context, repo Creator, p portableForm) (int64, error) {
	if p.Title == "" {
		return 0, fmt.Errorf("missing title")
	}

	fields := make([]schema.Field, len(p.Fields))
	copy(fields, p.Fields)
	for i := range fields {
		if c := fields[i].Condition; c != nil {
			dup := *c
			fields[i].Condition = &dup
		}
	}
	// Fresh IDs so a re-import can never collide with the original.
	schema.Regenerate(fields)
	schema.Normalize(fields)
	if err := schema.Validate(fields); err != nil {
		return 0, err
	}

	ov, err := filterSettings(p.Settings)
	if err != nil {
		return 0, err
	}

	f := &form.Form{
		Title:    p.Title,
		Status:   form.StatusDraft, // imports always land as drafts
		Fields:   fields,
		Settings: ov,
	}
	return repo.Create(ctx, f)
}

// filterSettings keeps only the allow-listed keys before decoding into the
// typed overrides.
func filterSettings(raw json.RawMessage) (settings.Overrides, error) {
	var ov settings.Overrides
	if len(raw) == 0 {
		return ov, nil
	}

	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return ov, fmt.Errorf("parse settings: %w", err)
	}
	for k := range loose {
		if _, ok := allowedSettingKeys[k]; !ok {
			delete(loose, k)
		}
	}

	filtered, err := json.Marshal(loose)
	if err != nil {
		return ov, err
	}
	if err := json.Unmarshal(filtered, &ov); err != nil {
		return ov, fmt.Errorf("parse settings: %w", err)
	}
	return ov, nil
}
