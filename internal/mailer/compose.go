// internal/mailer/compose.go
//
// FormRelayer – email composition.
//
// Context
//   Composer turns a stored submission into the two outbound emails: the
//   admin notification (field table in the selected template) and the
//   visitor auto-reply (admin-written body with placeholders).  Placeholder
//   substitution is a fixed sequence of literal string replacements; if a
//   substituted value itself contains a later placeholder it gets
//   substituted too.  That quirk is long-standing admin-visible behavior,
//   so it is kept rather than fixed.
//
//------------------------------------------------------------------------------

package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/metrics"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/submission"
)

// Composer implements the pipeline's Notifier by composing and sending.
type Composer struct {
	sender Sender
}

// NewComposer returns a Composer delivering through sender.
func NewComposer(sender Sender) *Composer {
	return &Composer{sender: sender}
}

// Notify sends the admin notification for a stored submission.
func (c *Composer) Notify(ctx context.Context, f *form.Form, eff settings.Effective, s *submission.Submission) error {
	subject := fmt.Sprintf("New submission: %s", f.Title)

	msg := Email{
		To:       splitRecipients(eff.RecipientEmail),
		From:     fromAddress(eff),
		FromName: eff.FromName,
		Subject:  subject,
		Text:     fieldsText(f, s),
		HTML:     wrapHTML(eff.EmailTemplate, fieldsTable(f, s), subject, eff),
	}
	if id := f.EmailField(); id != "" && s.Data[id] != "" {
		msg.ReplyTo = s.Data[id]
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		metrics.EmailErrorsTotal.Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("notification").Inc()
	return nil
}

// AutoReply sends the visitor confirmation when the form captured an email
// address.  No address means no reply; that is not an error.
func (c *Composer) AutoReply(ctx context.Context, f *form.Form, eff settings.Effective, s *submission.Submission) error {
	emailID := f.EmailField()
	if emailID == "" || s.Data[emailID] == "" {
		return nil
	}

	subject := substitute(eff.AutoReplySubject, f, eff, s)
	body := substitute(eff.AutoReplyMessage, f, eff, s)

	msg := Email{
		To:       []string{s.Data[emailID]},
		From:     fromAddress(eff),
		FromName: eff.FromName,
		Subject:  subject,
		Text:     body,
		HTML:     wrapHTML(eff.EmailTemplate, textToHTML(body), subject, eff),
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		metrics.EmailErrorsTotal.Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("auto_reply").Inc()
	return nil
}

// -----------------------------------------------------------------------------
// Placeholder substitution
// -----------------------------------------------------------------------------

// substitute expands the admin-facing placeholders in a fixed order.
func substitute(tpl string, f *form.Form, eff settings.Effective, s *submission.Submission) string {
	name := ""
	if id := f.NameField(); id != "" {
		name = html.UnescapeString(s.Data[id])
	}
	email := ""
	if id := f.EmailField(); id != "" {
		email = s.Data[id]
	}

	out := tpl
	out = strings.ReplaceAll(out, "{name}", name)
	out = strings.ReplaceAll(out, "{email}", email)
	out = strings.ReplaceAll(out, "{site_name}", eff.SiteName)
	out = strings.ReplaceAll(out, "{site_url}", eff.SiteURL)
	out = strings.ReplaceAll(out, "{date}", s.SubmittedAt.Format("January 2, 2006"))
	out = strings.ReplaceAll(out, "{form_title}", f.Title)
	out = strings.ReplaceAll(out, "{all_fields}", fieldsText(f, s))
	return out
}

// -----------------------------------------------------------------------------
// Field rendering
// -----------------------------------------------------------------------------

// orderedValues yields label/value pairs in field order, then any stored
// values whose field no longer exists on the form.
func orderedValues(f *form.Form, s *submission.Submission) [][2]string {
	var out [][2]string
	seen := make(map[string]struct{}, len(s.Data))

	for i := range f.Fields {
		fld := &f.Fields[i]
		v, ok := s.Data[fld.ID]
		if !ok {
			continue
		}
		seen[fld.ID] = struct{}{}
		out = append(out, [2]string{fieldLabel(fld), v})
	}
	for k, v := range s.Data {
		if _, ok := seen[k]; !ok {
			out = append(out, [2]string{k, v})
		}
	}
	return out
}

func fieldLabel(fld *schema.Field) string {
	if fld.Label != "" {
		return fld.Label
	}
	return fld.ID
}

// fieldsTable renders the submitted values as HTML table rows.  Stored
// values are escaped or verbatim depending on field type (typed values such
// as email and url are kept literal for validation), so every value is
// normalized to plain text and re-escaped for the HTML context here.
func fieldsTable(f *form.Form, s *submission.Submission) string {
	var b strings.Builder
	b.WriteString(`<table style="width:100%;border-collapse:collapse">`)
	for _, kv := range orderedValues(f, s) {
		v := html.EscapeString(html.UnescapeString(kv[1]))
		fmt.Fprintf(&b,
			`<tr><td style="padding:8px 12px;border-bottom:1px solid #eee;font-weight:bold;vertical-align:top">%s</td>`+
				`<td style="padding:8px 12px;border-bottom:1px solid #eee">%s</td></tr>`,
			html.EscapeString(kv[0]), strings.ReplaceAll(v, "\n", "<br>"))
	}
	b.WriteString(`</table>`)
	return b.String()
}

// fieldsText renders the submitted values as plain text lines.
func fieldsText(f *form.Form, s *submission.Submission) string {
	var b strings.Builder
	for _, kv := range orderedValues(f, s) {
		fmt.Fprintf(&b, "%s: %s\n", kv[0], html.UnescapeString(kv[1]))
	}
	return b.String()
}

// textToHTML converts a plain-text body into a minimal HTML fragment.
func textToHTML(s string) string {
	return "<p>" + strings.ReplaceAll(html.EscapeString(s), "\n", "<br>") + "</p>"
}

// -----------------------------------------------------------------------------
// Address helpers
// -----------------------------------------------------------------------------

// splitRecipients splits a comma-separated recipient setting.
func splitRecipients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fromAddress falls back to a no-reply at the site host when unset.
func fromAddress(eff settings.Effective) string {
	if eff.FromAddress != "" {
		return eff.FromAddress
	}
	host := strings.TrimPrefix(strings.TrimPrefix(eff.SiteURL, "https://"), "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		host = "localhost"
	}
	return "no-reply@" + host
}
