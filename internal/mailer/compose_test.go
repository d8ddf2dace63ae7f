// internal/mailer/compose_test.go
//
// Run: go test ./internal/mailer -v

package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/submission"
)

type captureSender struct{ sent []Email }

func (c *captureSender) Send(_ context.Context, msg Email) error {
	c.sent = append(c.sent, msg)
	return nil
}

func testForm() *form.Form {
	return &form.Form{
		ID: 1, Title: "Contact",
		Fields: []schema.Field{
			{ID: "name", Type: "text", Label: "Name"},
			{ID: "email", Type: "email", Label: "Email"},
			{ID: "message", Type: "textarea", Label: "Message"},
		},
	}
}

func testSubmission() *submission.Submission {
	return &submission.Submission{
		ID: 9, FormID: 1,
		Data: map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"message": "Line one\nLine two",
		},
		SubmittedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func testEffective() settings.Effective {
	return settings.Resolve(settings.Overrides{}, settings.Global{
		SiteName:       "Example Co",
		SiteURL:        "https://example.com",
		RecipientEmail: "owner@example.com, backup@example.com",
	})
}

func TestNotifyComposesFieldTable(t *testing.T) {
	sender := &captureSender{}
	eff := testEffective()

	require.NoError(t, NewComposer(sender).Notify(context.Background(), testForm(), eff, testSubmission()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"owner@example.com", "backup@example.com"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo, "reply-to follows the detected email field")
	assert.Contains(t, msg.Subject, "Contact")
	assert.Contains(t, msg.HTML, "Ada")
	assert.Contains(t, msg.HTML, "Line one<br>Line two")
	assert.Contains(t, msg.Text, "Name: Ada")
	assert.Equal(t, "no-reply@example.com", msg.From, "from falls back to the site host")
}

func TestNotifyEscapesTypedValuesInHTML(t *testing.T) {
	// Email and url values are stored literally, and both types legally
	// admit markup: a quoted local-part or angle brackets in a path.  The
	// HTML table must entity-escape them without double-escaping values
	// that were stored escaped.
	sender := &captureSender{}
	f := &form.Form{ID: 3, Title: "Links", Fields: []schema.Field{
		{ID: "name", Type: "text", Label: "Name"},
		{ID: "email", Type: "email", Label: "Email"},
		{ID: "site", Type: "url", Label: "Site"},
	}}
	s := &submission.Submission{
		FormID: 3,
		Data: map[string]string{
			"name":  "Ada &amp; Co",
			"email": `"<img src=x onerror=alert(1)>"@example.com`,
			"site":  "http://x/<img src=x onerror=alert(1)>",
		},
		SubmittedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, NewComposer(sender).Notify(context.Background(), f, testEffective(), s))
	require.Len(t, sender.sent, 1)

	html := sender.sent[0].HTML
	assert.NotContains(t, html, "<img", "raw markup must never reach the HTML body")
	assert.Contains(t, html, "&lt;img src=x onerror=alert(1)&gt;")
	assert.Contains(t, html, "Ada &amp; Co")
	assert.NotContains(t, html, "&amp;amp;", "stored-escaped values must not be escaped twice")
}

func TestAutoReplyPlaceholders(t *testing.T) {
	sender := &captureSender{}
	eff := testEffective()
	eff.AutoReplySubject = "Thanks from {site_name}"
	eff.AutoReplyMessage = "Hi {name}, we got your note on {date}.\n\n{all_fields}"

	require.NoError(t, NewComposer(sender).AutoReply(context.Background(), testForm(), eff, testSubmission()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Thanks from Example Co", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Ada, we got your note on March 14, 2026.")
	assert.Contains(t, msg.Text, "Email: ada@example.com")
}

func TestAutoReplyWithoutEmailFieldIsNoop(t *testing.T) {
	sender := &captureSender{}
	f := &form.Form{ID: 2, Title: "Poll", Fields: []schema.Field{
		{ID: "choice", Type: "radio", Options: "A, B"},
	}}
	s := &submission.Submission{FormID: 2, Data: map[string]string{"choice": "A"}}

	require.NoError(t, NewComposer(sender).AutoReply(context.Background(), f, testEffective(), s))
	assert.Empty(t, sender.sent)
}

func TestTemplateSelection(t *testing.T) {
	inner := "<table></table>"
	eff := testEffective()

	for _, name := range []string{"default", "plain", "modern", "corporate", "dark"} {
		out := wrapHTML(name, inner, "Subject", eff)
		assert.Contains(t, out, inner, "template %q must embed the inner fragment", name)
	}

	// Unknown names fall back to default rather than failing.
	assert.Equal(t,
		wrapHTML("default", inner, "Subject", eff),
		wrapHTML("no-such-template", inner, "Subject", eff))

	// Custom substitutes its placeholders.
	eff.CustomEmailHTML = `<div>{site_name}: {subject}</div><main>{all_fields}</main>`
	out := wrapHTML("custom", inner, "Hello", eff)
	assert.Contains(t, out, "Example Co: Hello")
	assert.Contains(t, out, "<main>"+inner+"</main>")
}

func TestRenderMultipart(t *testing.T) {
	raw := string(render(Email{
		To: []string{"a@b.co"}, From: "no-reply@example.com",
		Subject: "S", Text: "plain", HTML: "<p>rich</p>",
	}))
	assert.True(t, strings.Contains(raw, "multipart/alternative"))
	assert.Contains(t, raw, "plain")
	assert.Contains(t, raw, "<p>rich</p>")
}
