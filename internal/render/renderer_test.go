// internal/render/renderer_test.go
//
// Markup-shape tests for the field renderer.  These assert on stable
// attribute fragments, not whole documents, so cosmetic markup changes do
// not churn the suite.
//
// Run: go test ./internal/render -v

package render

import (
	"strings"
	"testing"

	"github.com/formrelayer/formrelayer/internal/schema"
)

func renderOne(t *testing.T, f schema.Field, mode Mode) string {
	t.Helper()
	fields := []schema.Field{f}
	schema.Normalize(fields)
	out, err := Fields(fields, mode)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	return string(out)
}

func TestCheckboxGroupNaming(t *testing.T) {
	// No options: one boolean checkbox named exactly the field ID.
	single := renderOne(t, schema.Field{ID: "agree", Type: "checkbox", Label: "Agree"}, ModeLive)
	if !strings.Contains(single, `name="agree"`) {
		t.Errorf("single checkbox should be named by field id:\n%s", single)
	}
	if strings.Contains(single, `name="agree[]"`) {
		t.Errorf("single checkbox must not use array naming:\n%s", single)
	}

	// With options: N boxes, each named id[].
	group := renderOne(t, schema.Field{ID: "colors", Type: "checkbox", Label: "Colors", Options: "Red,Green,Blue"}, ModeLive)
	if got := strings.Count(group, `name="colors[]"`); got != 3 {
		t.Errorf("want 3 checkboxes named colors[], got %d:\n%s", got, group)
	}
}

func TestRadioRequiredOnFirstOptionOnly(t *testing.T) {
	out := renderOne(t, schema.Field{ID: "size", Type: "radio", Label: "Size", Required: true, Options: "S,M,L"}, ModeLive)
	if got := strings.Count(out, " required"); got != 1 {
		t.Errorf("required must appear exactly once in a radio group, got %d:\n%s", got, out)
	}
}

func TestEscaping(t *testing.T) {
	out := renderOne(t, schema.Field{
		ID:          "name",
		Type:        "text",
		Label:       `<script>alert(1)</script>`,
		Placeholder: `" onmouseover="x`,
	}, ModeLive)
	if strings.Contains(out, "<script>") {
		t.Error("label was not escaped")
	}
	if strings.Contains(out, `" onmouseover="`) {
		t.Error("placeholder attribute was not escaped")
	}
}

func TestHTMLContentSanitized(t *testing.T) {
	out := renderOne(t, schema.Field{
		ID:      "blurb",
		Type:    "html",
		Content: `<p>Hello <b>there</b></p><script>alert(1)</script>`,
	}, ModeLive)
	if !strings.Contains(out, "<p>Hello <b>there</b></p>") {
		t.Errorf("benign markup should survive:\n%s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Error("script element survived sanitization")
	}
	if strings.Contains(out, `name="blurb"`) {
		t.Error("html field must not render an input")
	}
}

func TestHeaderAndHidden(t *testing.T) {
	head := renderOne(t, schema.Field{ID: "h", Type: "header", Label: "Contact us"}, ModeLive)
	if !strings.Contains(head, "<h3") || strings.Contains(head, "<input") {
		t.Errorf("header should render a heading without inputs:\n%s", head)
	}

	hid := renderOne(t, schema.Field{ID: "src", Type: "hidden", Default: "landing-a"}, ModeLive)
	if !strings.Contains(hid, `type="hidden"`) || !strings.Contains(hid, `value="landing-a"`) {
		t.Errorf("hidden field should carry its value:\n%s", hid)
	}
	if strings.Contains(hid, "<label") {
		t.Error("hidden field must not render a label")
	}
}

func TestUnknownTypeFallsBackToText(t *testing.T) {
	out := renderOne(t, schema.Field{ID: "x", Type: "signature", Label: "Sign"}, ModeLive)
	if !strings.Contains(out, `type="text"`) {
		t.Errorf("unknown type should degrade to text input:\n%s", out)
	}
}

func TestLiveModeSecurityInputs(t *testing.T) {
	live := renderOne(t, schema.Field{ID: "a", Type: "text", Label: "A"}, ModeLive)
	if !strings.Contains(live, `name="fr_nonce"`) {
		t.Error("live mode missing nonce input")
	}
	if !strings.Contains(live, `name="`+HoneypotField+`"`) {
		t.Error("live mode missing honeypot input")
	}

	prev := renderOne(t, schema.Field{ID: "a", Type: "text", Label: "A"}, ModePreview)
	if strings.Contains(prev, `name="fr_nonce"`) || strings.Contains(prev, HoneypotField) {
		t.Error("preview mode must omit security inputs")
	}
	if !strings.Contains(prev, " disabled") {
		t.Error("preview inputs should be disabled")
	}
}

func TestInitialVisibility(t *testing.T) {
	fields := []schema.Field{
		{ID: "plan", Type: "select", Label: "Plan", Options: "Free,Pro", Default: "Free"},
		{ID: "cc", Type: "text", Label: "Card",
			Condition: &schema.Condition{Enabled: true, Action: "show", Field: "plan", Operator: "equals", Value: "Pro"}},
		{ID: "note", Type: "text", Label: "Note",
			Condition: &schema.Condition{Enabled: true, Action: "show", Field: "missing", Operator: "equals", Value: "x"}},
	}
	schema.Normalize(fields)
	out, err := Fields(fields, ModeLive)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	html := string(out)

	// Card field starts hidden (plan defaults to Free, rule wants Pro) and
	// carries the client rule payload.
	if !strings.Contains(html, "fr-hidden") {
		t.Error("conditionally hidden field should carry fr-hidden at first paint")
	}
	if !strings.Contains(html, "data-fr-cond") {
		t.Error("conditional field missing data-fr-cond attribute")
	}

	// Dangling trigger: the rule no-ops and the note field stays visible, so
	// exactly one holder is hidden.
	if got := strings.Count(html, "fr-hidden"); got != 1 {
		t.Errorf("want exactly 1 hidden field, got %d:\n%s", got, html)
	}
}
