// internal/submission/validate_test.go
//
// Run: go test ./internal/submission -v

package submission

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formrelayer/formrelayer/internal/schema"
)

func TestRequiredErrorsKeyedByFieldID(t *testing.T) {
	fields := []schema.Field{
		{ID: "name", Type: "text", Required: true},
		{ID: "email", Type: "email", Required: true},
		{ID: "note", Type: "textarea"},
	}

	_, errs := Collect(fields, url.Values{"note": {"hi"}})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.NotContains(t, errs, "note")
}

func TestEmailShapes(t *testing.T) {
	fields := []schema.Field{{ID: "email", Type: "email", Required: true}}

	for _, good := range []string{"a@b.co", "first.last@sub.domain.org"} {
		_, errs := Collect(fields, url.Values{"email": {good}})
		assert.Empty(t, errs, "accept %q", good)
	}
	for _, bad := range []string{"plainaddress", "a@", "@b.co", "a b@c.co"} {
		_, errs := Collect(fields, url.Values{"email": {bad}})
		assert.Contains(t, errs, "email", "reject %q", bad)
	}
}

func TestHiddenFieldSkipsRequired(t *testing.T) {
	fields := []schema.Field{
		{ID: "rating", Type: "select", Options: "Great, Poor"},
		{ID: "why", Type: "textarea", Required: true, Condition: &schema.Condition{
			Enabled: true, Action: "show", Field: "rating", Operator: "equals", Value: "Poor",
		}},
	}

	// Rating "Great" hides "why"; its required flag must not fire, and any
	// posted value for it must be discarded.
	clean, errs := Collect(fields, url.Values{"rating": {"Great"}, "why": {"sneaky"}})
	assert.Empty(t, errs)
	assert.NotContains(t, clean, "why")

	// Rating "Poor" shows "why"; now it is required.
	_, errs = Collect(fields, url.Values{"rating": {"Poor"}})
	assert.Contains(t, errs, "why")
}

func TestCheckboxGroupOptionMembership(t *testing.T) {
	fields := []schema.Field{
		{ID: "toppings", Type: "checkbox", Options: "Cheese, Mushrooms, Olives"},
	}

	clean, errs := Collect(fields, url.Values{"toppings[]": {"Cheese", "Olives"}})
	assert.Empty(t, errs)
	assert.Equal(t, "Cheese, Olives", clean["toppings"])

	_, errs = Collect(fields, url.Values{"toppings[]": {"Cheese", "Anchovies"}})
	assert.Contains(t, errs, "toppings")
}

func TestPhoneNeedsADigit(t *testing.T) {
	fields := []schema.Field{{ID: "phone", Type: "phone"}}

	_, errs := Collect(fields, url.Values{"phone": {"+44 20 7946 0958"}})
	assert.Empty(t, errs)

	_, errs = Collect(fields, url.Values{"phone": {"call me maybe"}})
	assert.Contains(t, errs, "phone")
}

func TestTextIsEscapedAndTrimmed(t *testing.T) {
	fields := []schema.Field{{ID: "name", Type: "text"}}

	clean, errs := Collect(fields, url.Values{"name": {"  <b>Ada</b>  "}})
	assert.Empty(t, errs)
	assert.Equal(t, "&lt;b&gt;Ada&lt;/b&gt;", clean["name"])
}

func TestDisplayOnlyFieldsIgnored(t *testing.T) {
	fields := []schema.Field{
		{ID: "hdr", Type: "header", Label: "Contact us"},
		{ID: "blurb", Type: "html", Content: "<p>Hi</p>"},
	}

	clean, errs := Collect(fields, url.Values{"hdr": {"x"}, "blurb": {"y"}})
	assert.Empty(t, errs)
	assert.Empty(t, clean)
}
