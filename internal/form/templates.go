// internal/form/templates.go
//
// FormRelayer – predefined form templates.
//
// Context
//   "Apply template" in the builder creates a new form from one of these
//   bundles: a field list plus a handful of settings.  Field IDs here are
//   placeholders; NewFromTemplate regenerates them so two forms created from
//   the same template never share IDs.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"

	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
)

// Template bundles a starting Field Schema and settings.
type Template struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Fields   []schema.Field     `json:"-"`
	Settings settings.Overrides `json:"-"`
}

// Templates returns the catalog in display order.
func Templates() []Template {
	return []Template{
		{
			Name:        "blank",
			Title:       "Blank Form",
			Description: "Start from scratch.",
			Fields:      []schema.Field{},
		},
		{
			Name:        "contact",
			Title:       "Contact Form",
			Description: "Name, email, and message.",
			Fields: []schema.Field{
				{ID: "name", Type: "text", Label: "Name", Required: true, Width: 50},
				{ID: "email", Type: "email", Label: "Email", Required: true, Width: 50},
				{ID: "subject", Type: "text", Label: "Subject", Width: 100},
				{ID: "message", Type: "textarea", Label: "Message", Required: true, Width: 100},
			},
			Settings: settings.Overrides{ButtonText: "Send Message"},
		},
		{
			Name:        "feedback",
			Title:       "Feedback Survey",
			Description: "Rating with a conditional follow-up.",
			Fields: []schema.Field{
				{ID: "email", Type: "email", Label: "Email", Width: 100},
				{ID: "rating", Type: "radio", Label: "How was your experience?", Required: true,
					Options: "Great,Okay,Poor", Width: 100},
				{ID: "improve", Type: "textarea", Label: "What could we improve?", Width: 100,
					Condition: &schema.Condition{Enabled: true, Action: "show", Field: "rating",
						Operator: "not_equals", Value: "Great"}},
			},
			Settings: settings.Overrides{ButtonText: "Submit Feedback"},
		},
		{
			Name:        "quote",
			Title:       "Quote Request",
			Description: "Lead capture with budget and project details.",
			Fields: []schema.Field{
				{ID: "name", Type: "text", Label: "Name", Required: true, Width: 50},
				{ID: "email", Type: "email", Label: "Email", Required: true, Width: 50},
				{ID: "phone", Type: "phone", Label: "Phone", Width: 50},
				{ID: "budget", Type: "select", Label: "Budget",
					Options: "Under $1,000\n$1,000 – $5,000\n$5,000 – $20,000\nOver $20,000", Width: 50},
				{ID: "details", Type: "textarea", Label: "Project details", Required: true, Width: 100},
			},
			Settings: settings.Overrides{ButtonText: "Request Quote"},
		},
		{
			Name:        "event",
			Title:       "Event Registration",
			Description: "Attendee details with dietary follow-up.",
			Fields: []schema.Field{
				{ID: "name", Type: "text", Label: "Full name", Required: true, Width: 50},
				{ID: "email", Type: "email", Label: "Email", Required: true, Width: 50},
				{ID: "tickets", Type: "number", Label: "Number of tickets", Required: true, Width: 50},
				{ID: "diet", Type: "checkbox", Label: "Dietary requirements",
					Options: "Vegetarian,Vegan,Gluten-free,Other", Width: 50},
				{ID: "diet_other", Type: "text", Label: "Tell us more", Width: 100,
					Condition: &schema.Condition{Enabled: true, Action: "show", Field: "diet",
						Operator: "contains", Value: "Other"}},
			},
			Settings: settings.Overrides{ButtonText: "Register"},
		},
	}
}

// TemplateByName finds a catalog entry.
func TemplateByName(name string) (Template, error) {
	for _, t := range Templates() {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown form template %q", name)
}

// NewFromTemplate builds an unsaved Form from a template.  Field IDs are
// regenerated so repeat applications never collide.
func NewFromTemplate(name, title string) (*Form, error) {
	t, err := TemplateByName(name)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = t.Title
	}

	fields := make([]schema.Field, len(t.Fields))
	copy(fields, t.Fields)
	// Deep-copy conditions; Regenerate mutates them.
	for i := range fields {
		if c := fields[i].Condition; c != nil {
			cc := *c
			fields[i].Condition = &cc
		}
	}
	schema.Regenerate(fields)
	schema.Normalize(fields)

	return &Form{
		Title:    title,
		Status:   StatusDraft,
		Fields:   fields,
		Settings: t.Settings,
	}, nil
}
