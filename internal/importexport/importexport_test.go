// internal/importexport/importexport_test.go
//
// Round-trip and partial-failure tests.
//
// Run: go test ./internal/importexport -v

package importexport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
)

type fakeCreator struct {
	created []*form.Form
	failOn  string // title that triggers a failure
}

func (c *fakeCreator) Create(_ context.Context, f *form.Form) (int64, error) {
	if f.Title == c.failOn {
		return 0, assert.AnError
	}
	f.ID = int64(len(c.created) + 1)
	c.created = append(c.created, f)
	return f.ID, nil
}

func sourceForm() *form.Form {
	return &form.Form{
		ID: 7, Slug: "feedback", Title: "Feedback", Status: form.StatusPublished,
		Fields: []schema.Field{
			{ID: "rating", Type: "select", Label: "Rating", Required: true, Options: "Great, Okay, Poor"},
			{ID: "why", Type: "textarea", Label: "Tell us more", Condition: &schema.Condition{
				Enabled: true, Action: "show", Field: "rating", Operator: "not_equals", Value: "Great",
			}},
		},
		Settings: settings.Overrides{SuccessMessage: "Thanks!", RedirectURL: "https://example.com/done"},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	env, err := ExportForm(sourceForm())
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	repo := &fakeCreator{}
	res, err := Import(context.Background(), repo, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, res.Failed)

	require.Len(t, repo.created, 1)
	got := repo.created[0]

	// Imports always land as drafts, regardless of the exported status.
	assert.Equal(t, form.StatusDraft, got.Status)

	// Field count and content survive; IDs are all fresh and distinct.
	src := sourceForm()
	require.Len(t, got.Fields, len(src.Fields))
	seen := map[string]bool{}
	for i := range got.Fields {
		assert.NotEqual(t, src.Fields[i].ID, got.Fields[i].ID, "field %d kept its old ID", i)
		assert.False(t, seen[got.Fields[i].ID], "duplicate imported ID")
		seen[got.Fields[i].ID] = true
	}
	if diff := cmp.Diff(src.Fields, got.Fields,
		cmpopts.IgnoreFields(schema.Field{}, "ID", "Width"),
		cmpopts.IgnoreFields(schema.Condition{}, "Field"),
	); diff != "" {
		t.Errorf("field content changed in transit (-want +got):\n%s", diff)
	}

	// The condition reference follows the regenerated trigger ID.
	require.NotNil(t, got.Fields[1].Condition)
	assert.Equal(t, got.Fields[0].ID, got.Fields[1].Condition.Field)

	// Allow-listed settings survive.
	assert.Equal(t, "Thanks!", got.Settings.SuccessMessage)
	assert.Equal(t, "https://example.com/done", got.Settings.RedirectURL)
}

func TestImportDropsUnknownSettingKeys(t *testing.T) {
	raw := []byte(`{"version":"1.0","form":{"title":"T","fields":[],
        "settings":{"success_message":"ok","recaptcha_secret":"stolen","site_name":"evil"}}}`)

	repo := &fakeCreator{}
	res, err := Import(context.Background(), repo, raw)
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	assert.Equal(t, "ok", repo.created[0].Settings.SuccessMessage)
}

func TestBulkImportPartialFailure(t *testing.T) {
	env, err := ExportAll([]*form.Form{
		{Title: "Good one", Fields: []schema.Field{{ID: "a", Type: "text"}}},
		{Title: "Bad one", Fields: []schema.Field{{ID: "b", Type: "text"}}},
		{Title: "Another good", Fields: []schema.Field{{ID: "c", Type: "text"}}},
	}, "https://example.com")
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	repo := &fakeCreator{failOn: "Bad one"}
	res, err := Import(context.Background(), repo, raw)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Bad one")
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import(context.Background(), &fakeCreator{}, []byte(`not json`))
	assert.Error(t, err)

	_, err = Import(context.Background(), &fakeCreator{}, []byte(`{"hello":"world"}`))
	assert.Error(t, err)
}
