// internal/hooks/hooks_test.go
//
// Run: go test ./internal/hooks -v

package hooks

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/submission"
)

func TestWebhookDelivery(t *testing.T) {
	got := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- b
	}))
	defer srv.Close()

	d := NewDispatcher([]string{srv.URL})
	d.SubmissionStored(
		&form.Form{ID: 1, Title: "Contact"},
		&submission.Submission{ID: 9, FormID: 1, Data: map[string]string{"name": "Ada"}},
	)

	select {
	case body := <-got:
		var p webhookPayload
		require.NoError(t, json.Unmarshal(body, &p))
		assert.Equal(t, "submission.stored", p.Event)
		assert.Equal(t, int64(1), p.FormID)
		assert.Equal(t, "Ada", p.Data["name"])
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never delivered")
	}
}

func TestListenersRun(t *testing.T) {
	fired := make(chan int64, 1)
	d := NewDispatcher(nil)
	d.Subscribe(func(_ *form.Form, s *submission.Submission) { fired <- s.ID })

	d.SubmissionStored(&form.Form{ID: 1}, &submission.Submission{ID: 42})

	select {
	case id := <-fired:
		assert.Equal(t, int64(42), id)
	case <-time.After(2 * time.Second):
		t.Fatal("listener was never invoked")
	}
}
