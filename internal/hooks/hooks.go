// internal/hooks/hooks.go
//
// FormRelayer – post-submission hook dispatch.
//
// Context
//   Integrations (CRM connectors, notification bridges, future add-ons)
//   subscribe to submission lifecycle events.  Two kinds of targets exist:
//   in-process listeners registered at boot, and webhook URLs configured via
//   FR_WEBHOOK_URLS.  Dispatch is fire-and-forget on a goroutine with its
//   own timeout; a slow or failing target is logged and counted, and never
//   affects the HTTP response that triggered it.
//
//------------------------------------------------------------------------------

package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/metrics"
	"github.com/formrelayer/formrelayer/internal/submission"
)

const deliverTimeout = 10 * time.Second

// Listener is an in-process subscriber.
type Listener func(f *form.Form, s *submission.Submission)

// Dispatcher fans submission events out to listeners and webhooks.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
	webhooks  []string
	client    *http.Client
}

// NewDispatcher returns a Dispatcher posting to the given webhook URLs.
func NewDispatcher(webhookURLs []string) *Dispatcher {
	return &Dispatcher{
		webhooks: webhookURLs,
		client:   &http.Client{Timeout: deliverTimeout},
	}
}

// Subscribe registers an in-process listener.  Listeners run on the dispatch
// goroutine and should return quickly.
func (d *Dispatcher) Subscribe(l Listener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// webhookPayload is the JSON body posted to each webhook URL.
type webhookPayload struct {
	Event       string            `json:"event"`
	FormID      int64             `json:"form_id"`
	FormTitle   string            `json:"form_title"`
	Submission  int64             `json:"submission_id"`
	Data        map[string]string `json:"data"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// SubmissionStored dispatches the event asynchronously and returns at once.
func (d *Dispatcher) SubmissionStored(f *form.Form, s *submission.Submission) {
	go d.deliver(f, s)
}

func (d *Dispatcher) deliver(f *form.Form, s *submission.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	d.mu.RLock()
	listeners := d.listeners
	d.mu.RUnlock()
	for _, l := range listeners {
		l(f, s)
	}

	if len(d.webhooks) == 0 {
		return
	}
	body, err := json.Marshal(webhookPayload{
		Event:       "submission.stored",
		FormID:      f.ID,
		FormTitle:   f.Title,
		Submission:  s.ID,
		Data:        s.Data,
		SubmittedAt: s.SubmittedAt,
	})
	if err != nil {
		zap.S().Errorw("webhook payload marshal failed", "err", err)
		return
	}

	for _, url := range d.webhooks {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			metrics.WebhookErrorsTotal.Inc()
			zap.S().Errorw("webhook request build failed", "url", url, "err", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			metrics.WebhookErrorsTotal.Inc()
			zap.S().Warnw("webhook delivery failed", "url", url, "err", err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			metrics.WebhookErrorsTotal.Inc()
			zap.S().Warnw("webhook delivery rejected", "url", url, "status", resp.StatusCode)
		}
	}
}
