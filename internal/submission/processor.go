// internal/submission/processor.go
//
// FormRelayer – the submission pipeline.
//
// Context
//   Every POST against a form runs this fixed gauntlet, in order, with each
//   gate short-circuiting the rest:
//
//       nonce → rate limit → honeypot → sanitize+validate → GDPR consent
//             → reCAPTCHA → persist → notification → auto-reply → hooks
//
//   The order is deliberate: cheap rejections first, storage only after
//   every gate passes, and email/hook delivery strictly after the row is
//   safely on disk so a mail outage can never lose a submission.  Email and
//   hook failures are logged and counted but never fail the request; there
//   is exactly one delivery attempt, no retry.
//
// Workflow
//   •  The HTTP handler resolves the form and its Effective settings, then
//      calls Process with the parsed values and request metadata.
//   •  Process returns a Result carrying the HTTP status, the user-facing
//      message, per-field errors for 422s, and the redirect URL when one is
//      configured.  A configured redirect wins over the success message.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/metrics"
	"github.com/formrelayer/formrelayer/internal/nonce"
	"github.com/formrelayer/formrelayer/internal/ratelimit"
	"github.com/formrelayer/formrelayer/internal/recaptcha"
	"github.com/formrelayer/formrelayer/internal/render"
	"github.com/formrelayer/formrelayer/internal/settings"
)

// Well-known input names the processor reads alongside the field values.
const (
	CaptchaField = "g-recaptcha-response"
	ConsentField = "fr_gdpr"
)

// pipeline-level user messages.  Field-level messages live in validate.go.
const (
	msgBadNonce    = "Security check failed.  Please reload the page and try again."
	msgRateLimited = "Too many submissions.  Please try again later."
	msgRejected    = "Your submission could not be accepted."
	msgFixErrors   = "Please correct the highlighted fields."
	msgConsent     = "Please accept the privacy notice to continue."
	msgStorage     = "Something went wrong on our side.  Please try again later."
)

// Result is the pipeline outcome the handler turns into an HTTP response.
type Result struct {
	Status   int               `json:"-"`
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// Store is the persistence slice of Repository the processor needs.
type Store interface {
	Insert(ctx context.Context, s *Submission) error
}

// Notifier delivers the admin notification and the visitor auto-reply.
// Implementations must treat failures as their own concern; the processor
// only logs the returned error.
type Notifier interface {
	Notify(ctx context.Context, f *form.Form, eff settings.Effective, s *Submission) error
	AutoReply(ctx context.Context, f *form.Form, eff settings.Effective, s *Submission) error
}

// Hooks receives lifecycle events after a submission is stored.
type Hooks interface {
	SubmissionStored(f *form.Form, s *Submission)
}

// Processor wires the pipeline's collaborators together.
type Processor struct {
	store    Store
	limiter  *ratelimit.Limiter
	captcha  *recaptcha.Client
	notifier Notifier
	hooks    Hooks
}

// NewProcessor assembles a Processor.  notifier and hooks may be nil, which
// disables the corresponding stage.
func NewProcessor(store Store, limiter *ratelimit.Limiter, captcha *recaptcha.Client, notifier Notifier, hooks Hooks) *Processor {
	return &Processor{
		store:    store,
		limiter:  limiter,
		captcha:  captcha,
		notifier: notifier,
		hooks:    hooks,
	}
}

// Process runs the full pipeline for one POST.
func (p *Processor) Process(ctx context.Context, f *form.Form, eff settings.Effective, posted url.Values, meta Meta) Result {
	log := zap.S().With("form", f.ID, "ip", meta.IP)

	// ----- gate: nonce ------------------------------------------------------
	if !nonce.Verify(posted.Get(nonce.FieldName)) {
		metrics.SubmissionsTotal.WithLabelValues("nonce").Inc()
		log.Infow("submission rejected", "gate", "nonce")
		return Result{Status: 400, Message: msgBadNonce}
	}

	// ----- gate: rate limit -------------------------------------------------
	window := time.Duration(eff.RateLimitWindow) * time.Second
	if !p.limiter.Allow(meta.IP, eff.RateLimitCount, window) {
		metrics.SubmissionsTotal.WithLabelValues("rate_limited").Inc()
		log.Infow("submission rejected", "gate", "rate_limit")
		return Result{Status: 429, Message: msgRateLimited}
	}

	// ----- gate: honeypot ---------------------------------------------------
	if eff.HoneypotEnabled && posted.Get(render.HoneypotField) != "" {
		metrics.SubmissionsTotal.WithLabelValues("honeypot").Inc()
		log.Infow("submission rejected", "gate", "honeypot")
		return Result{Status: 403, Message: msgRejected}
	}

	// ----- sanitize + validate ----------------------------------------------
	clean, fieldErrs := Collect(f.Fields, posted)
	if len(fieldErrs) > 0 {
		metrics.SubmissionsTotal.WithLabelValues("validation").Inc()
		return Result{Status: 422, Message: msgFixErrors, Errors: fieldErrs}
	}

	// ----- gate: GDPR consent -----------------------------------------------
	if eff.GDPREnabled && eff.GDPRRequired && posted.Get(ConsentField) == "" {
		metrics.SubmissionsTotal.WithLabelValues("gdpr").Inc()
		return Result{Status: 422, Message: msgConsent,
			Errors: map[string]string{ConsentField: msgConsent}}
	}

	// ----- gate: reCAPTCHA --------------------------------------------------
	if !p.captcha.Verify(ctx, eff.RecaptchaSecret, eff.RecaptchaThreshold,
		posted.Get(CaptchaField), meta.IP) {
		metrics.SubmissionsTotal.WithLabelValues("captcha").Inc()
		log.Infow("submission rejected", "gate", "captcha")
		return Result{Status: 403, Message: msgRejected}
	}

	// ----- persist ----------------------------------------------------------
	sub := &Submission{
		FormID:      f.ID,
		Title:       DeriveTitle(f, clean),
		Data:        clean,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Country:     meta.Country,
		SubmittedAt: time.Now(),
	}
	if err := p.store.Insert(ctx, sub); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("storage").Inc()
		log.Errorw("submission store failed", "err", err)
		return Result{Status: 500, Message: msgStorage}
	}
	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()

	// ----- deliveries: one attempt each, never fatal ------------------------
	if p.notifier != nil && eff.RecipientEmail != "" {
		if err := p.notifier.Notify(ctx, f, eff, sub); err != nil {
			log.Errorw("notification email failed", "err", err)
		}
	}
	if p.notifier != nil && eff.AutoReply {
		if err := p.notifier.AutoReply(ctx, f, eff, sub); err != nil {
			log.Errorw("auto-reply email failed", "err", err)
		}
	}
	if p.hooks != nil {
		p.hooks.SubmissionStored(f, sub)
	}

	return Result{
		Status:   200,
		Success:  true,
		Message:  eff.SuccessMessage,
		Redirect: eff.RedirectURL,
	}
}
