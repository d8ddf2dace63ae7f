// internal/recaptcha/recaptcha.go
//
// FormRelayer – reCAPTCHA v3 verification client.
//
// Context
//   When a secret is configured, each submission must carry a client token
//   which we verify against Google's siteverify endpoint, requiring
//   success=true and score ≥ threshold.  The secret and threshold come from
//   resolved settings, so they are passed per call rather than fixed at
//   construction; admins can rotate keys without a restart.
//
//   Policy: transport failures FAIL OPEN.  If the verification service is
//   unreachable or times out, the submission is allowed and a warning is
//   logged.  This trades strict spam blocking for availability so a provider
//   outage never blocks legitimate users.  A missing token, success=false,
//   or a low score fail CLOSED as usual.  Do not flip this to fail-closed
//   without an explicit product decision.
//
//------------------------------------------------------------------------------

package recaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const verifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Client calls the siteverify endpoint with a bounded timeout.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a Client with a five second request budget.
func New() *Client {
	return &Client{
		endpoint: verifyURL,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a client token against secret and threshold.  The boolean is
// the admission decision after the fail-open policy is applied; callers never
// need a second return to decide.  An empty secret means verification is not
// configured and everything is allowed.
func (c *Client) Verify(ctx context.Context, secret string, threshold float64, token, remoteIP string) bool {
	if secret == "" {
		return true
	}
	if token == "" {
		// Enabled but no token: the client never ran the widget.  Closed.
		return false
	}

	body := url.Values{
		"secret":   {secret},
		"response": {token},
	}
	if remoteIP != "" {
		body.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(body.Encode()))
	if err != nil {
		zap.S().Warnw("recaptcha request build failed, failing open", "err", err)
		return true
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		zap.S().Warnw("recaptcha verify unreachable, failing open", "err", err)
		return true
	}
	defer resp.Body.Close()

	var parsed verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		zap.S().Warnw("recaptcha verify unparseable, failing open", "err", err)
		return true
	}

	if !parsed.Success {
		zap.S().Infow("recaptcha rejected", "codes", parsed.ErrorCodes)
		return false
	}
	if parsed.Score < threshold {
		zap.S().Infow("recaptcha score below threshold",
			"score", parsed.Score, "threshold", threshold)
		return false
	}
	return true
}
