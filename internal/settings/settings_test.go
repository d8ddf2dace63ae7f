// internal/settings/settings_test.go
//
// Tests for the pure layered resolution: form override → global → fallback.
//
// Run: go test ./internal/settings -v

package settings

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestResolveLayering(t *testing.T) {
	g := Global{
		RecipientEmail: "owner@example.com",
		SuccessMessage: "Global thanks",
		AutoReply:      true,
	}

	// No overrides: global wins where set, fallback elsewhere.
	e := Resolve(Overrides{}, g)
	if e.RecipientEmail != "owner@example.com" {
		t.Errorf("recipient: %q", e.RecipientEmail)
	}
	if e.SuccessMessage != "Global thanks" {
		t.Errorf("success message: %q", e.SuccessMessage)
	}
	if !e.AutoReply {
		t.Error("auto-reply should inherit global true")
	}
	if e.ButtonText != "Send" {
		t.Errorf("button text fallback: %q", e.ButtonText)
	}
	if e.EmailTemplate != "default" {
		t.Errorf("template fallback: %q", e.EmailTemplate)
	}

	// Form overrides take precedence, including an explicit false.
	o := Overrides{
		RecipientEmail: "sales@example.com",
		AutoReply:      boolPtr(false),
		ButtonText:     "Request quote",
	}
	e = Resolve(o, g)
	if e.RecipientEmail != "sales@example.com" {
		t.Errorf("override recipient: %q", e.RecipientEmail)
	}
	if e.AutoReply {
		t.Error("explicit false override must beat global true")
	}
	if e.ButtonText != "Request quote" {
		t.Errorf("override button text: %q", e.ButtonText)
	}
}

func TestResolveNumericDefaults(t *testing.T) {
	e := Resolve(Overrides{}, Global{})
	if e.RateLimitCount != 5 || e.RateLimitWindow != 60 {
		t.Errorf("rate limit defaults: %d/%d", e.RateLimitCount, e.RateLimitWindow)
	}
	if e.RecaptchaThreshold != 0.5 {
		t.Errorf("threshold default: %v", e.RecaptchaThreshold)
	}

	e = Resolve(Overrides{}, Global{RateLimitCount: 20, RateLimitWindow: 300, RecaptchaThreshold: 0.9})
	if e.RateLimitCount != 20 || e.RateLimitWindow != 300 || e.RecaptchaThreshold != 0.9 {
		t.Errorf("globals should win: %d/%d/%v", e.RateLimitCount, e.RateLimitWindow, e.RecaptchaThreshold)
	}
}

func TestSettingMapRoundTrip(t *testing.T) {
	g := Global{
		SiteName:           "Acme",
		RecipientEmail:     "owner@example.com",
		AutoReply:          true,
		RecaptchaThreshold: 0.7,
		RateLimitCount:     10,
		RateLimitWindow:    120,
		HoneypotEnabled:    true,
		GDPREnabled:        true,
		GDPRRequired:       true,
	}
	got := fromMap(toMap(g))
	if got != g {
		t.Errorf("map round trip mismatch:\n got %+v\nwant %+v", got, g)
	}
}
