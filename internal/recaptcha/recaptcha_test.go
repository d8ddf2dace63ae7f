// internal/recaptcha/recaptcha_test.go
//
// Run: go test ./internal/recaptcha -v

package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func clientAgainst(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New()
	c.endpoint = srv.URL
	return c
}

func TestEmptySecretAlwaysAllows(t *testing.T) {
	if !New().Verify(context.Background(), "", 0.5, "", "") {
		t.Error("unconfigured verification must allow")
	}
}

func TestMissingTokenFailsClosed(t *testing.T) {
	if New().Verify(context.Background(), "secret", 0.5, "", "1.2.3.4") {
		t.Error("configured verification with no token must reject")
	}
}

func TestScoreThreshold(t *testing.T) {
	pass := clientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"score":0.9}`))
	})
	if !pass.Verify(context.Background(), "secret", 0.5, "tok", "1.2.3.4") {
		t.Error("score above threshold should pass")
	}

	low := clientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"score":0.1}`))
	})
	if low.Verify(context.Background(), "secret", 0.5, "tok", "1.2.3.4") {
		t.Error("score below threshold should fail")
	}

	rejected := clientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	})
	if rejected.Verify(context.Background(), "secret", 0.5, "tok", "1.2.3.4") {
		t.Error("success=false should fail")
	}
}

func TestProviderOutageFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := New()
	c.endpoint = srv.URL
	srv.Close() // connection refused from here on

	if !c.Verify(context.Background(), "secret", 0.5, "tok", "1.2.3.4") {
		t.Error("transport failure must fail open")
	}
}
