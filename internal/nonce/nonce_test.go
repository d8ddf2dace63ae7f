// internal/nonce/nonce_test.go
//
// Run: go test ./internal/nonce -v

package nonce

import (
	"encoding/base64"
	"testing"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !Verify(tok) {
		t.Fatal("freshly generated token failed verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, tok := range []string{
		"",
		"not-base64!!!",
		base64.RawURLEncoding.EncodeToString([]byte("short")),
	} {
		if Verify(tok) {
			t.Errorf("Verify(%q) = true, want false", tok)
		}
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	raw[len(raw)-1] ^= 0xff
	if Verify(base64.RawURLEncoding.EncodeToString(raw)) {
		t.Error("tampered token passed verification")
	}
}
