// internal/nonce/nonce.go
//
// FormRelayer – stateless submission nonce.
//
// Context
//   Every rendered form embeds a hidden `fr_nonce` input.  The submission
//   processor verifies it before anything else touches the payload, so a
//   cross-site POST without a freshly rendered form is rejected up front.
//   The token is *stateless*:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.  Prevents replay across users.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with the service secret.  Verifies authenticity.
//
//   Verification checks the signature and that the timestamp falls inside
//   MaxAge.  No server-side session store is involved, so tokens survive
//   restarts and work across replicas sharing the same key.
//
// Workflow
//   •  Generate()    → token string for the renderer.
//   •  Verify(tok)   → constant-time check; false on any failure.
//
//------------------------------------------------------------------------------

package nonce

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"os"
	"sync"
	"time"
)

const (
	tokenBytes   = 16 + 8 + sha256.Size // nonce + ts + sig
	maxAge       = 2 * time.Hour        // token valid window
	secretEnvKey = "FR_NONCE_KEY"       // 32-byte base64 key suggested
)

var (
	secretOnce sync.Once
	secretKey  []byte
)

// FieldName is the hidden input the renderer emits and the processor reads.
const FieldName = "fr_nonce"

// Generate creates a new submission nonce.  Call once per form render.
func Generate() (string, error) {
	sec := fetchSecret()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMicro()))

	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(ts)
	sig := mac.Sum(nil)

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, sig...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok passes HMAC and age checks.
func Verify(tok string) bool {
	sec := fetchSecret()

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:16]
	tsBytes := raw[16:24]
	sig := raw[24:]

	// Timestamp window check.
	ts := binary.BigEndian.Uint64(tsBytes)
	issued := time.UnixMicro(int64(ts))
	if time.Since(issued) > maxAge || time.Until(issued) > time.Minute {
		// Future timestamp (clock skew) or older than maxAge.
		return false
	}

	// Recompute HMAC.
	mac := hmac.New(sha256.New, sec)
	mac.Write(nonce)
	mac.Write(tsBytes)
	want := mac.Sum(nil)

	return hmac.Equal(sig, want)
}

// fetchSecret returns the process-wide signing secret, loading (or
// generating) it exactly once.  In production set FR_NONCE_KEY to a 32-byte
// base64 string so tokens stay valid across restarts and replicas.
func fetchSecret() []byte {
	secretOnce.Do(func() {
		if env := os.Getenv(secretEnvKey); env != "" {
			if b, err := base64.RawURLEncoding.DecodeString(env); err == nil && len(b) >= 32 {
				secretKey = b
				return
			}
		}
		// Fallback random key (ephemeral – resets on restart).
		secretKey = make([]byte, 32)
		_, _ = rand.Read(secretKey)
		os.Stderr.WriteString("[formrelayer] WARNING: FR_NONCE_KEY not set – using random key\n")
	})
	return secretKey
}
