// internal/middleware/auth.go
//
// Admin token authentication.
//
// Context
// -------
// The builder API is protected by a single bearer token from configuration.
// There are no user accounts or sessions; one shared secret gates the whole
// admin surface.  Comparison is constant-time so response timing leaks
// nothing about the token.  The token is accepted from the Authorization
// header (`Bearer <token>`) or, for the browser-served builder page, the
// `fr_admin` cookie.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AdminAuth returns a middleware rejecting requests without the token.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || !tokenMatches(r, token) {
				zap.S().Infow("admin auth rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatches(r *http.Request, token string) bool {
	presented := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		presented = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie("fr_admin"); err == nil {
		presented = c.Value
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(token)) == 1
}
