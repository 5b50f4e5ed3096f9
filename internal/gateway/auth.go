package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authMiddleware enforces the bearer-token list on the protected route
// group. Each candidate token is compared in constant time.
func (g *Gateway) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.config.Auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token != "" {
			for _, want := range g.config.Auth.Tokens {
				if subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
		}

		w.Header().Set("WWW-Authenticate", `Bearer realm="vmman"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// bearerToken extracts the token from the Authorization header, or ""
// when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
