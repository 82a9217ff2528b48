package server

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

const basicAuthPrefix = "Basic "

// BasicAuthConfig holds the single client credential accepted by the
// notification endpoint.
type BasicAuthConfig struct {
	ClientID string
	Secret   string
}

// BasicAuth enforces HTTP Basic authentication with a fixed client
// credential. Requests without a usable Authorization header are rejected as
// anonymous (401); requests with a well-formed header but wrong credentials
// are rejected as unauthorized (403).
func BasicAuth(cfg BasicAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, basicAuthPrefix) {
				log.WithField("path", r.URL.Path).Warn("Rejected anonymous request")
				w.Header().Set("WWW-Authenticate", `Basic realm="rt-register"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, basicAuthPrefix))
			if err != nil {
				log.WithError(err).Warn("Rejected request with malformed Authorization header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			clientID, secret, ok := strings.Cut(string(decoded), ":")
			if !ok ||
				subtle.ConstantTimeCompare([]byte(clientID), []byte(cfg.ClientID)) != 1 ||
				subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.Secret)) != 1 {
				log.WithField("clientID", clientID).Warn("Rejected request with invalid credentials")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
