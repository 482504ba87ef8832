package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"neuroease/pkg/requestcontext"
)

// HeaderAdminToken carries the operator token.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards operator endpoints (catalog reload) with a shared
// token in X-Admin-Token. expected is either the token itself or its bcrypt
// hash, so deployments can keep the plaintext out of the environment. An
// empty expected token disables the routes.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	matches := tokenMatcher(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matches(r.Header.Get(HeaderAdminToken)) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatcher(expected string) func(string) bool {
	switch {
	case expected == "":
		return func(string) bool { return false }
	case isBcryptHash(expected):
		hash := []byte(expected)
		return func(token string) bool {
			return token != "" && bcrypt.CompareHashAndPassword(hash, []byte(token)) == nil
		}
	default:
		return func(token string) bool {
			return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
		}
	}
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
