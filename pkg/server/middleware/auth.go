package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

// BearerAuth rejects requests whose Authorization header does not carry token.
// An empty token rejects every request.
func BearerAuth(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authorized(r.Header.Get("Authorization"), expected) {
				zerolog.Ctx(r.Context()).Warn().Msg("rejected unauthorized request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(api.Error{Error: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authorized(header string, expected []byte) bool {
	if len(expected) == 0 || !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	got := []byte(strings.TrimPrefix(header, bearerPrefix))
	return subtle.ConstantTimeCompare(got, expected) == 1
}
