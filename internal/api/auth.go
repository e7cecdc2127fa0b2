package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/bde-platform/mailer/internal/config"
	"github.com/bde-platform/mailer/internal/pkg/httputil"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID returns the authenticated user id from the request context.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// bearerAuth checks the Authorization header against the configured static
// tokens and stores the resolved user id in the request context.
func bearerAuth(auth config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.Unauthorized(w, "missing bearer token")
				return
			}
			userID, ok := auth.Tokens[token]
			if !ok {
				httputil.Unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
