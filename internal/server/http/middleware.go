package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/avoronova/kinkeeper/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth extracts the bearer token, validates it, and stores the acting
// user's ID in the request context. Every /v1 route is scoped this way; the
// user ID never comes from the request body or URL.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token := strings.TrimSpace(header[len("bearer "):])
		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the authenticated user ID set by requireAuth.
func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
