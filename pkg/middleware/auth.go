package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserIDKey is the context key for the authenticated user ID
const UserIDKey ContextKey = "user_id"

// TestUserMiddleware resolves the acting user from the X-User-ID header,
// defaulting to user 1 (DEV ONLY). It stands in for real authentication
// so the API can be exercised as different users without tokens.
func TestUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := int64(1)
		if header := r.Header.Get("X-User-ID"); header != "" {
			if parsed, err := strconv.ParseInt(header, 10, 64); err == nil && parsed > 0 {
				userID = parsed
			}
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
