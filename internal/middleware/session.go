// Package middleware resolves the device's current-session user once per
// request and passes the id onward explicitly; handlers never consult a
// global.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/studyquiz/backend/internal/models"
)

// SessionSource reports which user, if any, is logged in on this device.
// Satisfied by *store.Store.
type SessionSource interface {
	CurrentUserID() (int64, bool)
}

// RequireSession rejects requests when no user is logged in, otherwise
// injects the user id into the request context under "user_id".
func RequireSession(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := sessions.CurrentUserID()
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Not logged in"})
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
