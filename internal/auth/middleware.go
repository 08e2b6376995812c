package auth

import (
	"errors"
	"log/slog"
	"net/http"
)

// Reject writes the failure response for a rejected request.
type Reject func(w http.ResponseWriter, status int, msg string)

// RequireAuth stores the authenticated principal in the request context.
// Missing credentials yield 401, invalid ones 403.
func RequireAuth(a Authenticator, reject Reject) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), id)))
			case errors.Is(err, ErrMissingCredentials):
				reject(w, http.StatusUnauthorized, ErrMissingCredentials.Error())
			default:
				slog.Debug("authentication failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
				reject(w, http.StatusForbidden, ErrInvalidCredentials.Error())
			}
		})
	}
}
