// Package api implements the forum REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/mentorlink/forum/internal/auth"
)

// CORS allows the configured origins ("*" for any) with the forum's methods
// and headers. maxAge is in seconds.
func CORS(origins []string, maxAge int) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         maxAge,
	})
}

// RequireAuth rejects requests without a valid principal using the envelope format.
func RequireAuth(a auth.Authenticator) func(http.Handler) http.Handler {
	return auth.RequireAuth(a, writeFailure)
}
