package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mentorlink/forum/internal/auth"
	"github.com/mentorlink/forum/internal/forum"
)

// NewRouter creates a chi router with the forum routes. Mount it at /api/forum.
// Reads are public except the mentor listing; writes require a principal.
func NewRouter(svc *forum.Service, authn auth.Authenticator) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Static segments are matched before {id}.
	r.Get("/questions", h.ListQuestions)
	r.Get("/questions/search", h.SearchQuestions)
	r.Get("/questions/category/{category}", h.QuestionsByCategory)
	r.Get("/questions/{id}", h.GetQuestion)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(authn))
		r.Post("/questions", h.CreateQuestion)
		r.Put("/questions/{id}", h.UpdateQuestion)
		r.Delete("/questions/{id}", h.DeleteQuestion)
		r.Post("/questions/{id}/answer", h.AddAnswer)
		r.Post("/questions/{id}/upvote", h.UpvoteQuestion)
		r.Get("/mentor/{mentorId}/questions", h.QuestionsByMentor)
	})

	return r
}
