package api

import "github.com/mentorlink/forum/internal/models"

// Response shapes for the API docs. Handlers build the same envelopes with
// writeSuccess and writeFailure.

type questionResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Question models.Question `json:"question"`
}

type questionListResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Questions []models.Question `json:"questions"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Limit     int               `json:"limit"`
}

type upvoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Upvotes int    `json:"upvotes"`
}
