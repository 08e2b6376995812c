package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/auth"
	"github.com/mentorlink/forum/internal/forum"
)

// Default page sizes per listing.
const (
	defaultListLimit   = 50
	defaultFilterLimit = 10
)

// Handler holds API route handlers.
type Handler struct {
	svc *forum.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *forum.Service) *Handler {
	return &Handler{svc: svc}
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return n, nil
}

func paging(r *http.Request, defLimit int) (page, limit int, err error) {
	if page, err = queryInt(r, "page", 1); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", defLimit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// listFailed maps listing errors: validation is the caller's fault, anything
// else is ours.
func listFailed(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, apperr.ErrValidation) {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeFailure(w, http.StatusInternalServerError, err.Error())
}

// mutationFailed reports every write failure as 400.
func mutationFailed(w http.ResponseWriter, op string, err error) {
	if apperr.KindOf(err) == apperr.ErrInternal {
		slog.Error(op+" failed", slog.String("error", err.Error()))
	}
	writeFailure(w, http.StatusBadRequest, err.Error())
}

func listPayload(res *forum.ListResult) map[string]any {
	return map[string]any{
		"questions": res.Questions,
		"total":     res.Total,
		"page":      res.Page,
		"limit":     res.Limit,
	}
}

func principal(r *http.Request) string {
	id, _ := auth.PrincipalFrom(r.Context())
	return id
}

// ListQuestions handles GET /questions.
//
//	@Summary		List questions
//	@Tags			questions
//	@Produce		json
//	@Param			page	query		int		false	"1-based page"	default(1)
//	@Param			limit	query		int		false	"Page size, capped at 100"	default(50)
//	@Param			sort	query		string	false	"Sort field, '-' prefix for descending"	Enums(-createdAt, createdAt, -updatedAt, updatedAt, -upvotes, upvotes, title, -title)
//	@Success		200		{object}	questionListResponse
//	@Failure		400		{object}	messageResponse
//	@Failure		500		{object}	messageResponse
//	@Router			/questions [get]
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	slog.Info("forum: list questions", slog.String("query", r.URL.RawQuery))
	page, limit, err := paging(r, defaultListLimit)
	if err != nil {
		listFailed(w, "list questions", err)
		return
	}
	sort := r.URL.Query().Get("sort")

	res, err := h.svc.List(r.Context(), page, limit, sort)
	if err != nil {
		listFailed(w, "list questions", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Questions retrieved successfully", listPayload(res))
}

// GetQuestion handles GET /questions/{id}.
//
//	@Summary		Get a question with its answers
//	@Tags			questions
//	@Produce		json
//	@Param			id	path		string	true	"Question id"
//	@Success		200	{object}	questionResponse
//	@Failure		404	{object}	messageResponse
//	@Failure		500	{object}	messageResponse
//	@Router			/questions/{id} [get]
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slog.Info("forum: get question", slog.String("id", id))

	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
		} else {
			slog.Error("get question failed", slog.String("id", id), slog.String("error", err.Error()))
			writeFailure(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeSuccess(w, http.StatusOK, "Question retrieved successfully", map[string]any{"question": q})
}

// CreateQuestion handles POST /questions.
//
//	@Summary		Create a question
//	@Tags			questions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		forum.CreateQuestionRequest	true	"Question"
//	@Success		201		{object}	questionResponse
//	@Failure		400		{object}	messageResponse
//	@Failure		401		{object}	messageResponse
//	@Failure		403		{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/questions [post]
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID := principal(r)
	slog.Info("forum: create question", slog.String("user_id", userID))

	var req forum.CreateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.svc.Create(r.Context(), req, userID)
	if err != nil {
		mutationFailed(w, "create question", err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Question created successfully", map[string]any{"question": q})
}

// UpdateQuestion handles PUT /questions/{id}.
//
//	@Summary		Update a question owned by the caller
//	@Tags			questions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Question id"
//	@Param			body	body		forum.UpdateQuestionRequest	true	"New title, content, category and optional tags"
//	@Success		200		{object}	questionResponse
//	@Failure		400		{object}	messageResponse
//	@Failure		401		{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/questions/{id} [put]
func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := principal(r)
	slog.Info("forum: update question", slog.String("id", id), slog.String("user_id", userID))

	var req forum.UpdateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.svc.Update(r.Context(), id, req, userID)
	if err != nil {
		mutationFailed(w, "update question", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Question updated successfully", map[string]any{"question": q})
}

// DeleteQuestion handles DELETE /questions/{id}.
//
//	@Summary		Delete a question owned by the caller
//	@Tags			questions
//	@Produce		json
//	@Param			id	path		string	true	"Question id"
//	@Success		200	{object}	messageResponse
//	@Failure		400	{object}	messageResponse
//	@Failure		401	{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/questions/{id} [delete]
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := principal(r)
	slog.Info("forum: delete question", slog.String("id", id), slog.String("user_id", userID))

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		mutationFailed(w, "delete question", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Question deleted successfully", nil)
}

// AddAnswer handles POST /questions/{id}/answer.
//
//	@Summary		Answer a question
//	@Tags			answers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Question id"
//	@Param			body	body		forum.AddAnswerRequest	true	"Answer"
//	@Success		200		{object}	questionResponse
//	@Failure		400		{object}	messageResponse
//	@Failure		401		{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/questions/{id}/answer [post]
func (h *Handler) AddAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := principal(r)
	slog.Info("forum: add answer", slog.String("id", id), slog.String("user_id", userID))

	var req forum.AddAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.svc.AddAnswer(r.Context(), id, req, userID)
	if err != nil {
		mutationFailed(w, "add answer", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Answer added successfully", map[string]any{"question": q})
}

// UpvoteQuestion handles POST /questions/{id}/upvote.
//
//	@Summary		Upvote a question
//	@Tags			questions
//	@Produce		json
//	@Param			id	path		string	true	"Question id"
//	@Success		200	{object}	upvoteResponse
//	@Failure		400	{object}	messageResponse
//	@Failure		401	{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/questions/{id}/upvote [post]
func (h *Handler) UpvoteQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := principal(r)
	slog.Info("forum: upvote question", slog.String("id", id), slog.String("user_id", userID))

	q, err := h.svc.Upvote(r.Context(), id, userID)
	if err != nil {
		mutationFailed(w, "upvote question", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Question upvoted successfully", map[string]any{"upvotes": q.Upvotes})
}

// QuestionsByCategory handles GET /questions/category/{category}.
//
//	@Summary		List questions in a category
//	@Tags			questions
//	@Produce		json
//	@Param			category	path		string	true	"Category, matched case-insensitively"
//	@Param			page		query		int		false	"1-based page"	default(1)
//	@Param			limit		query		int		false	"Page size, capped at 100"	default(10)
//	@Success		200			{object}	questionListResponse
//	@Failure		400			{object}	messageResponse
//	@Failure		500			{object}	messageResponse
//	@Router			/questions/category/{category} [get]
func (h *Handler) QuestionsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	slog.Info("forum: questions by category", slog.String("category", category))

	page, limit, err := paging(r, defaultFilterLimit)
	if err != nil {
		listFailed(w, "questions by category", err)
		return
	}
	res, err := h.svc.ByCategory(r.Context(), category, page, limit)
	if err != nil {
		listFailed(w, "questions by category", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Questions retrieved successfully", listPayload(res))
}

// QuestionsByMentor handles GET /mentor/{mentorId}/questions.
//
//	@Summary		List questions authored by a user
//	@Tags			questions
//	@Produce		json
//	@Param			mentorId	path		string	true	"Author id"
//	@Param			page		query		int		false	"1-based page"	default(1)
//	@Param			limit		query		int		false	"Page size, capped at 100"	default(10)
//	@Success		200			{object}	questionListResponse
//	@Failure		400			{object}	messageResponse
//	@Failure		401			{object}	messageResponse
//	@Security		BearerAuth
//	@Router			/mentor/{mentorId}/questions [get]
func (h *Handler) QuestionsByMentor(w http.ResponseWriter, r *http.Request) {
	mentorID := chi.URLParam(r, "mentorId")
	slog.Info("forum: questions by mentor", slog.String("mentor_id", mentorID))

	page, limit, err := paging(r, defaultFilterLimit)
	if err != nil {
		listFailed(w, "questions by mentor", err)
		return
	}
	res, err := h.svc.ByAuthor(r.Context(), mentorID, page, limit)
	if err != nil {
		listFailed(w, "questions by mentor", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Questions retrieved successfully", listPayload(res))
}

// SearchQuestions handles GET /questions/search.
//
//	@Summary		Search question titles and content
//	@Tags			questions
//	@Produce		json
//	@Param			q			query		string	false	"Text to match, case-insensitive; empty matches all"
//	@Param			category	query		string	false	"Accepted and ignored"
//	@Param			page		query		int		false	"1-based page"	default(1)
//	@Param			limit		query		int		false	"Page size, capped at 100"	default(10)
//	@Success		200			{object}	questionListResponse
//	@Failure		400			{object}	messageResponse
//	@Failure		500			{object}	messageResponse
//	@Router			/questions/search [get]
func (h *Handler) SearchQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	slog.Info("forum: search questions", slog.String("q", query))

	page, limit, err := paging(r, defaultFilterLimit)
	if err != nil {
		listFailed(w, "search questions", err)
		return
	}
	res, err := h.svc.Search(r.Context(), query, q.Get("category"), page, limit)
	if err != nil {
		listFailed(w, "search questions", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Search results retrieved successfully", listPayload(res))
}
