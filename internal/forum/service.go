// Package forum implements the question and answer rules: authorship checks,
// normalization, answer embedding, upvotes, search and author projection.
package forum

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/repository"
	"github.com/mentorlink/forum/internal/store"
)

// MaxPageSize caps the limit of any listing.
const MaxPageSize = 100

// ListResult is a page of questions with resolved authors.
type ListResult struct {
	Questions []models.Question
	Total     int64
	Page      int
	Limit     int
}

// Service coordinates the question repository and the user store.
type Service struct {
	repo  *repository.QuestionRepository
	users store.UserStore
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a forum service.
func NewService(repo *repository.QuestionRepository, users store.UserStore, opts ...Option) *Service {
	s := &Service{repo: repo, users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// List returns a page of all questions ordered by sort.
func (s *Service) List(ctx context.Context, page, limit int, sort string) (*ListResult, error) {
	srt, err := store.ParseSort(sort)
	if err != nil {
		return nil, err
	}
	req, err := pageRequest(page, limit, srt)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindAll(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, p, page, req.Size)
}

// Get returns a single question.
func (s *Service) Get(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, q)
}

// Create persists a new question authored by userID.
func (s *Service) Create(ctx context.Context, req CreateQuestionRequest, userID string) (*models.Question, error) {
	author, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.stamp()
	tags := make([]string, len(req.Tags))
	copy(tags, req.Tags)

	q := &models.Question{
		Title:     req.Title,
		Content:   req.Content,
		Category:  strings.ToLower(req.Category),
		Author:    models.AuthorOf(*author),
		Answers:   []models.Answer{},
		Upvotes:   0,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update overwrites title, content and category of a question owned by userID.
func (s *Service) Update(ctx context.Context, id string, req UpdateQuestionRequest, userID string) (*models.Question, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsAuthoredBy(userID) {
		return nil, apperr.Forbidden("You can only update your own questions")
	}

	q.Title = req.Title
	q.Content = req.Content
	q.Category = strings.ToLower(req.Category)
	if req.Tags != nil {
		tags := make([]string, len(*req.Tags))
		copy(tags, *req.Tags)
		q.Tags = tags
	}
	q.UpdatedAt = store.StampAfter(q.UpdatedAt, s.now().UTC())

	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, q)
}

// Delete removes a question owned by userID together with its answers.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !q.IsAuthoredBy(userID) {
		return apperr.Forbidden("You can only delete your own questions")
	}
	return s.repo.DeleteByID(ctx, id)
}

// AddAnswer appends an answer by userID to the question.
func (s *Service) AddAnswer(ctx context.Context, questionID string, req AddAnswerRequest, userID string) (*models.Question, error) {
	if _, err := s.repo.FindByID(ctx, questionID); err != nil {
		return nil, err
	}
	author, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.stamp()
	a := models.Answer{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Author:    models.Author{ID: author.ID},
		Upvotes:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q, err := s.repo.AppendAnswer(ctx, questionID, a, now)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, q)
}

// Upvote adds one upvote. Votes are not de-duplicated per user.
func (s *Service) Upvote(ctx context.Context, id, userID string) (*models.Question, error) {
	q, err := s.repo.IncrementUpvotes(ctx, id, s.stamp())
	if err != nil {
		return nil, err
	}
	slog.Debug("question upvoted",
		slog.String("question_id", id),
		slog.String("user_id", userID),
		slog.Int("upvotes", q.Upvotes),
	)
	return s.withAuthors(ctx, q)
}

// ByCategory lists questions in category, newest first.
func (s *Service) ByCategory(ctx context.Context, category string, page, limit int) (*ListResult, error) {
	req, err := pageRequest(page, limit, store.NewestFirst)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByCategory(ctx, strings.ToLower(category), req)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, p, page, req.Size)
}

// ByAuthor lists questions written by mentorID, newest first.
func (s *Service) ByAuthor(ctx context.Context, mentorID string, page, limit int) (*ListResult, error) {
	req, err := pageRequest(page, limit, store.NewestFirst)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByAuthorID(ctx, mentorID, req)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, p, page, req.Size)
}

// Search matches query against title or content, newest first. category is
// accepted for compatibility and does not narrow the result.
func (s *Service) Search(ctx context.Context, query, category string, page, limit int) (*ListResult, error) {
	req, err := pageRequest(page, limit, store.NewestFirst)
	if err != nil {
		return nil, err
	}
	if category != "" {
		slog.Debug("search category ignored", slog.String("category", category))
	}
	p, err := s.repo.FindByTitleOrContentContains(ctx, query, req)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, p, page, req.Size)
}

func pageRequest(page, limit int, srt store.Sort) (store.PageRequest, error) {
	if page < 1 {
		return store.PageRequest{}, apperr.Validation("page must be >= 1")
	}
	if limit < 1 {
		return store.PageRequest{}, apperr.Validation("limit must be >= 1")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return store.PageRequest{Index: page - 1, Size: limit, Sort: srt}, nil
}

func (s *Service) result(ctx context.Context, p store.Page, page, limit int) (*ListResult, error) {
	items := p.Items
	if items == nil {
		items = []models.Question{}
	}
	if err := s.resolveAuthors(ctx, items); err != nil {
		return nil, err
	}
	return &ListResult{Questions: items, Total: p.Total, Page: page, Limit: limit}, nil
}

func (s *Service) withAuthors(ctx context.Context, q *models.Question) (*models.Question, error) {
	qs := []models.Question{*q}
	if err := s.resolveAuthors(ctx, qs); err != nil {
		return nil, err
	}
	return &qs[0], nil
}

// resolveAuthors fills author projections of questions and their answers with
// one batched user lookup. Missing users keep an id-only projection.
func (s *Service) resolveAuthors(ctx context.Context, qs []models.Question) error {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, q := range qs {
		add(q.Author.ID)
		for _, a := range q.Answers {
			add(a.Author.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.FindUsers(ctx, ids)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			users = nil
		} else {
			return err
		}
	}
	project := func(a models.Author) models.Author {
		if u, ok := users[a.ID]; ok {
			return models.AuthorOf(u)
		}
		return models.Author{ID: a.ID}
	}
	for i := range qs {
		qs[i].Author = project(qs[i].Author)
		for j := range qs[i].Answers {
			qs[i].Answers[j].Author = project(qs[i].Answers[j].Author)
		}
	}
	return nil
}
