// Package repository exposes typed question queries over a document store.
package repository

import (
	"context"
	"time"

	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store"
)

// QuestionRepository is the only mutator of question aggregates.
type QuestionRepository struct {
	store store.QuestionStore
}

// NewQuestionRepository wraps s.
func NewQuestionRepository(s store.QuestionStore) *QuestionRepository {
	return &QuestionRepository{store: s}
}

// FindAll returns one page over every question.
func (r *QuestionRepository) FindAll(ctx context.Context, p store.PageRequest) (store.Page, error) {
	return r.store.FindQuestions(ctx, store.Filter{}, p)
}

// FindByID loads a single question.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	return r.store.FindQuestion(ctx, id)
}

// FindByCategory returns questions whose category equals category exactly.
func (r *QuestionRepository) FindByCategory(ctx context.Context, category string, p store.PageRequest) (store.Page, error) {
	return r.store.FindQuestions(ctx, store.Filter{Category: category}, p)
}

// FindByAuthorID returns questions written by authorID.
func (r *QuestionRepository) FindByAuthorID(ctx context.Context, authorID string, p store.PageRequest) (store.Page, error) {
	return r.store.FindQuestions(ctx, store.Filter{AuthorID: authorID}, p)
}

// FindByTitleOrContentContains matches term case-insensitively against title or
// content. An empty term matches every question.
func (r *QuestionRepository) FindByTitleOrContentContains(ctx context.Context, term string, p store.PageRequest) (store.Page, error) {
	return r.store.FindQuestions(ctx, store.Filter{Text: term}, p)
}

// Save inserts or replaces q. A new question gets its id assigned here.
func (r *QuestionRepository) Save(ctx context.Context, q *models.Question) error {
	if q.Answers == nil {
		q.Answers = []models.Answer{}
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	return r.store.SaveQuestion(ctx, q)
}

// DeleteByID removes a question and its answers.
func (r *QuestionRepository) DeleteByID(ctx context.Context, id string) error {
	return r.store.DeleteQuestion(ctx, id)
}

// IncrementUpvotes adds one upvote atomically.
func (r *QuestionRepository) IncrementUpvotes(ctx context.Context, id string, at time.Time) (*models.Question, error) {
	return r.store.IncrementUpvotes(ctx, id, at)
}

// AppendAnswer appends a atomically.
func (r *QuestionRepository) AppendAnswer(ctx context.Context, id string, a models.Answer, at time.Time) (*models.Question, error) {
	return r.store.AppendAnswer(ctx, id, a, at)
}
