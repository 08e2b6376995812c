// Package store defines the document store contracts shared by the SQLite and
// MongoDB backends.
package store

import (
	"context"
	"math"
	"time"

	"github.com/mentorlink/forum/internal/models"
)

// QuestionStore persists Question aggregates keyed by an opaque id.
// Missing aggregates are reported as apperr NotFound.
type QuestionStore interface {
	// FindQuestions returns one page of questions matching f.
	FindQuestions(ctx context.Context, f Filter, p PageRequest) (Page, error)
	// FindQuestion loads a single aggregate.
	FindQuestion(ctx context.Context, id string) (*models.Question, error)
	// SaveQuestion inserts q, assigning q.ID when empty, or replaces it.
	SaveQuestion(ctx context.Context, q *models.Question) error
	// DeleteQuestion removes the aggregate together with its answers.
	DeleteQuestion(ctx context.Context, id string) error
	// IncrementUpvotes atomically adds one upvote and bumps updatedAt.
	IncrementUpvotes(ctx context.Context, id string, at time.Time) (*models.Question, error)
	// AppendAnswer atomically appends a to the answers and bumps updatedAt.
	AppendAnswer(ctx context.Context, id string, a models.Answer, at time.Time) (*models.Question, error)
}

// UserStore reads user records. The forum never writes them.
type UserStore interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	// FindUsers returns the users that exist among ids, keyed by id.
	FindUsers(ctx context.Context, ids []string) (map[string]models.User, error)
}

// UserWriter is implemented by backends that can be seeded with users.
type UserWriter interface {
	PutUser(ctx context.Context, u models.User) error
}

// Filter narrows a question query. Zero-valued fields are ignored.
type Filter struct {
	Category string
	AuthorID string
	// Text matches title OR content, case-insensitively.
	Text string
}

// Page is a bounded slice of a filtered result set.
type Page struct {
	Items []models.Question
	Total int64
	Index int
	Size  int
}

// Offset returns the number of items skipped before this page. It saturates
// at math.MaxInt64 instead of overflowing, so a huge page is simply empty.
func (p PageRequest) Offset() int64 {
	if p.Index <= 0 || p.Size <= 0 {
		return 0
	}
	if int64(p.Index) > math.MaxInt64/int64(p.Size) {
		return math.MaxInt64
	}
	return int64(p.Index) * int64(p.Size)
}

// PageRequest selects a page. Index is 0-based.
type PageRequest struct {
	Index int
	Size  int
	Sort  Sort
}

// StampAfter returns at truncated to milliseconds, pushed to at least 1ms past
// prev so successive mutations strictly increase updatedAt.
func StampAfter(prev, at time.Time) time.Time {
	at = at.Truncate(time.Millisecond)
	if !at.After(prev) {
		return prev.Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return at
}
