package forum

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mentorlink/forum/internal/apperr"
)

// MaxTitleLength is the longest accepted title, counted in runes.
const MaxTitleLength = 200

// CreateQuestionRequest is the body of POST /questions.
type CreateQuestionRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Validate checks the request and returns the first failing rule as a
// ValidationFailed error.
func (r CreateQuestionRequest) Validate() error {
	return firstError(validation.ValidateStruct(&r,
		validation.Field(&r.Title, titleRules()...),
		validation.Field(&r.Content, notBlank("Content is required")),
		validation.Field(&r.Category, notBlank("Category is required")),
	), "title", "content", "category")
}

// UpdateQuestionRequest is the body of PUT /questions/{id}. Tags are replaced
// only when present in the body.
type UpdateQuestionRequest struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	Tags     *[]string `json:"tags,omitempty"`
}

// Validate checks the request like CreateQuestionRequest.Validate.
func (r UpdateQuestionRequest) Validate() error {
	return firstError(validation.ValidateStruct(&r,
		validation.Field(&r.Title, titleRules()...),
		validation.Field(&r.Content, notBlank("Content is required")),
		validation.Field(&r.Category, notBlank("Category is required")),
	), "title", "content", "category")
}

// AddAnswerRequest is the body of POST /questions/{id}/answer.
type AddAnswerRequest struct {
	Content string `json:"content"`
}

// Validate requires non-blank content.
func (r AddAnswerRequest) Validate() error {
	return firstError(validation.ValidateStruct(&r,
		validation.Field(&r.Content, notBlank("Answer content is required")),
	), "content")
}

func titleRules() []validation.Rule {
	return []validation.Rule{
		notBlank("Title is required"),
		validation.RuneLength(0, MaxTitleLength).Error("Title must be less than 200 characters"),
	}
}

// notBlank rejects empty and whitespace-only strings.
func notBlank(msg string) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	})
}

// firstError flattens ozzo's per-field map into a single message, picking
// fields in order so the reported failure is deterministic.
func firstError(err error, order ...string) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return apperr.Validation("%s", err.Error())
	}
	for _, name := range order {
		if fe := fields[name]; fe != nil {
			return apperr.Validation("%s", fe.Error())
		}
	}
	return apperr.Validation("%s", fields.Error())
}
