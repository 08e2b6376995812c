package store

import (
	"strings"

	"github.com/mentorlink/forum/internal/apperr"
)

// Sortable fields.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldUpvotes   = "upvotes"
	FieldTitle     = "title"
)

var sortable = map[string]struct{}{
	FieldCreatedAt: {},
	FieldUpdatedAt: {},
	FieldUpvotes:   {},
	FieldTitle:     {},
}

// Sort orders a query by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// NewestFirst is the default ordering.
var NewestFirst = Sort{Field: FieldCreatedAt, Desc: true}

// ParseSort parses "field" or "-field". Empty input yields NewestFirst.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewestFirst, nil
	}
	out := Sort{Field: s}
	if strings.HasPrefix(s, "-") {
		out = Sort{Field: s[1:], Desc: true}
	}
	if _, ok := sortable[out.Field]; !ok {
		return Sort{}, apperr.Validation("invalid sort field: %s", out.Field)
	}
	return out, nil
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}
