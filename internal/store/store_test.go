package store

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/forum/internal/apperr"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
	}{
		{"", NewestFirst},
		{"-createdAt", Sort{Field: FieldCreatedAt, Desc: true}},
		{"createdAt", Sort{Field: FieldCreatedAt}},
		{"upvotes", Sort{Field: FieldUpvotes}},
		{"-updatedAt", Sort{Field: FieldUpdatedAt, Desc: true}},
		{" title ", Sort{Field: FieldTitle}},
	}
	for _, tt := range tests {
		got, err := ParseSort(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSort_RejectsUnknownField(t *testing.T) {
	for _, in := range []string{"author", "-$where", "--createdAt", "-"} {
		_, err := ParseSort(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, apperr.ErrValidation), in)
	}
}

func TestSortString(t *testing.T) {
	assert.Equal(t, "-createdAt", NewestFirst.String())
	assert.Equal(t, "upvotes", Sort{Field: FieldUpvotes}.String())
}

func TestStampAfter(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	later := base.Add(5 * time.Second).Add(300 * time.Microsecond)
	assert.Equal(t, base.Add(5*time.Second), StampAfter(base, later))

	// Clock did not advance: bump by one millisecond.
	assert.Equal(t, base.Add(time.Millisecond), StampAfter(base, base))
	assert.Equal(t, base.Add(time.Millisecond), StampAfter(base, base.Add(-time.Hour)))
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, int64(0), PageRequest{Index: 0, Size: 10}.Offset())
	assert.Equal(t, int64(30), PageRequest{Index: 3, Size: 10}.Offset())
	assert.Equal(t, int64(math.MaxInt64), PageRequest{Index: math.MaxInt - 1, Size: 100}.Offset())
	assert.Equal(t, int64(math.MaxInt64), PageRequest{Index: 100000000000000000 - 1, Size: 100}.Offset())
}
