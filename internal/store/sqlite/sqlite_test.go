package sqlite

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "forum-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newQuestion(title, content, category, author string, at time.Time) *models.Question {
	return &models.Question{
		Title:     title,
		Content:   content,
		Category:  category,
		Author:    models.Author{ID: author},
		Answers:   []models.Answer{},
		Tags:      []string{"b", "a"},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM questions`).Scan(&count))
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM users`).Scan(&count))
}

func TestSaveAssignsIDAndRoundTrips(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("How to scale?", "Sharding or replicas", "engineering", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))
	require.NotEmpty(t, q.ID)

	got, err := db.FindQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "How to scale?", got.Title)
	assert.Equal(t, "u1", got.Author.ID)
	assert.Equal(t, []string{"b", "a"}, got.Tags)
	assert.Empty(t, got.Answers)
	assert.NotNil(t, got.Answers)
	assert.True(t, got.CreatedAt.Equal(epoch))
	assert.True(t, got.UpdatedAt.Equal(epoch))
}

func TestSaveReplacesExisting(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("Old", "body", "general", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))
	id := q.ID

	q.Title = "New"
	q.UpdatedAt = epoch.Add(time.Minute)
	require.NoError(t, db.SaveQuestion(ctx, q))
	assert.Equal(t, id, q.ID)

	got, err := db.FindQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.CreatedAt.Equal(epoch))
	assert.True(t, got.UpdatedAt.Equal(epoch.Add(time.Minute)))
}

func TestFindQuestion_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.FindQuestion(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "Question not found", err.Error())
}

func TestDeleteRemovesAnswers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("Q", "body", "general", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))
	_, err := db.AppendAnswer(ctx, q.ID, models.Answer{ID: "a1", Content: "x", Author: models.Author{ID: "u2"}, CreatedAt: epoch, UpdatedAt: epoch}, epoch)
	require.NoError(t, err)

	require.NoError(t, db.DeleteQuestion(ctx, q.ID))

	_, err = db.FindQuestion(ctx, q.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	var n int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM questions WHERE answers LIKE '%a1%'`).Scan(&n))
	assert.Zero(t, n)

	err = db.DeleteQuestion(ctx, q.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestIncrementUpvotes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("Q", "body", "general", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))

	last := epoch
	for i := 1; i <= 3; i++ {
		// Same wall clock each time: updatedAt must still advance.
		got, err := db.IncrementUpvotes(ctx, q.ID, epoch)
		require.NoError(t, err)
		assert.Equal(t, i, got.Upvotes)
		assert.True(t, got.UpdatedAt.After(last), "updatedAt must strictly increase")
		last = got.UpdatedAt
	}

	_, err := db.IncrementUpvotes(ctx, "missing", epoch)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestIncrementUpvotes_Concurrent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("Q", "body", "general", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.IncrementUpvotes(ctx, q.ID, time.Now())
		}()
	}
	wg.Wait()

	got, err := db.FindQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Upvotes)
}

func TestAppendAnswerKeepsOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	q := newQuestion("Q", "body", "general", "u1", epoch)
	require.NoError(t, db.SaveQuestion(ctx, q))

	for i, id := range []string{"a1", "a2", "a3"} {
		at := epoch.Add(time.Duration(i+1) * time.Second)
		got, err := db.AppendAnswer(ctx, q.ID, models.Answer{
			ID: id, Content: "answer " + id, Author: models.Author{ID: "u2"}, CreatedAt: at, UpdatedAt: at,
		}, at)
		require.NoError(t, err)
		require.Len(t, got.Answers, i+1)
		assert.True(t, got.UpdatedAt.Equal(at))
	}

	got, err := db.FindQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Answers, 3)
	assert.Equal(t, "a1", got.Answers[0].ID)
	assert.Equal(t, "a3", got.Answers[2].ID)
	assert.Equal(t, "u2", got.Answers[1].Author.ID)
	assert.True(t, got.Answers[2].CreatedAt.Equal(epoch.Add(3*time.Second)))
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	rows := []struct{ title, content, category, author string }{
		{"How to scale Postgres?", "replicas", "engineering", "u1"},
		{"Pricing strategy", "how to SCALE revenue", "business", "u2"},
		{"Roadmaps", "quarterly planning", "product", "u1"},
		{"Feature stores", "offline vs online", "data-science", "u3"},
		{"Hello", "first post", "general", "u2"},
	}
	for i, r := range rows {
		q := newQuestion(r.title, r.content, r.category, r.author, epoch.Add(time.Duration(i)*time.Hour))
		q.Upvotes = len(rows) - i
		require.NoError(t, db.SaveQuestion(ctx, q))
	}
}

func TestFindQuestions_Filters(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	ctx := context.Background()
	all := store.PageRequest{Index: 0, Size: 10, Sort: store.NewestFirst}

	page, err := db.FindQuestions(ctx, store.Filter{}, all)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, "Hello", page.Items[0].Title)

	page, err = db.FindQuestions(ctx, store.Filter{Category: "engineering"}, all)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "engineering", page.Items[0].Category)

	page, err = db.FindQuestions(ctx, store.Filter{AuthorID: "u1"}, all)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Roadmaps", page.Items[0].Title)

	page, err = db.FindQuestions(ctx, store.Filter{Text: "scale"}, all)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total, "title OR content, case-insensitive")
}

func TestFindQuestions_TextFoldsNonASCII(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, db.SaveQuestion(ctx, newQuestion("Études de cas", "cases", "general", "u1", epoch)))
	require.NoError(t, db.SaveQuestion(ctx, newQuestion("Über Skalierung", "growth", "general", "u1", epoch.Add(time.Hour))))
	all := store.PageRequest{Index: 0, Size: 10, Sort: store.NewestFirst}

	page, err := db.FindQuestions(ctx, store.Filter{Text: "über"}, all)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Über Skalierung", page.Items[0].Title)

	page, err = db.FindQuestions(ctx, store.Filter{Text: "ÉTUDES"}, all)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = db.FindQuestions(ctx, store.Filter{Text: "études"}, all)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestFindQuestions_SortAndPaging(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	ctx := context.Background()

	page, err := db.FindQuestions(ctx, store.Filter{}, store.PageRequest{Index: 0, Size: 2, Sort: store.Sort{Field: store.FieldUpvotes}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.Items[0].Upvotes)
	assert.Equal(t, 2, page.Items[1].Upvotes)

	// ceil(5/2) = 3 is the last non-empty page (index 2).
	page, err = db.FindQuestions(ctx, store.Filter{}, store.PageRequest{Index: 2, Size: 2, Sort: store.NewestFirst})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(5), page.Total)

	page, err = db.FindQuestions(ctx, store.Filter{}, store.PageRequest{Index: 3, Size: 2, Sort: store.NewestFirst})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.Index)
	assert.Equal(t, 2, page.Size)
}

func TestUsers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.FindUser(ctx, "u1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, "User not found", err.Error())

	require.NoError(t, db.PutUser(ctx, models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, db.PutUser(ctx, models.User{ID: "u2", Name: "Linus"}))
	require.NoError(t, db.PutUser(ctx, models.User{ID: "u1", Name: "Ada L."}))

	u, err := db.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.Name)

	users, err := db.FindUsers(ctx, []string{"u1", "u2", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Linus", users["u2"].Name)

	users, err = db.FindUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
