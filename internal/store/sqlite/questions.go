package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store"
)

var (
	_ store.QuestionStore = (*DB)(nil)
	_ store.UserStore     = (*DB)(nil)
	_ store.UserWriter    = (*DB)(nil)
)

const questionColumns = `id, title, content, category, author_id, upvotes, tags, answers, created_at, updated_at`

var sortColumns = map[string]string{
	store.FieldCreatedAt: "created_at",
	store.FieldUpdatedAt: "updated_at",
	store.FieldUpvotes:   "upvotes",
	store.FieldTitle:     "title",
}

// answerDoc is the JSON shape of an embedded answer.
type answerDoc struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId"`
	Upvotes   int    `json:"upvotes"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toAnswerDoc(a models.Answer) answerDoc {
	return answerDoc{
		ID:        a.ID,
		Content:   a.Content,
		AuthorID:  a.Author.ID,
		Upvotes:   a.Upvotes,
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}

func (d answerDoc) answer() models.Answer {
	return models.Answer{
		ID:        d.ID,
		Content:   d.Content,
		Author:    models.Author{ID: d.AuthorID},
		Upvotes:   d.Upvotes,
		CreatedAt: fromMillis(d.CreatedAt),
		UpdatedAt: fromMillis(d.UpdatedAt),
	}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// FindQuestions returns one page of questions matching f.
func (db *DB) FindQuestions(ctx context.Context, f store.Filter, p store.PageRequest) (store.Page, error) {
	where, args := whereClause(f)

	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return store.Page{}, fmt.Errorf("sqlite: count questions: %w", err)
	}

	col, ok := sortColumns[p.Sort.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if p.Sort.Desc {
		dir = "DESC"
	}
	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		` ORDER BY ` + col + ` ` + dir + `, id ` + dir + ` LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, append(args, p.Size, p.Offset())...)
	if err != nil {
		return store.Page{}, fmt.Errorf("sqlite: find questions: %w", err)
	}
	defer rows.Close()

	items := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return store.Page{}, err
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return store.Page{}, fmt.Errorf("sqlite: find questions: %w", err)
	}
	return store.Page{Items: items, Total: total, Index: p.Index, Size: p.Size}, nil
}

func whereClause(f store.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.AuthorID != "" {
		conds = append(conds, "author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.Text != "" {
		conds = append(conds, "(instr(fold(title), fold(?)) > 0 OR instr(fold(content), fold(?)) > 0)")
		args = append(args, f.Text, f.Text)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FindQuestion loads a single aggregate.
func (db *DB) FindQuestion(ctx context.Context, id string) (*models.Question, error) {
	return findQuestion(ctx, db.conn, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findQuestion(ctx context.Context, q queryRower, id string) (*models.Question, error) {
	row := q.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	out, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Question not found")
	}
	return out, err
}

// SaveQuestion inserts or replaces a question, assigning an id when empty.
func (db *DB) SaveQuestion(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("sqlite: encode tags: %w", err)
	}
	docs := make([]answerDoc, len(q.Answers))
	for i, a := range q.Answers {
		docs[i] = toAnswerDoc(a)
	}
	answersJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("sqlite: encode answers: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			category   = excluded.category,
			author_id  = excluded.author_id,
			upvotes    = excluded.upvotes,
			tags       = excluded.tags,
			answers    = excluded.answers,
			updated_at = excluded.updated_at
	`, q.ID, q.Title, q.Content, q.Category, q.Author.ID, q.Upvotes,
		string(tagsJSON), string(answersJSON), q.CreatedAt.UnixMilli(), q.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: save question: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question row; its answers are part of the row.
func (db *DB) DeleteQuestion(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Question not found")
	}
	return nil
}

// IncrementUpvotes adds one upvote in a single UPDATE and returns the new state.
func (db *DB) IncrementUpvotes(ctx context.Context, id string, at time.Time) (*models.Question, error) {
	return db.mutate(ctx, id, `
		UPDATE questions
		SET upvotes = upvotes + 1,
		    updated_at = MAX(?, updated_at + 1)
		WHERE id = ?
	`, at.UnixMilli(), id)
}

// AppendAnswer pushes a onto the answers array in a single UPDATE.
func (db *DB) AppendAnswer(ctx context.Context, id string, a models.Answer, at time.Time) (*models.Question, error) {
	doc, err := json.Marshal(toAnswerDoc(a))
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode answer: %w", err)
	}
	return db.mutate(ctx, id, `
		UPDATE questions
		SET answers = json_insert(answers, '$[#]', json(?)),
		    updated_at = MAX(?, updated_at + 1)
		WHERE id = ?
	`, string(doc), at.UnixMilli(), id)
}

// mutate runs an UPDATE against one question and reads it back in the same transaction.
func (db *DB) mutate(ctx context.Context, id, stmt string, args ...any) (*models.Question, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("Question not found")
	}
	q, err := findQuestion(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit: %w", err)
	}
	return q, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(s scanner) (*models.Question, error) {
	var (
		q                    models.Question
		authorID             string
		tagsJSON, answersRaw string
		created, updated     int64
	)
	if err := s.Scan(&q.ID, &q.Title, &q.Content, &q.Category, &authorID, &q.Upvotes,
		&tagsJSON, &answersRaw, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: scan question: %w", err)
	}
	q.Author = models.Author{ID: authorID}
	q.CreatedAt = fromMillis(created)
	q.UpdatedAt = fromMillis(updated)

	q.Tags = []string{}
	if err := json.Unmarshal([]byte(tagsJSON), &q.Tags); err != nil {
		return nil, fmt.Errorf("sqlite: decode tags of %s: %w", q.ID, err)
	}
	var docs []answerDoc
	if err := json.Unmarshal([]byte(answersRaw), &docs); err != nil {
		return nil, fmt.Errorf("sqlite: decode answers of %s: %w", q.ID, err)
	}
	q.Answers = make([]models.Answer, len(docs))
	for i, d := range docs {
		q.Answers[i] = d.answer()
	}
	return &q, nil
}
