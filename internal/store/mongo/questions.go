package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store"
)

type questionDoc struct {
	ID        any         `bson:"_id,omitempty"`
	Title     string      `bson:"title"`
	Content   string      `bson:"content"`
	Category  string      `bson:"category"`
	AuthorID  string      `bson:"authorId"`
	Answers   []answerDoc `bson:"answers"`
	Upvotes   int         `bson:"upvotes"`
	Tags      []string    `bson:"tags"`
	CreatedAt time.Time   `bson:"createdAt"`
	UpdatedAt time.Time   `bson:"updatedAt"`
}

type answerDoc struct {
	ID        string    `bson:"id"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"authorId"`
	Upvotes   int       `bson:"upvotes"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toAnswerDoc(a models.Answer) answerDoc {
	return answerDoc{
		ID:        a.ID,
		Content:   a.Content,
		AuthorID:  a.Author.ID,
		Upvotes:   a.Upvotes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toQuestionDoc(q *models.Question) questionDoc {
	answers := make([]answerDoc, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = toAnswerDoc(a)
	}
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return questionDoc{
		ID:        q.ID,
		Title:     q.Title,
		Content:   q.Content,
		Category:  q.Category,
		AuthorID:  q.Author.ID,
		Answers:   answers,
		Upvotes:   q.Upvotes,
		Tags:      tags,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func (d questionDoc) question() *models.Question {
	q := &models.Question{
		ID:        idString(d.ID),
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Author:    models.Author{ID: d.AuthorID},
		Answers:   make([]models.Answer, len(d.Answers)),
		Upvotes:   d.Upvotes,
		Tags:      d.Tags,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	for i, a := range d.Answers {
		q.Answers[i] = models.Answer{
			ID:        a.ID,
			Content:   a.Content,
			Author:    models.Author{ID: a.AuthorID},
			Upvotes:   a.Upvotes,
			CreatedAt: a.CreatedAt.UTC(),
			UpdatedAt: a.UpdatedAt.UTC(),
		}
	}
	return q
}

func filterDoc(f store.Filter) bson.D {
	out := bson.D{}
	if f.Category != "" {
		out = append(out, bson.E{Key: "category", Value: f.Category})
	}
	if f.AuthorID != "" {
		out = append(out, bson.E{Key: "authorId", Value: f.AuthorID})
	}
	if f.Text != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}
		out = append(out, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}
	return out
}

// FindQuestions returns one page of questions matching f.
func (s *Store) FindQuestions(ctx context.Context, f store.Filter, p store.PageRequest) (store.Page, error) {
	filter := filterDoc(f)

	total, err := s.questions.CountDocuments(ctx, filter)
	if err != nil {
		return store.Page{}, fmt.Errorf("mongo: count questions: %w", err)
	}

	dir := 1
	if p.Sort.Desc {
		dir = -1
	}
	field := p.Sort.Field
	if field == "" {
		field = store.FieldCreatedAt
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(p.Offset()).
		SetLimit(int64(p.Size))

	cur, err := s.questions.Find(ctx, filter, opts)
	if err != nil {
		return store.Page{}, fmt.Errorf("mongo: find questions: %w", err)
	}
	var docs []questionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return store.Page{}, fmt.Errorf("mongo: decode questions: %w", err)
	}

	items := make([]models.Question, len(docs))
	for i, d := range docs {
		items[i] = *d.question()
	}
	return store.Page{Items: items, Total: total, Index: p.Index, Size: p.Size}, nil
}

// FindQuestion loads a single aggregate.
func (s *Store) FindQuestion(ctx context.Context, id string) (*models.Question, error) {
	var doc questionDoc
	err := s.questions.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find question: %w", err)
	}
	return doc.question(), nil
}

// SaveQuestion inserts q under a fresh ObjectID when its id is empty.
// Otherwise it replaces the stored document in place, keeping whatever _id
// type it was stored with, and inserts it only when nothing matches.
func (s *Store) SaveQuestion(ctx context.Context, q *models.Question) error {
	doc := toQuestionDoc(q)
	if q.ID == "" {
		oid := bson.NewObjectID()
		doc.ID = oid
		if _, err := s.questions.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("mongo: insert question: %w", err)
		}
		q.ID = oid.Hex()
		return nil
	}

	// _id is immutable; leaving it out of the replacement keeps the stored one.
	doc.ID = nil
	res, err := s.questions.ReplaceOne(ctx, idFilter(q.ID), doc)
	if err != nil {
		return fmt.Errorf("mongo: save question: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	doc.ID = storedID(q.ID)
	if _, err := s.questions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert question: %w", err)
	}
	return nil
}

// DeleteQuestion removes the document and with it the embedded answers.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.questions.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("mongo: delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Question not found")
	}
	return nil
}

// bumpUpdatedAt sets updatedAt to max(at, updatedAt + 1ms).
func bumpUpdatedAt(at time.Time) bson.E {
	return bson.E{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
		at,
		bson.D{{Key: "$add", Value: bson.A{"$updatedAt", 1}}},
	}}}}
}

// IncrementUpvotes adds one upvote server-side.
func (s *Store) IncrementUpvotes(ctx context.Context, id string, at time.Time) (*models.Question, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "upvotes", Value: bson.D{{Key: "$add", Value: bson.A{"$upvotes", 1}}}},
			bumpUpdatedAt(at),
		}}},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// AppendAnswer pushes a onto the answers array server-side.
func (s *Store) AppendAnswer(ctx context.Context, id string, a models.Answer, at time.Time) (*models.Question, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "answers", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$answers", bson.A{}}}},
				bson.A{bson.D{{Key: "$literal", Value: toAnswerDoc(a)}}},
			}}}},
			bumpUpdatedAt(at),
		}}},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *Store) findOneAndUpdate(ctx context.Context, id string, update any) (*models.Question, error) {
	var doc questionDoc
	err := s.questions.FindOneAndUpdate(ctx, idFilter(id), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: update question: %w", err)
	}
	return doc.question(), nil
}
