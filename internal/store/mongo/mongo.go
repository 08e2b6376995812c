// Package mongo stores questions as MongoDB documents with embedded answers.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mentorlink/forum/internal/store"
)

const (
	questionsCollection = "questions"
	usersCollection     = "users"
)

var (
	_ store.QuestionStore = (*Store)(nil)
	_ store.UserStore     = (*Store)(nil)
	_ store.UserWriter    = (*Store)(nil)
)

// Store is a MongoDB-backed question and user store.
type Store struct {
	client    *mongo.Client
	questions *mongo.Collection
	users     *mongo.Collection
}

// Open connects to uri and selects database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	db := client.Database(database)
	s := &Store{
		client:    client,
		questions: db.Collection(questionsCollection),
		users:     db.Collection(usersCollection),
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the category and author listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.questions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// idFilter matches _id stored either as a string or as an ObjectID.
func idFilter(id string) bson.D {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{id, oid}}}}}
	}
	return bson.D{{Key: "_id", Value: id}}
}

// storedID is the _id value used when inserting a caller-chosen id: an
// ObjectID when id is ObjectID hex, the plain string otherwise.
func storedID(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case bson.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}
