package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
)

type userDoc struct {
	ID             any    `bson:"_id"`
	Name           string `bson:"name"`
	Email          string `bson:"email"`
	ProfilePicture string `bson:"profilePicture"`
	Role           string `bson:"role"`
}

func (d userDoc) user() models.User {
	return models.User{
		ID:             idString(d.ID),
		Name:           d.Name,
		Email:          d.Email,
		ProfilePicture: d.ProfilePicture,
		Role:           d.Role,
	}
}

// FindUser returns the user with the given id.
func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	u := doc.user()
	return &u, nil
}

// FindUsers returns every existing user among ids.
func (s *Store) FindUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	in := bson.A{}
	for _, id := range ids {
		in = append(in, id)
		if oid, err := bson.ObjectIDFromHex(id); err == nil {
			in = append(in, oid)
		}
	}
	cur, err := s.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: in}}}},
		options.Find().SetProjection(bson.D{
			{Key: "name", Value: 1}, {Key: "email", Value: 1},
			{Key: "profilePicture", Value: 1}, {Key: "role", Value: 1},
		}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode users: %w", err)
	}
	for _, d := range docs {
		u := d.user()
		out[u.ID] = u
	}
	return out, nil
}

// PutUser upserts a user keyed by its string id.
func (s *Store) PutUser(ctx context.Context, u models.User) error {
	doc := userDoc{ID: u.ID, Name: u.Name, Email: u.Email, ProfilePicture: u.ProfilePicture, Role: u.Role}
	_, err := s.users.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: put user: %w", err)
	}
	return nil
}
