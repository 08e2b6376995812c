// Package models defines the forum domain types.
package models

import "time"

// Known categories. The set is open; anything non-blank is accepted.
const (
	CategoryEngineering = "engineering"
	CategoryDataScience = "data-science"
	CategoryBusiness    = "business"
	CategoryProduct     = "product"
	CategoryGeneral     = "general"
)

// Categories lists the well-known categories in display order.
var Categories = []string{
	CategoryEngineering,
	CategoryDataScience,
	CategoryBusiness,
	CategoryProduct,
	CategoryGeneral,
}

// Question is the aggregate root. Answers are embedded and live with it.
type Question struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Category  string    `json:"category" bson:"category"`
	Author    Author    `json:"author" bson:"author"`
	Answers   []Answer  `json:"answers" bson:"answers"`
	Upvotes   int       `json:"upvotes" bson:"upvotes"`
	Tags      []string  `json:"tags" bson:"tags"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Answer is embedded in Question.Answers.
type Answer struct {
	ID        string    `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	Author    Author    `json:"author" bson:"author"`
	Upvotes   int       `json:"upvotes" bson:"upvotes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Author references a User by id. Only ID is persisted; the remaining
// fields are filled from the user store on read.
type Author struct {
	ID             string `json:"id" bson:"id"`
	Name           string `json:"name,omitempty" bson:"-"`
	Email          string `json:"email,omitempty" bson:"-"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"-"`
}

// User is an account record owned by the identity system.
type User struct {
	ID             string `json:"id" bson:"_id" yaml:"id"`
	Name           string `json:"name" bson:"name" yaml:"name"`
	Email          string `json:"email" bson:"email" yaml:"email"`
	ProfilePicture string `json:"profilePicture" bson:"profilePicture" yaml:"profilePicture"`
	Role           string `json:"role" bson:"role" yaml:"role"`
}

// AuthorOf projects u into an author reference.
func AuthorOf(u User) Author {
	return Author{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
	}
}

// IsAuthoredBy reports whether userID authored q.
func (q *Question) IsAuthoredBy(userID string) bool {
	return q.Author.ID == userID
}
