// Package testutil provides shared test helpers for setting up stores and users.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mentorlink/forum/internal/models"
	"github.com/mentorlink/forum/internal/store/sqlite"
)

// TestDB creates a temporary SQLite store that is automatically cleaned up.
func TestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "forum-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := sqlite.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedUser stores a user with the given id and a derived name and email.
func SeedUser(t *testing.T, db *sqlite.DB, id string) models.User {
	t.Helper()
	u := models.User{
		ID:             id,
		Name:           "User " + id,
		Email:          id + "@example.com",
		ProfilePicture: "https://cdn.example.com/" + id + ".png",
		Role:           "mentee",
	}
	if err := db.PutUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

// Clock is a manually advanced time source.
type Clock struct {
	T time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{T: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
