package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mentorlink/forum/internal/apperr"
	"github.com/mentorlink/forum/internal/models"
)

const userColumns = `id, name, email, profile_picture, role`

// FindUser returns the user with the given id.
func (db *DB) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.ProfilePicture, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find user: %w", err)
	}
	return &u, nil
}

// FindUsers returns every existing user among ids.
func (db *DB) FindUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ProfilePicture, &u.Role); err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// PutUser inserts or replaces a user record.
func (db *DB) PutUser(ctx context.Context, u models.User) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name            = excluded.name,
			email           = excluded.email,
			profile_picture = excluded.profile_picture,
			role            = excluded.role
	`, u.ID, u.Name, u.Email, u.ProfilePicture, u.Role)
	if err != nil {
		return fmt.Errorf("sqlite: put user: %w", err)
	}
	return nil
}
