// Package userdir loads user records from a directory of YAML files into a
// user store and keeps the store in sync as files change.
package userdir

import (
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/mentorlink/forum/internal/models"
)

// IsUserFile reports whether path names a YAML user file.
func IsUserFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parse decodes one user record. The id defaults to stem when the file omits it.
func Parse(data []byte, stem string) (models.User, error) {
	var u models.User
	if err := yaml.Unmarshal(data, &u); err != nil {
		return models.User{}, fmt.Errorf("userdir: parse: %w", err)
	}
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		u.ID = stem
	}
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)

	if err := validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Email, is.EmailFormat),
	); err != nil {
		return models.User{}, fmt.Errorf("userdir: invalid user %q: %w", u.ID, err)
	}
	return u, nil
}
