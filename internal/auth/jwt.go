package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthenticator verifies HS256 bearer tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a verifier for tokens signed with secret.
func NewJWT(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), now: time.Now}
}

// Authenticate verifies the bearer token and returns its subject.
// The principal is read from the "id" claim, then "_id", then "sub".
func (a *JWTAuthenticator) Authenticate(r *http.Request) (string, error) {
	raw := bearerToken(r)
	if raw == "" {
		return "", ErrMissingCredentials
	}

	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredentials
	}

	for _, key := range []string{"id", "_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", ErrInvalidCredentials
}

// Sign issues an HS256 token for userID valid for ttl. Used by tests and
// local tooling; production tokens come from the identity service.
func (a *JWTAuthenticator) Sign(userID string, ttl time.Duration) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}
