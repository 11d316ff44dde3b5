// Package auth resolves bearer credentials to user identities.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Verifier validates HS256 tokens issued by the identity provider. The
// subject claim carries the user id, the email claim the user's address.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the shared signing secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// UserFromToken parses and validates a bearer token, returning the caller
// identity. Any failure — bad signature, expiry, malformed subject — is an
// invalid credential; the distinction is never surfaced to the caller.
func (v *Verifier) UserFromToken(ctx context.Context, token string) (models.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("parse token: %w", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return models.User{}, fmt.Errorf("unexpected claims type")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return models.User{}, fmt.Errorf("parse subject: %w", err)
	}
	return models.User{ID: id, Email: c.Email}, nil
}

var _ interfaces.Authenticator = (*Verifier)(nil)
