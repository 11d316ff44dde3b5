package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("test-secret")

func signWith(t *testing.T, secret []byte, sub, email string, expiresIn time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(expiresIn).Unix(),
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func TestUserFromToken_Valid(t *testing.T) {
	verifier := NewVerifier(testSecret)
	userID := uuid.New()

	token := signWith(t, testSecret, userID.String(), "alice@example.com", time.Hour)
	user, err := verifier.UserFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("UserFromToken() error = %v", err)
	}
	if user.ID != userID {
		t.Errorf("ID = %s, want %s", user.ID, userID)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

func TestUserFromToken_Rejections(t *testing.T) {
	verifier := NewVerifier(testSecret)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.NewString(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signWith(t, []byte("other-secret"), uuid.NewString(), "a@b.com", time.Hour)},
		{"expired", signWith(t, testSecret, uuid.NewString(), "a@b.com", -time.Hour)},
		{"non-uuid subject", signWith(t, testSecret, "admin", "a@b.com", time.Hour)},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := verifier.UserFromToken(context.Background(), tt.token); err == nil {
				t.Error("UserFromToken() error = nil, want rejection")
			}
		})
	}
}
