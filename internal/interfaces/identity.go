package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/realtime-ledger-system/internal/models"
)

// Authenticator resolves a bearer credential to the calling user.
type Authenticator interface {
	UserFromToken(ctx context.Context, token string) (models.User, error)
}

// Directory maps an email address to a user id. The mapping requires
// elevated privilege, so it is injected separately from the store surface
// exposed to ordinary callers. Returns ErrUserNotFound on zero matches.
type Directory interface {
	UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
}
