package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
)

var (
	ErrNotFound           = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Repository interface {
	Save(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// SessionStore tracks issued tokens by hash so they can be revoked before they expire.
type SessionStore interface {
	Save(ctx context.Context, username, tokenHash string, expiresAt time.Time) error
	Active(ctx context.Context, tokenHash string) (bool, error)
	Delete(ctx context.Context, tokenHash string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
	Verify(token string) (subject string, err error)
}
