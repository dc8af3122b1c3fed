package ports

import (
	"context"

	types "github.com/Apurer/gifting-api/internal/domains/admins/application/types"
	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
)

// Service exposes admin authentication use cases to adapters.
type Service interface {
	Login(ctx context.Context, username, password string) (*types.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.Admin, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error)
}
