package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	types "github.com/Apurer/gifting-api/internal/domains/admins/application/types"
	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
	"github.com/Apurer/gifting-api/internal/domains/admins/ports"
)

const (
	tokenType        = "Bearer"
	defaultFullName  = "System Administrator"
	defaultEmailHost = "localhost"
)

// Service exposes admin authentication use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, sessions: sessions, tokens: tokens}
}

// Login checks credentials of an active admin and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*types.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !admin.Active || !admin.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	token, expiresAt, err := s.tokens.Issue(admin.Username)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, admin.Username, hashToken(token), expiresAt); err != nil {
		return nil, err
	}
	return &types.LoginResult{
		Token:     token,
		Type:      tokenType,
		Username:  admin.Username,
		FullName:  admin.FullName,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, hashToken(token))
}

// Authenticate resolves the active admin behind a bearer token.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Admin, error) {
	username, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil, mapError(ports.ErrInvalidToken)
	}
	active, err := s.sessions.Active(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, mapError(ports.ErrInvalidToken)
	}
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidToken)
		}
		return nil, err
	}
	if !admin.Active {
		return nil, mapError(ports.ErrInvalidToken)
	}
	return admin, nil
}

// EnsureDefaultAdmin creates the bootstrap admin when no admin with username exists.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return false, err
	}
	admin, err := domain.NewAdmin(username, password, defaultFullName, username+"@"+defaultEmailHost)
	if err != nil {
		return false, mapError(err)
	}
	if _, err := s.repo.Save(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var _ ports.Service = (*Service)(nil)
