package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
	"github.com/Apurer/gifting-api/internal/domains/admins/ports"
)

var (
	_ ports.Repository   = (*Repository)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// Repository is an in-memory admin persistence adapter keyed by case-insensitive username.
type Repository struct {
	mu     sync.RWMutex
	admins map[string]*domain.Admin
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{admins: map[string]*domain.Admin{}}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Repository) Save(_ context.Context, admin *domain.Admin) (*domain.Admin, error) {
	if admin == nil {
		return nil, errors.New("admin is nil")
	}
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *admin
	if existing, ok := r.admins[normalize(admin.Username)]; ok {
		clone.ID = existing.ID
	} else if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	}
	r.admins[normalize(admin.Username)] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[normalize(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *admin
	return &clone, nil
}

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	now      func() time.Time
}

type session struct {
	username  string
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]session{}, now: time.Now}
}

// WithClock overrides the clock used for expiry checks.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SessionStore) Save(_ context.Context, username, tokenHash string, expiresAt time.Time) error {
	if tokenHash == "" {
		return errors.New("token hash is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = session{username: username, expiresAt: expiresAt}
	return nil
}

func (s *SessionStore) Active(_ context.Context, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[tokenHash]
	return ok && s.now().Before(entry.expiresAt), nil
}

func (s *SessionStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for hash, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, hash)
			purged++
		}
	}
	return purged, nil
}
