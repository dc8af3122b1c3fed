package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/gifting-api/internal/domains/admins/domain"
	"github.com/Apurer/gifting-api/internal/domains/admins/ports"
)

var (
	_ ports.Repository   = (*Repository)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// Repository persists admins in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type adminRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Username  string    `gorm:"column:username;size:100;not null;uniqueIndex"`
	Password  string    `gorm:"column:password_hash;size:255;not null"`
	FullName  string    `gorm:"column:full_name;size:200;not null"`
	Email     string    `gorm:"column:email;size:200"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (adminRecord) TableName() string { return "admins" }

type sessionRecord struct {
	TokenHash string    `gorm:"primaryKey;column:token_hash;size:64"`
	Username  string    `gorm:"column:username;size:100;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "admin_sessions" }

// Models lists the admin tables for schema migration.
func Models() []any {
	return []any{&adminRecord{}, &sessionRecord{}}
}

// Save inserts or updates an admin keyed by username.
func (r *Repository) Save(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, errors.New("admin is nil")
	}
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	record := adminRecord{
		Username: strings.TrimSpace(admin.Username),
		Password: admin.PasswordHash,
		FullName: admin.FullName,
		Email:    admin.Email,
		Active:   admin.Active,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "full_name", "email", "active", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByUsername(ctx, record.Username)
}

// GetByUsername fetches an admin by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record adminRecord
	if err := r.db.WithContext(ctx).First(&record, "username = ?", strings.TrimSpace(username)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.Admin{
		ID:           record.ID,
		Username:     record.Username,
		PasswordHash: record.Password,
		FullName:     record.FullName,
		Email:        record.Email,
		Active:       record.Active,
	}, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres admin repository not configured")
	}
	return nil
}

// SessionStore persists issued admin tokens in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Save(ctx context.Context, username, tokenHash string, expiresAt time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if tokenHash == "" {
		return errors.New("token hash is required")
	}
	rec := sessionRecord{TokenHash: tokenHash, Username: strings.TrimSpace(username), ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "expires_at"}),
		}).
		Create(&rec).Error
}

func (s *SessionStore) Active(ctx context.Context, tokenHash string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("token_hash = ? AND expires_at > ?", tokenHash, time.Now()).
		Count(&count).Error
	return count > 0, err
}

func (s *SessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "token_hash = ?", tokenHash).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}
