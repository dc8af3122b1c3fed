package domain

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrEmptyFullName = errors.New("full name is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
)

const minPasswordLength = 6

// Admin is a back-office operator allowed to manage the catalog and orders.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Email        string
	Active       bool
}

// NewAdmin builds an active admin with a bcrypt-hashed password.
func NewAdmin(username, password, fullName, email string) (*Admin, error) {
	admin := &Admin{
		Username: strings.TrimSpace(username),
		FullName: strings.TrimSpace(fullName),
		Email:    strings.TrimSpace(email),
		Active:   true,
	}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	if err := admin.Validate(); err != nil {
		return nil, err
	}
	return admin, nil
}

// SetPassword replaces the stored hash.
func (a *Admin) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (a *Admin) CheckPassword(password string) bool {
	if a.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// Validate re-applies core invariants for persistence.
func (a *Admin) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if a.PasswordHash == "" {
		return ErrEmptyPassword
	}
	if strings.TrimSpace(a.FullName) == "" {
		return ErrEmptyFullName
	}
	if a.Email != "" && !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
