package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdmin_HashesPassword(t *testing.T) {
	admin, err := NewAdmin(" admin ", "secret123", "System Administrator", "admin@example.com")
	require.NoError(t, err)

	assert.Equal(t, "admin", admin.Username)
	assert.True(t, admin.Active)
	assert.NotEqual(t, "secret123", admin.PasswordHash)
	assert.True(t, admin.CheckPassword("secret123"))
	assert.False(t, admin.CheckPassword("secret124"))
	assert.False(t, admin.CheckPassword(""))
}

func TestNewAdmin_Validation(t *testing.T) {
	_, err := NewAdmin("", "secret123", "Name", "")
	assert.ErrorIs(t, err, ErrEmptyUsername)

	_, err = NewAdmin("admin", "", "Name", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = NewAdmin("admin", "abc", "Name", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = NewAdmin("admin", "secret123", " ", "")
	assert.ErrorIs(t, err, ErrEmptyFullName)

	_, err = NewAdmin("admin", "secret123", "Name", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}
