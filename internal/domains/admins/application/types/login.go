package types

import "time"

// LoginResult is returned to a successfully authenticated admin.
type LoginResult struct {
	Token     string
	Type      string
	Username  string
	FullName  string
	ExpiresAt time.Time
}
