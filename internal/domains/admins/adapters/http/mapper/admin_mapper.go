package mapper

import (
	"time"

	types "github.com/Apurer/gifting-api/internal/domains/admins/application/types"
)

// Login is the admin credential payload.
type Login struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func FromLoginResult(r *types.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     r.Token,
		Type:      r.Type,
		Username:  r.Username,
		FullName:  r.FullName,
		ExpiresAt: r.ExpiresAt,
	}
}
