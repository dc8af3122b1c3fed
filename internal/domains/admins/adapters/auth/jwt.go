package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Apurer/gifting-api/internal/domains/admins/ports"
)

// DefaultTTL applies when no token lifetime is configured.
const DefaultTTL = 24 * time.Hour

const adminRole = "ADMIN"

var _ ports.TokenIssuer = (*JWTManager)(nil)

type JWTConfig struct {
	Issuer string
	Secret string
	TTL    time.Duration
}

// JWTManager signs HS256 admin tokens.
type JWTManager struct {
	cfg JWTConfig
	now func() time.Time
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTManager(cfg JWTConfig) (*JWTManager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &JWTManager{cfg: cfg, now: time.Now}, nil
}

// WithClock overrides the clock used for issuing and validating tokens.
func (m *JWTManager) WithClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

func (m *JWTManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.cfg.TTL)
	claims := Claims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	return signed, exp, err
}

func (m *JWTManager) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}
	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Role != adminRole || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
