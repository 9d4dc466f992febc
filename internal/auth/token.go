// Package auth issues and verifies bearer tokens, hashes passwords and
// provides the gin middleware guarding authenticated routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stwalsh4118/motopark/api/internal/config"
)

// Issuer is the iss claim on every token this service signs.
const Issuer = "motorbike-parking-api"

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt secret is required")

// Claims is the identity carried by a token.
type Claims struct {
	UserID      string `json:"id"`
	Email       string `json:"email"`
	IsAnonymous bool   `json:"isAnonymous"`
	IsAdmin     bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// TokenService signs and verifies HS256 tokens with a fixed secret and
// lifetime. It is immutable after construction and safe for concurrent use.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService from cfg.
func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.ExpiresIn <= 0 {
		return nil, fmt.Errorf("jwt lifetime must be positive, got %s", cfg.ExpiresIn)
	}
	return &TokenService{
		secret:    []byte(cfg.Secret),
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}, nil
}

// Issue signs a token for the given identity.
func (s *TokenService) Issue(id, email string, isAnonymous, isAdmin bool) (string, error) {
	now := s.now()

	claims := &Claims{
		UserID:      id,
		Email:       email,
		IsAnonymous: isAnonymous,
		IsAdmin:     isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks its signature, issuer and expiry.
// Errors wrap the jwt sentinel errors so callers can tell expiry apart.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
