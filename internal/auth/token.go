// Package auth issues and verifies JWT access/refresh tokens, hashes
// passwords and carries the authenticated user through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	// ErrTokenExpired is returned for well-formed tokens past their exp claim
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens and unexpected algorithms
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked is returned for tokens present in the revocation store
	ErrTokenRevoked = errors.New("token revoked")
	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("jwt secret is required")
)

// Claims are the JWT claims carried by both token types
type Claims struct {
	UserID int64     `json:"user_id"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is an access token plus its refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenConfig configures the token service
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Option customizes a TokenService
type Option func(*TokenService)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

// WithRevocationStore enables refresh token revocation
func WithRevocationStore(store RevocationStore) Option {
	return func(s *TokenService) { s.revoked = store }
}

// TokenService signs and verifies HS256 tokens with an injected secret
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	revoked    RevocationStore
}

// NewTokenService builds a TokenService. It refuses to start without a secret.
func NewTokenService(cfg TokenConfig, opts ...Option) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	s := &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
		revoked:    NopRevocationStore{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AccessTTL returns the access token lifetime
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh token lifetime
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue creates a new access/refresh pair for userID
func (s *TokenService) Issue(userID int64) (TokenPair, error) {
	access, err := s.sign(userID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(userID int64, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of a token and returns its claims.
// It does not check the token type; callers compare Claims.Type themselves.
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.UserID == 0 || (claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke marks a token's jti as unusable until the token would have expired
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

// CheckRevoked returns ErrTokenRevoked when the token's jti has been revoked
func (s *TokenService) CheckRevoked(ctx context.Context, claims *Claims) error {
	if claims.ID == "" {
		return nil
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}
