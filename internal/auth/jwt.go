// Package auth issues and verifies bearer tokens and tracks revoked tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chirp/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredential is returned for malformed, expired or foreign tokens.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrTokenRevoked is returned for tokens whose jti was revoked by logout.
	ErrTokenRevoked = errors.New("token revoked")
)

// Principal is the verified identity carried by a token.
type Principal struct {
	UserID    uint
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// TokenVerifier verifies a credential and yields the viewer identity.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (*Principal, error)
}

// TokenIssuer creates credentials for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

// Claims are the JWT claims used by chirp tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens.
type JWTManager struct {
	secret      []byte
	issuer      string
	audience    string
	ttl         time.Duration
	revocations RevocationStore
	now         func() time.Time
}

// NewJWTManager returns a manager configured from cfg. revocations may be nil.
func NewJWTManager(cfg *config.Config, revocations RevocationStore) *JWTManager {
	return &JWTManager{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.JWTIssuer,
		audience:    cfg.JWTAudience,
		ttl:         time.Duration(cfg.JWTTTLHours) * time.Hour,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue creates a signed token for the given user.
func (m *JWTManager) Issue(userID uint, username string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates signature, issuer, audience and expiry, then checks revocation.
func (m *JWTManager) Verify(ctx context.Context, credential string) (*Principal, error) {
	claims, err := m.parse(credential)
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidCredential)
	}

	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &Principal{
		UserID:    uint(userID),
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke marks the principal's token as unusable until it would have expired anyway.
func (m *JWTManager) Revoke(ctx context.Context, p *Principal) error {
	if m.revocations == nil || p == nil || p.TokenID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revocations.Revoke(ctx, p.TokenID, ttl)
}

func (m *JWTManager) parse(credential string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims,
		func(_ *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
