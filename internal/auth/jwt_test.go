package auth

import (
	"context"
	"testing"
	"time"

	"chirp/internal/cache"
	"chirp/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret-key-12345678901234567890",
		JWTIssuer:   "chirp-api",
		JWTAudience: "chirp-client",
		JWTTTLHours: 24,
	}
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := NewJWTManager(testConfig(), nil)

	token, err := m.Issue(42, "alice")
	require.NoError(t, err)

	p, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), p.UserID)
	assert.Equal(t, "alice", p.Username)
	assert.NotEmpty(t, p.TokenID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), p.ExpiresAt, time.Minute)
}

func TestJWTManager_VerifyRejects(t *testing.T) {
	cfg := testConfig()
	m := NewJWTManager(cfg, nil)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{cfg.JWTAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := base()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := base()
	wrongAudience.Audience = jwt.ClaimStrings{"other-client"}
	badSubject := base()
	badSubject.Subject = "not-a-number"
	noExpiry := base()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", sign(&Claims{RegisteredClaims: base()}, jwt.SigningMethodHS256, []byte("other-secret"))},
		{"expired", sign(&Claims{RegisteredClaims: expired}, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"wrong issuer", sign(&Claims{RegisteredClaims: wrongIssuer}, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"wrong audience", sign(&Claims{RegisteredClaims: wrongAudience}, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"bad subject", sign(&Claims{RegisteredClaims: badSubject}, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"missing expiry", sign(&Claims{RegisteredClaims: noExpiry}, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"wrong algorithm", sign(&Claims{RegisteredClaims: base()}, jwt.SigningMethodHS512, []byte(cfg.JWTSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestJWTManager_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	m := NewJWTManager(testConfig(), NewRedisRevocationStore(rdb))
	ctx := context.Background()

	token, err := m.Issue(1, "bob")
	require.NoError(t, err)

	p, err := m.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, p))
	assert.True(t, mr.Exists(cache.RevokedTokenKey(p.TokenID)))
	assert.Greater(t, mr.TTL(cache.RevokedTokenKey(p.TokenID)), 23*time.Hour)

	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	other, err := m.Issue(1, "bob")
	require.NoError(t, err)
	_, err = m.Verify(ctx, other)
	assert.NoError(t, err)
}

func TestNewRedisRevocationStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisRevocationStore(nil))

	m := NewJWTManager(testConfig(), NewRedisRevocationStore(nil))
	assert.NoError(t, m.Revoke(context.Background(), &Principal{TokenID: "x", ExpiresAt: time.Now().Add(time.Hour)}))
}
