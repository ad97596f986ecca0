package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenService_RoundTrip(t *testing.T) {
	clock := newClock()
	svc := NewTokenService(testSecret, 0, WithClock(clock.Now))
	assert.Equal(t, 60*time.Minute, svc.TTL())

	token, err := svc.Issue(42)
	require.NoError(t, err)

	id, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = svc.Validate(token)
	require.NoError(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	clock := newClock()
	svc := NewTokenService(testSecret, time.Hour, WithClock(clock.Now))
	token, err := svc.Issue(7)
	require.NoError(t, err)

	clock.t = clock.t.Add(61 * time.Minute)
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, err := svc.Issue(7)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	replacement := byte('A')
	if token[sigStart] == 'A' {
		replacement = 'B'
	}
	tampered := token[:sigStart] + string(replacement) + token[sigStart+1:]

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, err := NewTokenService("other", time.Hour).Issue(7)
	require.NoError(t, err)

	_, err = NewTokenService(testSecret, time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenService_RejectsMalformed(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{
			name: "other hmac algorithm",
			token: sign(jwt.SigningMethodHS384, []byte(testSecret), jwt.RegisteredClaims{
				Subject: "1", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
		{
			name: "alg none",
			token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{
				Subject: "1", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
		{
			name: "missing subject",
			token: sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
		{
			name: "non numeric subject",
			token: sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				Subject: "alice", IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
		{
			name: "missing expiry",
			token: sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				Subject: "1", IssuedAt: jwt.NewNumericDate(now),
			}),
		},
		{
			name: "missing issued at",
			token: sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				Subject: "1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}
