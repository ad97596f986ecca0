package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

type mapUsers map[string]*models.User

func (m mapUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m[username]; ok {
		return u, nil
	}
	return nil, &store.NotFoundError{Entity: "User"}
}

type failingUsers struct{}

func (failingUsers) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func newTestAuthenticator(t *testing.T, users UserLookup) (*Authenticator, *TokenService) {
	t.Helper()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	tokens := NewTokenService(testSecret, time.Hour)
	a, err := NewAuthenticator(users, hasher, tokens)
	require.NoError(t, err)
	return a, tokens
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", digest)
	assert.True(t, h.Verify("password123", digest))
	assert.False(t, h.Verify("password124", digest))

	again, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "digests are salted")

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).Cost)
}

func TestAuthenticator_Login(t *testing.T) {
	digest, err := NewBcryptHasher(bcrypt.MinCost).Hash("password123")
	require.NoError(t, err)
	users := mapUsers{"alice": {ID: 9, Username: "alice", Password: digest}}

	a, tokens := newTestAuthenticator(t, users)

	tok, err := a.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	id, err := tokens.Validate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)

	_, err = a.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = a.Login(context.Background(), "mallory", "password123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	// usernames match exactly at login
	_, err = a.Login(context.Background(), "Alice", "password123")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestAuthenticator_StoreFailure(t *testing.T) {
	a, _ := newTestAuthenticator(t, failingUsers{})
	_, err := a.Login(context.Background(), "alice", "password123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, utils.ErrInvalidCredentials)
}
