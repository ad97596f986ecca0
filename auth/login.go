package auth

import (
	"context"
	"errors"

	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// UserLookup is the slice of store.Store the login flow needs.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Token is the body returned by a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticator exchanges username and password for a bearer token.
type Authenticator struct {
	users  UserLookup
	hasher Hasher
	tokens *TokenService
	// dummy is compared against when the user does not exist.
	dummy string
}

// NewAuthenticator precomputes the digest used for unknown usernames.
func NewAuthenticator(users UserLookup, hasher Hasher, tokens *TokenService) (*Authenticator, error) {
	dummy, err := hasher.Hash("gram-dummy-password")
	if err != nil {
		return nil, err
	}
	return &Authenticator{users: users, hasher: hasher, tokens: tokens, dummy: dummy}, nil
}

// Login fails with utils.ErrInvalidCredentials for both unknown users and
// wrong passwords.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Token{}, err
		}
		a.hasher.Verify(password, a.dummy)
		return Token{}, utils.ErrInvalidCredentials
	}
	if !a.hasher.Verify(password, user.Password) {
		return Token{}, utils.ErrInvalidCredentials
	}

	access, err := a.tokens.Issue(user.ID)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: "bearer"}, nil
}
