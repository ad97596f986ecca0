package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// ContextUserKey is the key used to store the authenticated user in Gin context.
const ContextUserKey = "current_user"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (uint, error)
}

// UserGetter loads the token subject.
type UserGetter interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// AuthRequired ensures the request carries a valid bearer token for an
// existing user.
func AuthRequired(tokens TokenValidator, users UserGetter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			utils.AbortWithError(ctx, utils.ErrUnauthenticated)
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				utils.AbortWithError(ctx, utils.ErrExpiredToken)
			} else {
				utils.AbortWithError(ctx, utils.ErrInvalidCredentials)
			}
			return
		}

		user, err := users.GetUser(ctx.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.AbortWithError(ctx, utils.ErrInvalidCredentials)
			} else {
				utils.AbortWithError(ctx, err)
			}
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// CurrentUser returns the user set by AuthRequired.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
