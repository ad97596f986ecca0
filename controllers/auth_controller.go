package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/utils"
)

// AuthController exchanges credentials for access tokens.
type AuthController struct {
	authenticator *auth.Authenticator
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(authenticator *auth.Authenticator) *AuthController {
	return &AuthController{authenticator: authenticator}
}

type tokenForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Token handles the password grant: form encoded username and password in,
// {"access_token", "token_type"} out.
func (a *AuthController) Token(ctx *gin.Context) {
	var form tokenForm
	if err := ctx.ShouldBind(&form); err != nil {
		fail(ctx, bindError(err))
		return
	}

	token, err := a.authenticator.Login(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, token)
}
