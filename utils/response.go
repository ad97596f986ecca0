package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DetailResponse is the body of every error and of delete confirmations.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Success writes data with 200.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Detail writes a 200 {"detail": msg} body.
func Detail(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, DetailResponse{Detail: msg})
}

// AbortWithError maps err onto its HTTP response and stops the handler
// chain. Errors that are not an *APIError are logged and surface as 500.
func AbortWithError(ctx *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		Logger.Error("unhandled request error",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.String("request_id", ctx.GetString(RequestIDKey)),
			zap.Error(err),
		)
		apiErr = ErrInternal
	}
	if apiErr.Challenge {
		ctx.Header("WWW-Authenticate", "Bearer")
	}
	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(apiErr.Status, DetailResponse{Detail: apiErr.Detail})
}
