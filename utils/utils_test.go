package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAbortWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		challenge  bool
	}{
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, `{"detail":"Not authenticated"}`, true},
		{"wrapped expired", fmt.Errorf("auth: %w", ErrExpiredToken), http.StatusUnauthorized, `{"detail":"Access token has expired"}`, true},
		{"forbidden", Forbidden("Cannot modify other user's post"), http.StatusForbidden, `{"detail":"Cannot modify other user's post"}`, false},
		{"validation", Validation("username taken"), http.StatusUnprocessableEntity, `{"detail":"username taken"}`, false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, `{"detail":"Internal server error"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(rec)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			AbortWithError(ctx, tt.err)

			assert.True(t, ctx.IsAborted())
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			if tt.challenge {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	assert.ErrorIs(t, fmt.Errorf("x: %w", ErrInvalidCredentials), ErrInvalidCredentials)
	assert.NotErrorIs(t, ErrExpiredToken, ErrInvalidCredentials)
}

func TestRecoveryWithZap(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithZap(zap.NewNop(), true))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("Authorization", "Bearer secret")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}

func TestRedactAuthorization(t *testing.T) {
	out := redactAuthorization("GET / HTTP/1.1\r\nauthorization: Bearer abc\r\nHost: x\r\n")
	assert.NotContains(t, out, "abc")
	assert.Contains(t, out, "Host: x")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi ", Sanitize(`hi <script>alert(1)</script>`))
	assert.Nil(t, SanitizePtr(nil))
	in := "<b>bold</b>"
	require.NotNil(t, SanitizePtr(&in))
	assert.Equal(t, "<b>bold</b>", *SanitizePtr(&in))
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	var hooked bool
	srv.OnShutdown(func() { hooked = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, srv.Run(ctx))
	assert.True(t, hooked)
}
