package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	ctx.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := pathID(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"abc", "-1", "1.5", ""} {
		ctx.Params = gin.Params{{Key: "id", Value: raw}}
		_, err := pathID(ctx, "id")
		var apiErr *utils.APIError
		require.ErrorAs(t, err, &apiErr, raw)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	}
}

func TestInputError(t *testing.T) {
	var apiErr *utils.APIError

	require.ErrorAs(t, inputError(&store.NotFoundError{Entity: "Post"}), &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Post not found", apiErr.Detail)

	require.ErrorAs(t, inputError(fmt.Errorf("create: %w", store.ErrConflict)), &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)

	require.ErrorAs(t, inputError(&models.ValidationError{Field: "title", Message: "may not be null"}), &apiErr)
	assert.Equal(t, "title may not be null", apiErr.Detail)

	plain := errors.New("disk full")
	assert.Same(t, plain, inputError(plain))
}
