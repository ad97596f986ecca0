package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cppla/gram/middleware"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

func init() {
	// report json/form names instead of Go field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// pathID parses an unsigned integer path parameter.
func pathID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, strconv.IntSize)
	if err != nil {
		return 0, utils.Validation(fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return uint(id), nil
}

func currentUser(ctx *gin.Context) (*models.User, error) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return nil, utils.ErrUnauthenticated
	}
	return user, nil
}

// bindError converts a binding failure into a 422 with a readable detail.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return utils.Validation(fmt.Sprintf("%s is required", fe.Field()))
		}
		return utils.Validation(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return utils.Validation(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	}
	return utils.Validation("Invalid request body")
}

// inputError maps payload validation and store errors onto API errors.
// Anything else passes through and ends up as a 500.
func inputError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return utils.Validation(verr.Error())
	}
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		return utils.NotFound(nf.Error())
	}
	if errors.Is(err, store.ErrConflict) {
		return utils.Validation("Username already registered")
	}
	return err
}

func fail(ctx *gin.Context, err error) {
	utils.AbortWithError(ctx, inputError(err))
}
