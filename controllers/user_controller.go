package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// UserController handles registration, profiles and per-user post listings.
type UserController struct {
	store  store.Store
	hasher auth.Hasher
}

func NewUserController(s store.Store, hasher auth.Hasher) *UserController {
	return &UserController{store: s, hasher: hasher}
}

// Create registers a new account.
func (u *UserController) Create(ctx *gin.Context) {
	var req models.UserCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, bindError(err))
		return
	}
	if err := req.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	digest, err := u.hasher.Hash(req.Password)
	if err != nil {
		fail(ctx, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Mail:     req.Mail,
		Password: digest,
		Bio:      utils.SanitizePtr(req.Bio),
	}
	if err := u.store.CreateUser(ctx.Request.Context(), &user); err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// Me returns the authenticated user.
func (u *UserController) Me(ctx *gin.Context) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// UpdateMe applies the supplied fields to the authenticated user. A new
// password is hashed before it reaches the store.
func (u *UserController) UpdateMe(ctx *gin.Context) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	var patch models.UserPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		fail(ctx, bindError(err))
		return
	}
	if err := patch.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	if patch.Password.Present() {
		digest, err := u.hasher.Hash(patch.Password.Value)
		if err != nil {
			fail(ctx, err)
			return
		}
		patch.Password.Value = digest
	}
	if patch.Bio.Present() {
		patch.Bio.Value = utils.Sanitize(patch.Bio.Value)
	}

	updated, err := u.store.UpdateUser(ctx.Request.Context(), user.ID, patch.Changes())
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, updated)
}

// MyPosts lists the authenticated user's posts.
func (u *UserController) MyPosts(ctx *gin.Context) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	posts, err := u.store.ListPosts(ctx.Request.Context(), user.ID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}

// Get returns a user by id.
func (u *UserController) Get(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	user, err := u.store.GetUser(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// Posts lists the posts of an existing user.
func (u *UserController) Posts(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if _, err := u.store.GetUser(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	posts, err := u.store.ListPosts(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}
