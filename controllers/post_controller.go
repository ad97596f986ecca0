package controllers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// PostController manages CRUD operations for posts.
type PostController struct {
	store store.Store
}

// NewPostController creates a new PostController instance.
func NewPostController(s store.Store) *PostController {
	return &PostController{store: s}
}

// Create stores a post authored by the caller.
func (p *PostController) Create(ctx *gin.Context) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}

	var req models.PostCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, bindError(err))
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = blankToNil(utils.SanitizePtr(req.Content))
	if err := req.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	post := models.Post{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		AuthorID: user.ID,
	}
	if err := p.store.CreatePost(ctx.Request.Context(), &post); err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

func (p *PostController) Get(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	post, err := p.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// Update patches a post owned by the caller.
func (p *PostController) Update(ctx *gin.Context) {
	post, ok := p.ownedPost(ctx)
	if !ok {
		return
	}

	var patch models.PostPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		fail(ctx, bindError(err))
		return
	}
	if patch.Title.Present() {
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Content.Present() {
		patch.Content.Value = utils.Sanitize(patch.Content.Value)
		// a body that sanitizes to nothing clears the optional content
		if strings.TrimSpace(patch.Content.Value) == "" {
			patch.Content = models.Optional[string]{Set: true, Null: true}
		}
	}
	if err := patch.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	updated, err := p.store.UpdatePost(ctx.Request.Context(), post.ID, patch.Changes())
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, updated)
}

// Delete removes a post owned by the caller together with its comments.
func (p *PostController) Delete(ctx *gin.Context) {
	post, ok := p.ownedPost(ctx)
	if !ok {
		return
	}
	if err := p.store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		fail(ctx, err)
		return
	}
	utils.Detail(ctx, fmt.Sprintf("Deleted post %d", post.ID))
}

// ownedPost loads the post named in the path and checks the caller owns it.
// It writes the error response itself and reports false on failure.
func (p *PostController) ownedPost(ctx *gin.Context) (*models.Post, bool) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return nil, false
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return nil, false
	}
	post, err := p.store.GetPost(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return nil, false
	}
	if err := auth.AuthorizePost(user, post); err != nil {
		fail(ctx, err)
		return nil, false
	}
	return post, true
}

// blankToNil drops optional text that is empty after sanitizing.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
