package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

// CommentController manages comments nested under a post.
type CommentController struct {
	store store.Store
}

func NewCommentController(s store.Store) *CommentController {
	return &CommentController{store: s}
}

// Create adds a comment by the caller to an existing post.
func (c *CommentController) Create(ctx *gin.Context) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	postID, err := pathID(ctx, "post_id")
	if err != nil {
		fail(ctx, err)
		return
	}

	var req models.CommentCreate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, bindError(err))
		return
	}
	// markup-only input sanitizes to nothing and must fail validation
	req.Content = utils.Sanitize(req.Content)
	if err := req.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	comment := models.Comment{
		Content:  req.Content,
		AuthorID: user.ID,
		PostID:   postID,
	}
	if err := c.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, comment)
}

// List returns the comments of a post, oldest first.
func (c *CommentController) List(ctx *gin.Context) {
	postID, err := pathID(ctx, "post_id")
	if err != nil {
		fail(ctx, err)
		return
	}
	comments, err := c.store.ListComments(ctx.Request.Context(), postID)
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, comments)
}

// Get returns a comment only when it belongs to the post in the path.
func (c *CommentController) Get(ctx *gin.Context) {
	postID, commentID, ok := commentPath(ctx)
	if !ok {
		return
	}
	comment, err := c.store.GetComment(ctx.Request.Context(), commentID)
	if err != nil {
		fail(ctx, err)
		return
	}
	if comment.PostID != postID {
		fail(ctx, utils.NotFound("Comment not found"))
		return
	}
	utils.Success(ctx, comment)
}

func (c *CommentController) Update(ctx *gin.Context) {
	comment, ok := c.ownedComment(ctx)
	if !ok {
		return
	}

	var patch models.CommentPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		fail(ctx, bindError(err))
		return
	}
	if patch.Content.Present() {
		patch.Content.Value = utils.Sanitize(patch.Content.Value)
	}
	if err := patch.Validate(); err != nil {
		fail(ctx, err)
		return
	}

	updated, err := c.store.UpdateComment(ctx.Request.Context(), comment.ID, patch.Changes())
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.Success(ctx, updated)
}

func (c *CommentController) Delete(ctx *gin.Context) {
	comment, ok := c.ownedComment(ctx)
	if !ok {
		return
	}
	if err := c.store.DeleteComment(ctx.Request.Context(), comment.ID); err != nil {
		fail(ctx, err)
		return
	}
	utils.Detail(ctx, fmt.Sprintf("Deleted comment %d from post %d", comment.ID, comment.PostID))
}

// ownedComment resolves the post and comment in the path, then applies the
// belongs-to-post and ownership checks in that order.
func (c *CommentController) ownedComment(ctx *gin.Context) (*models.Comment, bool) {
	user, err := currentUser(ctx)
	if err != nil {
		fail(ctx, err)
		return nil, false
	}
	postID, commentID, ok := commentPath(ctx)
	if !ok {
		return nil, false
	}
	if _, err := c.store.GetPost(ctx.Request.Context(), postID); err != nil {
		fail(ctx, err)
		return nil, false
	}
	comment, err := c.store.GetComment(ctx.Request.Context(), commentID)
	if err != nil {
		fail(ctx, err)
		return nil, false
	}
	if err := auth.AuthorizeComment(user, postID, comment); err != nil {
		fail(ctx, err)
		return nil, false
	}
	return comment, true
}

func commentPath(ctx *gin.Context) (postID, commentID uint, ok bool) {
	postID, err := pathID(ctx, "post_id")
	if err != nil {
		fail(ctx, err)
		return 0, 0, false
	}
	commentID, err = pathID(ctx, "comment_id")
	if err != nil {
		fail(ctx, err)
		return 0, 0, false
	}
	return postID, commentID, true
}
