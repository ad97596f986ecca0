package auth

import (
	"fmt"

	"github.com/cppla/gram/models"
	"github.com/cppla/gram/utils"
)

// Owned is any resource with a single owning user.
type Owned interface {
	OwnerID() uint
}

// MayMutate reports whether actor owns resource. A typed nil resource must
// be rejected by the caller; AuthorizePost and AuthorizeComment do so.
func MayMutate(actor *models.User, resource Owned) bool {
	return actor != nil && resource != nil && actor.ID == resource.OwnerID()
}

// AuthorizePost allows only the author to modify post.
func AuthorizePost(actor *models.User, post *models.Post) error {
	if post == nil || !MayMutate(actor, post) {
		return utils.Forbidden("Cannot modify other user's post")
	}
	return nil
}

// AuthorizeComment requires the comment to belong to postID before checking
// ownership, so a mismatched path is rejected even for the author.
func AuthorizeComment(actor *models.User, postID uint, comment *models.Comment) error {
	if comment == nil {
		return utils.Forbidden("Cannot modify other user's comments")
	}
	if comment.PostID != postID {
		return utils.Forbidden(fmt.Sprintf("The comment %d does not belong to post %d", comment.ID, postID))
	}
	if !MayMutate(actor, comment) {
		return utils.Forbidden("Cannot modify other user's comments")
	}
	return nil
}
