// Package store is the relational persistence layer for users, posts and
// comments.
package store

import (
	"context"
	"errors"

	"github.com/cppla/gram/models"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness violation, currently only usernames.
	ErrConflict = errors.New("conflict")
)

// NotFoundError names the entity that is missing.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity string) error { return &NotFoundError{Entity: entity} }

// Store is the data access surface used by the HTTP layer. Changes maps
// passed to the Update methods hold column names to new values; a nil value
// clears the column.
type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id uint, changes map[string]interface{}) (*models.User, error)

	GetPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, authorID uint) ([]models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, id uint, changes map[string]interface{}) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error

	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	UpdateComment(ctx context.Context, id uint, changes map[string]interface{}) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}
