package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/gram/models"
)

// GormStore implements Store on top of a GORM connection opened with
// TranslateError enabled.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an already migrated connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for wiring and tests.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

// GetUserByUsername matches exactly; login is case sensitive.
func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, user.Username, 0); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return translate(err, "User")
		}
		return nil
	})
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, changes map[string]interface{}) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &user, id, "User"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if name, ok := changes["username"].(string); ok {
			if err := usernameFree(tx, name, id); err != nil {
				return err
			}
		}
		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			return translate(err, "User")
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, "Post")
	}
	return &post, nil
}

func (s *GormStore) ListPosts(ctx context.Context, authorID uint) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at ASC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return translate(err, "User")
	}
	return nil
}

func (s *GormStore) UpdatePost(ctx context.Context, id uint, changes map[string]interface{}) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &post, id, "Post"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&post).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the post and its comments in one transaction. The
// foreign key cascades as well; the explicit delete covers tables migrated
// before the constraint existed.
func (s *GormStore) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := lockRow(tx, &post, id, "Post"); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func (s *GormStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err, "Comment")
	}
	return &comment, nil
}

// ListComments returns the comments of an existing post, oldest first.
func (s *GormStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return translate(err, "Post")
		}
		return tx.Where("post_id = ?", postID).Order("created_at ASC, id ASC").Find(&comments).Error
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return translate(err, "Post")
		}
		if err := tx.Create(comment).Error; err != nil {
			return translate(err, "Post")
		}
		return nil
	})
}

func (s *GormStore) UpdateComment(ctx context.Context, id uint, changes map[string]interface{}) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, &comment, id, "Comment"); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&comment).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&comment, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := lockRow(tx, &comment, id, "Comment"); err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
}

// lockRow loads dest by primary key with SELECT ... FOR UPDATE. SQLite
// drops the locking clause and relies on its single writer.
func lockRow(tx *gorm.DB, dest interface{}, id uint, entity string) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, id).Error; err != nil {
		return translate(err, entity)
	}
	return nil
}

// usernameFree enforces case-insensitive uniqueness; the unique index only
// covers exact matches.
func usernameFree(tx *gorm.DB, username string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("username %q: %w", username, ErrConflict)
	}
	return nil
}

// translate maps GORM sentinel errors onto the store's. referenced names the
// entity reported when a foreign key target is missing.
func translate(err error, referenced string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return notFound(referenced)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
