package models

import "time"

// Comment represents a reply to a post.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	PostID     uint      `gorm:"index;not null" json:"post_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`
}

func (Comment) TableName() string { return "comments" }

// OwnerID reports the author, used by the ownership guard.
func (c *Comment) OwnerID() uint { return c.AuthorID }

// CommentCreate is the payload for a new comment.
type CommentCreate struct {
	Content string `json:"content" binding:"required"`
}

func (c CommentCreate) Validate() error {
	return validateContent(c.Content)
}

// CommentPatch updates only the fields present in the request body.
type CommentPatch struct {
	Content Optional[string] `json:"content"`
}

func (p CommentPatch) Validate() error {
	if p.Content.Set {
		if p.Content.Null {
			return nullField("content")
		}
		return validateContent(p.Content.Value)
	}
	return nil
}

func (p CommentPatch) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	p.Content.assign(changes, "content")
	return changes
}
