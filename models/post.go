package models

import "time"

// Post is an image post owned by its author.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:32;not null" json:"title"`
	Content    *string   `gorm:"type:text" json:"content"`
	ImageURL   string    `gorm:"type:text;not null" json:"image_url"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`
	Comments   []Comment `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Post) TableName() string { return "posts" }

// OwnerID reports the author, used by the ownership guard.
func (p *Post) OwnerID() uint { return p.AuthorID }

// PostCreate is the payload for a new post. The author comes from the token.
type PostCreate struct {
	Title    string  `json:"title" binding:"required"`
	Content  *string `json:"content"`
	ImageURL string  `json:"image_url" binding:"required"`
}

func (p PostCreate) Validate() error {
	return validateTitle(p.Title)
}

// PostPatch updates only the fields present in the request body.
type PostPatch struct {
	Title    Optional[string] `json:"title"`
	Content  Optional[string] `json:"content"`
	ImageURL Optional[string] `json:"image_url"`
}

func (p PostPatch) Validate() error {
	if p.Title.Set {
		if p.Title.Null {
			return nullField("title")
		}
		if err := validateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.ImageURL.Set && (p.ImageURL.Null || p.ImageURL.Value == "") {
		return &ValidationError{Field: "image_url", Message: "may not be empty"}
	}
	return nil
}

func (p PostPatch) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	p.Title.assign(changes, "title")
	p.Content.assign(changes, "content")
	p.ImageURL.assign(changes, "image_url")
	return changes
}
