package models

import (
	"time"
)

// User is an account able to author posts and comments. Password holds the
// bcrypt digest only and is never serialized.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:32;not null;uniqueIndex" json:"username"`
	Mail       *string   `gorm:"size:64" json:"mail"`
	Password   string    `gorm:"size:72;not null" json:"-"`
	Bio        *string   `gorm:"type:text" json:"bio"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	ModifiedAt time.Time `gorm:"autoUpdateTime" json:"modified_at"`
	Posts      []Post    `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Comments   []Comment `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName pins the table name independent of GORM's pluralizer.
func (User) TableName() string { return "users" }

// UserCreate is the registration payload.
type UserCreate struct {
	Username string  `json:"username" binding:"required"`
	Mail     *string `json:"mail"`
	Password string  `json:"password" binding:"required"`
	Bio      *string `json:"bio"`
}

// Validate checks field formats before the password is hashed.
func (u UserCreate) Validate() error {
	if err := validateUsername(u.Username); err != nil {
		return err
	}
	if u.Mail != nil {
		if err := validateMail(*u.Mail); err != nil {
			return err
		}
	}
	return validatePassword(u.Password)
}

// UserPatch updates only the fields present in the request body.
type UserPatch struct {
	Username Optional[string] `json:"username"`
	Mail     Optional[string] `json:"mail"`
	Password Optional[string] `json:"password"`
	Bio      Optional[string] `json:"bio"`
}

// Validate rejects nulls for required columns and malformed values.
func (p UserPatch) Validate() error {
	if p.Username.Set {
		if p.Username.Null {
			return nullField("username")
		}
		if err := validateUsername(p.Username.Value); err != nil {
			return err
		}
	}
	if p.Mail.Present() {
		if err := validateMail(p.Mail.Value); err != nil {
			return err
		}
	}
	if p.Password.Set {
		if p.Password.Null {
			return nullField("password")
		}
		if err := validatePassword(p.Password.Value); err != nil {
			return err
		}
	}
	return nil
}

// Changes returns the column assignments for the supplied fields.
// Password must already hold a digest when set.
func (p UserPatch) Changes() map[string]interface{} {
	changes := map[string]interface{}{}
	p.Username.assign(changes, "username")
	p.Mail.assign(changes, "mail")
	p.Password.assign(changes, "password")
	p.Bio.assign(changes, "bio")
	return changes
}
