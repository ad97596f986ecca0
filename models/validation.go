package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`(?i)^[a-z0-9._-]+$`)
	mailPattern     = regexp.MustCompile(`^[\w.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

// Field limits shared by payload validation and column sizes.
const (
	UsernameMinLen = 2
	UsernameMaxLen = 32
	MailMaxLen     = 64
	PasswordMinLen = 8
	PasswordMaxLen = 72
	TitleMaxLen    = 32
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func nullField(field string) error {
	return &ValidationError{Field: field, Message: "may not be null"}
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return &ValidationError{Field: "username", Message: fmt.Sprintf("must be %d to %d characters", UsernameMinLen, UsernameMaxLen)}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Message: "may only contain letters, digits, dots, underscores and hyphens"}
	}
	return nil
}

func validateMail(mail string) error {
	if utf8.RuneCountInString(mail) > MailMaxLen {
		return &ValidationError{Field: "mail", Message: fmt.Sprintf("must be at most %d characters", MailMaxLen)}
	}
	if !mailPattern.MatchString(mail) {
		return &ValidationError{Field: "mail", Message: "is not a valid address"}
	}
	return nil
}

// bcrypt ignores input beyond 72 bytes, so the upper bound is in bytes.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLen || len(password) > PasswordMaxLen {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be %d to %d characters", PasswordMinLen, PasswordMaxLen)}
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 || utf8.RuneCountInString(title) > TitleMaxLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be 1 to %d characters", TitleMaxLen)}
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "may not be empty"}
	}
	return nil
}
