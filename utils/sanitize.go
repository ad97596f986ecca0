package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips markup outside the user generated content allowlist.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizePtr sanitizes an optional text field, keeping nil as nil.
func SanitizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Sanitize(*input)
	return &out
}
