package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestUserCreate_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    UserCreate
		valid bool
	}{
		{"minimal", UserCreate{Username: "al", Password: "password1"}, true},
		{"mixed case allowed", UserCreate{Username: "Alice.B_2-x", Password: "password1"}, true},
		{"with mail", UserCreate{Username: "alice", Mail: strPtr("alice+x@mail.example.com"), Password: "password1"}, true},
		{"username too short", UserCreate{Username: "a", Password: "password1"}, false},
		{"username too long", UserCreate{Username: strings.Repeat("a", 33), Password: "password1"}, false},
		{"username charset", UserCreate{Username: "al ice", Password: "password1"}, false},
		{"mail without domain dot", UserCreate{Username: "alice", Mail: strPtr("alice@localhost"), Password: "password1"}, false},
		{"mail too long", UserCreate{Username: "alice", Mail: strPtr(strings.Repeat("a", 60) + "@x.io"), Password: "password1"}, false},
		{"password too short", UserCreate{Username: "alice", Password: "1234567"}, false},
		{"password too long", UserCreate{Username: "alice", Password: strings.Repeat("p", 73)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPostCreate_Validate(t *testing.T) {
	assert.NoError(t, PostCreate{Title: "hello", ImageURL: "https://img"}.Validate())
	assert.Error(t, PostCreate{Title: " ", ImageURL: "https://img"}.Validate())
	assert.Error(t, PostCreate{Title: strings.Repeat("t", 33), ImageURL: "https://img"}.Validate())
}
