package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		username string
		wantErr  bool
	}{
		{"Valid", "correct horse", "alice", false},
		{"Exactly Min Length", "abcdefg1", "alice", false},
		{"Exactly Max Length", strings.Repeat("b", 128), "alice", false},
		{"Too Short", "short1", "alice", true},
		{"Too Long", strings.Repeat("b", 129), "alice", true},
		{"Entirely Numeric", "1234567890", "alice", true},
		{"Same As Username", "AliceAlice", "alicealice", true},
		{"No Username", "alicealice", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Single Char", "a", false},
		{"Django Punctuation", "a.b@c+d-e", false},
		{"Empty", "", true},
		{"Too Long", strings.Repeat("a", 151), true},
		{"Space", "two words", true},
		{"Slash", "a/b", true},
		{"Reserved", "search", true},
		{"Reserved Any Case", "New", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail("alice@"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@example.com"))
}
