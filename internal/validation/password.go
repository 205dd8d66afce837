// Package validation checks form input and reports per-field errors.
package validation

import (
	"errors"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// ValidatePassword checks length, that the password is not all digits and that it differs from the username.
func ValidatePassword(password, username string) error {
	if len(password) < minPasswordLength {
		return errors.New("This password is too short. It must contain at least 8 characters.")
	}
	if len(password) > maxPasswordLength {
		return errors.New("This password is too long. It must not exceed 128 characters.")
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return errors.New("This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		return errors.New("The password is too similar to the username.")
	}
	return nil
}
