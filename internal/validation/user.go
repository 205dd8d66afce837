package validation

import (
	"errors"
	"regexp"
	"strings"
)

const maxUsernameLength = 150

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// reservedUsernames collide with top-level routes.
var reservedUsernames = map[string]struct{}{
	"new":     {},
	"search":  {},
	"follow":  {},
	"group":   {},
	"auth":    {},
	"about":   {},
	"health":  {},
	"metrics": {},
	"static":  {},
	"media":   {},
}

// ValidateUsername checks length, allowed characters and reserved route names.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("This field is required.")
	}
	if len(username) > maxUsernameLength {
		return errors.New("Ensure this value has at most 150 characters.")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if IsReservedUsername(username) {
		return errors.New("This username is reserved.")
	}
	return nil
}

// IsReservedUsername reports whether username is a route segment.
func IsReservedUsername(username string) bool {
	_, ok := reservedUsernames[strings.ToLower(username)]
	return ok
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("Ensure this value has at most 254 characters.")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("Enter a valid email address.")
	}
	return nil
}
