// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateEmail checks that the value looks like an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateNickname checks if a nickname meets requirements
func ValidateNickname(nickname string) error {
	if len(nickname) < 2 {
		return fmt.Errorf("nickname must be at least 2 characters long")
	}
	if len(nickname) > 30 {
		return fmt.Errorf("nickname must not exceed 30 characters")
	}

	// Only allow alphanumeric, underscores and hyphens
	if !nicknamePattern.MatchString(nickname) {
		return fmt.Errorf("nickname can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if strings.HasPrefix(nickname, "_") || strings.HasPrefix(nickname, "-") ||
		strings.HasSuffix(nickname, "_") || strings.HasSuffix(nickname, "-") {
		return fmt.Errorf("nickname cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	// Check maximum length (prevent unreasonable inputs)
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}
