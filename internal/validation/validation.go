// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits shared with the persistence layer.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
	PasswordMinLength = 6
	PasswordMaxLength = 100
	EmailMaxLength    = 254
	BioMaxLength      = 250
	PostMaxLength     = 280
	CommentMaxLength  = 280
	MinSignupAge      = 13
	MaxSignupAge      = 120
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		return fmt.Errorf("username must be at least %d characters long", UsernameMinLength)
	}
	if n > UsernameMaxLength {
		return fmt.Errorf("username must not exceed %d characters", UsernameMaxLength)
	}

	// Only allow alphanumeric, underscores and hyphens
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > EmailMaxLength {
		return fmt.Errorf("email must not exceed %d characters", EmailMaxLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLength)
	}
	return nil
}

// ValidateBio rejects bios longer than BioMaxLength characters.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > BioMaxLength {
		return fmt.Errorf("bio must not exceed %d characters", BioMaxLength)
	}
	return nil
}

// ValidateBirthdate requires the date to be strictly before now.
func ValidateBirthdate(birthdate, now time.Time) error {
	if !birthdate.Before(now) {
		return fmt.Errorf("birthdate must be in the past")
	}
	return nil
}

// ValidateSignupAge enforces the registration age window: older than
// MinSignupAge and younger than MaxSignupAge full years.
func ValidateSignupAge(birthdate, now time.Time) error {
	if err := ValidateBirthdate(birthdate, now); err != nil {
		return err
	}
	age := AgeAt(birthdate, now)
	if age <= MinSignupAge {
		return fmt.Errorf("you must be older than %d to register", MinSignupAge)
	}
	if age >= MaxSignupAge {
		return fmt.Errorf("age must be less than %d years", MaxSignupAge)
	}
	return nil
}

// AgeAt returns the number of full years between birthdate and now.
func AgeAt(birthdate, now time.Time) int {
	birthdate = birthdate.UTC()
	now = now.UTC()
	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	return age
}

// ParseBirthdate accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseBirthdate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("birthdate must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ValidateText trims s and checks it is non-empty and at most maxLen characters.
// It returns the trimmed text.
func ValidateText(field, s string, maxLen int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(s) > maxLen {
		return "", fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}
	return s, nil
}
