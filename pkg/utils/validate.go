package utils

import (
	"net/mail"
	"strings"
)

const MinPasswordLength = 8

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeEmail validates a bare address and lower-cases it for storage.
// Display-name forms like "Ann <ann@example.com>" are rejected.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return "", &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return strings.ToLower(addr.Address), nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	return nil
}
