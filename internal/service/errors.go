package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrPremiumRequired    = errors.New("a premium subscription is required")
	ErrAIUnavailable      = errors.New("the AI assistant is unavailable, try again later")
	ErrNotConfigured      = errors.New("feature is not configured")
)

// ValidationError reports bad client input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
