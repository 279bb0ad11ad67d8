package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures returned by the session layer.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation_error"
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeDuplicateUser      ErrorCode = "duplicate_user"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeTokenInvalid       ErrorCode = "token_invalid"
	CodeNotAuthenticated   ErrorCode = "not_authenticated"
	CodeStorage            ErrorCode = "storage_error"
	CodeInternal           ErrorCode = "internal_error"
)

// Repository-level errors. The session layer translates them before they
// reach callers.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// AuthError is the failure value of every public session operation.
// Two AuthErrors match under errors.Is when their codes are equal, so callers
// compare against the sentinels below.
type AuthError struct {
	Code       ErrorCode
	Message    string
	RetryAfter int // seconds, only set for CodeRateLimited
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	var t *AuthError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation         = &AuthError{Code: CodeValidation, Message: "validation failed"}
	ErrInvalidCredentials = &AuthError{Code: CodeInvalidCredentials, Message: "invalid email or password"}
	ErrDuplicateUser      = &AuthError{Code: CodeDuplicateUser, Message: "user already exists"}
	ErrRateLimited        = &AuthError{Code: CodeRateLimited, Message: "too many attempts"}
	ErrTokenInvalid       = &AuthError{Code: CodeTokenInvalid, Message: "token verification failed"}
	ErrNotAuthenticated   = &AuthError{Code: CodeNotAuthenticated, Message: "not authenticated"}
	ErrStorage            = &AuthError{Code: CodeStorage, Message: "session storage unavailable"}
	ErrInternal           = &AuthError{Code: CodeInternal, Message: "internal error"}
)

// ValidationError builds a validation failure with a caller-facing message.
func ValidationError(msg string) *AuthError {
	return &AuthError{Code: CodeValidation, Message: msg}
}

// RateLimitedError builds a rate-limit failure carrying the retry delay.
func RateLimitedError(retryAfter int) *AuthError {
	return &AuthError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("too many attempts, retry in %d seconds", retryAfter),
		RetryAfter: retryAfter,
	}
}

// StorageError wraps a store failure. The message stays generic; the cause
// is kept for logging only.
func StorageError(err error) *AuthError {
	return &AuthError{Code: CodeStorage, Message: ErrStorage.Message, Err: err}
}

// InternalError wraps an unexpected failure behind a generic message.
func InternalError(err error) *AuthError {
	return &AuthError{Code: CodeInternal, Message: ErrInternal.Message, Err: err}
}

// RetryAfter extracts the retry delay from a rate-limit error.
func RetryAfter(err error) (int, bool) {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Code == CodeRateLimited {
		return ae.RetryAfter, true
	}
	return 0, false
}
