// Package service contains the business rules of the application.
//
// THE LAYERS:
//
//	Handler (HTTP)     → decodes requests, writes JSON, maps errors to statuses
//	Service (rules)    → validates input, enforces ownership and roles
//	Repository (data)  → reads and writes SQLite
//
// Services take repository interfaces, not *sqlite.DB, so the tests in this
// package run against in-memory fakes. They return apperror values and never
// know about HTTP.
package service

import (
	"fmt"
	"strings"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/auth"
)

const (
	// MinPasswordLength applies to registration and password reset alike.
	MinPasswordLength = 6

	// MaxListLimit is the most rows an admin listing returns.
	MaxListLimit = 100
)

// Result labels used for metrics.
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// checkNewPassword applies the rules shared by registration and reset. The
// mismatch check runs before the length check, so a short mismatched pair
// reports the mismatch.
func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return apperror.ValidationFailed("confirmPassword", "Passwords do not match!")
	}
	return checkPasswordLength(password)
}

// checkPasswordLength bounds a password on both sides. The upper bound is
// bcrypt's input limit in bytes, not characters.
func checkPasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password", "Password must be at least 6 characters long!")
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at most %d bytes long!", auth.MaxPasswordBytes))
	}
	return nil
}

// required trims s and fails with msg when nothing is left.
func required(field, s, msg string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, msg)
	}
	return s, nil
}
