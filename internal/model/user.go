// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered content creator.
//
// ResetTokenHash and ResetTokenExpiry are either both set (a reset is
// pending) or both nil. The plaintext token is never stored; only its
// SHA-256 digest is, so a leaked database row cannot be replayed.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// HasPendingReset reports whether a reset token has been issued and not
// yet consumed. Expiry is not considered.
func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil
}

// Admin is an operator account. Admins live in their own table and never
// own ideas or schedules.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
