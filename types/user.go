package types

import "time"

// User represents an account in the system.
// It contains identity, privilege flags, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Unique across accounts.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsActive is false once the account has been deactivated.
	// Deactivation is a soft delete; the record is retained.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsEmailVerified flips to true exactly once, when the user
	// presents a valid email verification token.
	IsEmailVerified bool `json:"is_email_verified" db:"is_email_verified"`

	// IsAdmin grants access to administrative endpoints.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
