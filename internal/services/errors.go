package services

import "errors"

// ErrInvalidCredentials is returned when a username/password pair does
// not authenticate: unknown user, wrong password, or a wrong current
// password on a password change.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailNotVerified is returned on login for accounts whose email has
// not been verified yet.
var ErrEmailNotVerified = errors.New("email not verified")

// ErrUserInactive is returned when a deactivated account attempts to
// authenticate.
var ErrUserInactive = errors.New("user inactive")
