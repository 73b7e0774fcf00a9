package market

import "errors"

// Sentinel failures. Nothing in this package panics or terminates; callers
// branch with errors.Is and decide how to surface them.
var (
	ErrMissingFields      = errors.New("missing fields")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminRegistration  = errors.New("admin cannot be registered")
	ErrPlantNotFound      = errors.New("plant not found")
	ErrInsufficientStock  = errors.New("not enough stock")
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
)
