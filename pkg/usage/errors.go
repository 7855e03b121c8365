package usage

import "errors"

var (
	// ErrInvalidFeature marks a programmer error: an unknown feature key.
	// It must surface as a 500, never silently default.
	ErrInvalidFeature = errors.New("unknown metered feature")

	// ErrUserNotFound means identity resolution failed for the request.
	ErrUserNotFound = errors.New("user not found")

	// ErrIdentityNotInContext means no authenticated identity was attached
	// to the request context.
	ErrIdentityNotInContext = errors.New("identity not found in context")

	// ErrPeriodNotFound means the user has no ledger row for the window.
	ErrPeriodNotFound = errors.New("usage period not found")

	// ErrStorageUnavailable wraps ledger read/write failures. Gate checks
	// fail closed on it.
	ErrStorageUnavailable = errors.New("usage storage unavailable")
)
