package shared

import "errors"

// Sentinel errors shared across the dashboard's services.
var (
	// ErrNotFound marks a lookup that matched nothing visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is the single error every login failure mode
	// collapses into.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing means a mutating request carried no token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch means the supplied token does not belong to the
	// session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
