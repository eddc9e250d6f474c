package confessions

import "errors"

// Business-rule failures surfaced by the service. Handlers translate these
// to HTTP statuses; nothing storage-specific crosses this boundary.
var (
	// ErrInvalidInput wraps all validation failures (400).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidReactionKind rejects unknown reaction types (400).
	ErrInvalidReactionKind = errors.New("invalid reaction type")

	// ErrWrongSecretCode means the requester owns the confession but
	// supplied the wrong secret code (401).
	ErrWrongSecretCode = errors.New("incorrect secret code")

	// ErrForbidden means the requester is not the confession's owner (403).
	ErrForbidden = errors.New("not the owner of this confession")

	// ErrNotFound covers absent and soft-deleted confessions alike (404).
	ErrNotFound = errors.New("confession not found")

	// ErrOwnerNotFound means the authenticated identity has no user record (404).
	ErrOwnerNotFound = errors.New("user not found")
)
