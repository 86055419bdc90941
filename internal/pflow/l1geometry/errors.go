package l1geometry

import "errors"

// Status errors shared by every layer. Callers test for them with errors.Is;
// producers wrap them with context using fmt.Errorf("...: %w", err).
var (
	// ErrNotFound means a lookup failed, typically because a position lies
	// outside the declared detector volume.
	ErrNotFound = errors.New("not found")

	// ErrNotInitialized means the geometry is incompletely configured.
	ErrNotInitialized = errors.New("not initialized")

	// ErrInvalidParameter means an argument or geometry attribute is unusable,
	// for example an asymmetric detector or a zero-valued tolerance.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrFailure means an internal consistency check failed, for example
	// duplicate layer boundaries or layers declared beyond the outer edge.
	ErrFailure = errors.New("failure")
)
