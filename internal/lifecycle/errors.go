package lifecycle

import "errors"

var (
	// ErrIllegalTransition indicates the requested target is not reachable
	// from the current status under any role.
	ErrIllegalTransition = errors.New("lifecycle: transition not allowed by global table")
	// ErrForbiddenForRole indicates the target is globally legal but the
	// acting role/ownership combination does not permit it.
	ErrForbiddenForRole = errors.New("lifecycle: transition not allowed for role")
	// ErrUnknownStatus indicates a status outside the vocabulary.
	ErrUnknownStatus = errors.New("lifecycle: unknown status")
)
