package domain

import "errors"

var (
	// ErrSessionNotFound is returned on a registry miss, including sessions
	// already removed.
	ErrSessionNotFound = errors.New("interview session not found")
	// ErrInvalidTransition is returned for an event that is not legal in the
	// session's current stage.
	ErrInvalidTransition = errors.New("event not allowed in current stage")
	// ErrOracleFailure wraps a failed or timed-out analysis call.
	ErrOracleFailure = errors.New("answer analysis failed")
	// ErrEmptyMessage rejects blank answer submissions at the boundary.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrMalformedEvent indicates an envelope missing required fields.
	ErrMalformedEvent = errors.New("malformed event payload")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrBankExhausted indicates the bank holds fewer questions than a
	// session is configured to ask. This is a configuration error.
	ErrBankExhausted = errors.New("question bank exhausted")
)
