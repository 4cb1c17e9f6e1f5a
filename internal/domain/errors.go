package domain

import "errors"

var (
	// Malformed or inconsistent tour/venue/event data. Rejected before any
	// scheduling work; recoverable by the caller correcting the input.
	ErrInvalidInput = errors.New("invalid input")

	// The external travel-time provider failed or timed out after its
	// one permitted retry.
	ErrTravelLookup = errors.New("travel lookup failed")

	// The per-tour generation lock could not be acquired within the
	// bounded wait. Retryable.
	ErrLockTimeout = errors.New("lock timeout")
)
