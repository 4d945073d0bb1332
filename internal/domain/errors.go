package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails construction-time validation
// (e.g. latitude out of range, end date before start date, non-positive price).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidID is returned when an identifier cannot be parsed as a UUID.
var ErrInvalidID = errors.New("invalid identifier format")

// ErrRuleViolation is matched by every error produced from a failed Result.
// It marks a business conflict (car unavailable, wrong status for a transition)
// rather than bad input. Handlers should map this to HTTP 409 Conflict.
var ErrRuleViolation = errors.New("business rule violation")

// ErrConflict is returned when a write collides with existing data, such as a
// second car registered with the same license plate.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")

// ErrConcurrentUpdate is returned by CarRepo.Save when another writer saved the
// same car first. The caller may reload the aggregate and retry.
var ErrConcurrentUpdate = errors.New("concurrent update")

// RuleViolation carries the human-readable message of a failed Result.
// errors.Is(err, ErrRuleViolation) reports true for any *RuleViolation.
type RuleViolation struct {
	Message string
}

func (e *RuleViolation) Error() string { return e.Message }

func (e *RuleViolation) Unwrap() error { return ErrRuleViolation }
