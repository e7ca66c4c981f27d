package models

import "fmt"

// ValidationError flags malformed caller input: out-of-range pagination,
// a comparison set of the wrong size. Never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError marks a dangling event/group/user reference. Fatal for the
// call; retrying without fixing the reference cannot succeed.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IncompleteResultsError means an event cannot be scored yet because not
// every question has an official result. Carries progress counts so callers
// can show how far along result entry is.
type IncompleteResultsError struct {
	EventID  int64
	Resolved int
	Total    int
}

func (e *IncompleteResultsError) Error() string {
	return fmt.Sprintf("event %d not fully resolved: %d/%d official results", e.EventID, e.Resolved, e.Total)
}
