package service

import (
	"errors"
	"fmt"
)

// ErrStateConflict marks operations that are invalid for the entity's current
// state (accepting a non-pending request, unfriending a non-friend). The
// boundary maps it to 400; it is never retried.
var ErrStateConflict = errors.New("operation not valid for current state")

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthorizationError reports that the actor lacks rights for the target
// action. It is surfaced as 403 and never downgraded to a silent no-op.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}
