package services

import "errors"

// ErrMissingID is returned when update or delete is attempted on an
// entry that has no id. It signals a caller error, not a failed
// business rule, and is reported before any persistence call.
var ErrMissingID = errors.New("entry id is required")

// ValidationError is a business rule violation. Its message is safe to
// surface to the API caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthenticationError is a failed credential check. Its message is safe
// to surface to the API caller.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}
