package entity

import (
	"errors"
	"fmt"
)

// ErrRejected marks input refused before any network access.
var ErrRejected = errors.New("input rejected")

// ValidationError names the rejected field. Message is phrased for end users
// and is safe to return in API responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrRejected.
func (e *ValidationError) Unwrap() error {
	return ErrRejected
}
