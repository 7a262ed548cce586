package booking

import "fmt"

// ValidationError marks an intake payload the boundary could not accept.
// Handlers map it to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validationError: %s", e.Message)
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
