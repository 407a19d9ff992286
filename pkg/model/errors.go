package model

// Errors
var (
	ErrEmptyField   = &ValidationError{"field cannot be empty"}
	ErrInvalidValue = &ValidationError{"value must be a non-negative number"}
)

// ValidationError represents a record that violates a field constraint
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
