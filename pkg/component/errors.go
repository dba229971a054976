package component

import (
	"errors"
	"fmt"
)

// Structural contract violations. These are returned to the caller and never
// absorbed.
var (
	// ErrNilComponent is returned when a nil component is passed to a
	// container mutation.
	ErrNilComponent = errors.New("component: nil component")

	// ErrCycle is returned when adding a component would make it its own
	// ancestor.
	ErrCycle = errors.New("component: component cannot contain itself")

	// ErrContainerFull is returned when a container's child-count policy
	// would be exceeded.
	ErrContainerFull = errors.New("component: container full")

	// ErrNotChild is returned when an operation requires a direct child and
	// the given component is not one.
	ErrNotChild = errors.New("component: not a child of this container")

	// ErrInvalidValue is wrapped by widgets that reject an inbound variable.
	ErrInvalidValue = errors.New("component: invalid variable value")
)

// VariableError reports one rejected inbound variable. The rest of the batch
// is still applied.
type VariableError struct {
	ComponentID string
	Name        string
	Err         error
}

// Error implements the error interface.
func (e *VariableError) Error() string {
	return fmt.Sprintf("component: %s.%s: %v", e.ComponentID, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *VariableError) Unwrap() error {
	return e.Err
}

// Invalid wraps a reason in ErrInvalidValue. Widgets use it for rejected
// inbound values.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
