// Package errs defines the distinct, stable error kinds the engine reports
// across planning, execution, serialization and state handling.
package errs

import "fmt"

// ValidationError is raised when the planner finds a missing dependency and
// when the executor's read-only prepass cannot find a resource. Serializer
// decode failures (a missing or unresolvable type tag, a missing field) are
// not reported as ValidationError; they surface as *serializer.DecodeError.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ResourceNotFoundError is raised when a provider's Read cannot find the
// external object it was asked to observe.
type ResourceNotFoundError struct {
	ResourceID string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.ResourceID)
}

func ResourceNotFound(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{ResourceID: id}
}

// ProviderNotFoundError is raised when no provider in a stack claims a
// resource. It is always fatal to the run, never recorded per-operation.
type ProviderNotFoundError struct {
	ResourceID string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("no provider can handle resource %q", e.ResourceID)
}

func ProviderNotFound(id string) *ProviderNotFoundError {
	return &ProviderNotFoundError{ResourceID: id}
}

// StateError wraps a failure to load, save, or lock the state store.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string { return fmt.Sprintf("state %s: %v", e.Op, e.Err) }
func (e *StateError) Unwrap() error { return e.Err }

func State(op string, err error) *StateError {
	return &StateError{Op: op, Err: err}
}

// ProviderError wraps any other failure inside a provider's create, update,
// or delete. It is recorded per-operation; the executor continues past it.
type ProviderError struct {
	Address string
	Action  string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, e.Address, e.Err)
}
func (e *ProviderError) Unwrap() error { return e.Err }

func Provider(address, action string, err error) *ProviderError {
	return &ProviderError{Address: address, Action: action, Err: err}
}
