package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrServiceCall is the single failure kind for the completion service
// boundary. Auth, network, rate-limit and malformed-response failures all
// collapse into it, carrying the stringified cause.
type ErrServiceCall struct {
	Service string
	Err     error
}

func (e *ErrServiceCall) Error() string {
	return fmt.Sprintf("service call failed [%s]: %v", e.Service, e.Err)
}

func (e *ErrServiceCall) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
