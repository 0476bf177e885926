package types

import "fmt"

// Error taxonomy shared by the handlers. Handlers map each kind to a status
// family at the request boundary; everything unexpected becomes InternalError.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type AuthReason string

const (
	AuthReasonInvalid          AuthReason = "invalid"
	AuthReasonExpired          AuthReason = "expired"
	AuthReasonInsufficientRole AuthReason = "insufficient-role"
)

type AuthError struct {
	Message string
	Reason  AuthReason
}

func (e *AuthError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

type CapacityError struct {
	Message   string
	Available uint
}

func (e *CapacityError) Error() string { return e.Message }

// NotificationError reports a failed email send alongside an otherwise
// successful primary effect. It never rolls the primary effect back.
type NotificationError struct {
	Message string
	Cause   error
}

func (e *NotificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *NotificationError) Unwrap() error { return e.Cause }

type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "internal error"
}

func (e *InternalError) Unwrap() error { return e.Cause }
