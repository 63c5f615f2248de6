package domain

import (
	"errors"
	"fmt"
)

var (
	ErrChecksum          = errors.New("checksum computation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOTPInvalid        = errors.New("invalid or expired OTP")
	ErrOTPExpired        = errors.New("OTP has expired")
	ErrOTPUsed           = errors.New("OTP already used")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrPaymentChanged    = errors.New("payment changed concurrently")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Resource string
	Key      string
	Value    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Key, e.Value)
}

// TransientRemoteError is a remote or gateway failure worth retrying:
// network errors, timeouts, 5xx-equivalents.
type TransientRemoteError struct {
	Op  string
	Err error
}

func (e *TransientRemoteError) Error() string {
	return fmt.Sprintf("%s: transient remote error: %v", e.Op, e.Err)
}

func (e *TransientRemoteError) Unwrap() error { return e.Err }

// TerminalRemoteError is an explicit rejection by the remote side. Work that
// hits it is cancelled rather than retried.
type TerminalRemoteError struct {
	Op  string
	Err error
}

func (e *TerminalRemoteError) Error() string {
	return fmt.Sprintf("%s: rejected by remote: %v", e.Op, e.Err)
}

func (e *TerminalRemoteError) Unwrap() error { return e.Err }

type ConflictError struct {
	OrderID string
	Local   *RemoteOrder
	Remote  *RemoteOrder
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order %s diverged from remote copy", e.OrderID)
}

// IntegrityError wraps a unique-constraint violation. Callers treat it as
// "already done" and re-read current state.
type IntegrityError struct {
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation on %s: %v", e.Constraint, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsIntegrity(err error) bool {
	var target *IntegrityError
	return errors.As(err, &target)
}

func IsTerminal(err error) bool {
	var target *TerminalRemoteError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
