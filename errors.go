package decal

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a load or export is requested while another one
// is still in flight. The running operation is unaffected.
var ErrBusy = errors.New("decal: operation already in progress")

// Precondition failures. They are never fatal; callers usually ignore them or
// surface a transient notice.
var (
	ErrNoBaseImage = &PreconditionError{Op: "", Reason: "no base image loaded"}
	ErrNoSelection = &PreconditionError{Op: "", Reason: "no sticker selected"}
)

// PreconditionError reports an operation invoked without the state it needs.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Op == "" {
		return "decal: " + e.Reason
	}
	return fmt.Sprintf("decal: %s: %s", e.Op, e.Reason)
}

// Is matches any PreconditionError with the same reason, so
// errors.Is(err, ErrNoSelection) works regardless of Op.
func (e *PreconditionError) Is(target error) bool {
	t, ok := target.(*PreconditionError)
	return ok && t.Reason == e.Reason
}

func precondition(op string, base *PreconditionError) error {
	return &PreconditionError{Op: op, Reason: base.Reason}
}

// ValidationReason classifies a ValidationError.
type ValidationReason uint8

const (
	ReasonInvalidFormat ValidationReason = iota + 1 // not a supported image format
	ReasonTooLarge                                  // byte size over the configured cap
	ReasonEmpty                                     // zero bytes or zero-sized image
)

func (r ValidationReason) String() string {
	switch r {
	case ReasonInvalidFormat:
		return "invalid format"
	case ReasonTooLarge:
		return "too large"
	case ReasonEmpty:
		return "empty"
	default:
		return "invalid"
	}
}

// ValidationError reports input rejected at load time. No state changes.
type ValidationError struct {
	Reason ValidationReason
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "decal: " + e.Reason.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError with the given reason.
func IsValidation(err error, reason ValidationReason) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}
