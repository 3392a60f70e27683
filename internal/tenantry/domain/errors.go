package domain

import "errors"

// ErrorKind is the closed set of failure reasons surfaced by the core.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindExpired          ErrorKind = "expired"
	KindEmailMismatch    ErrorKind = "email_mismatch"
	KindAlreadyUsed      ErrorKind = "already_used"
	KindRoleConflict     ErrorKind = "role_conflict"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindInvalidRequest   ErrorKind = "invalid_request"
)

// Retryable reports whether a caller may retry with backoff. Validation
// outcomes are final; only store outages qualify.
func (k ErrorKind) Retryable() bool {
	return k == KindStoreUnavailable
}

// Error is a tagged failure. Two Errors match under errors.Is when their
// kinds match, so the sentinels below work with wrapped detail.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "invitation not found"}
	ErrExpired          = &Error{Kind: KindExpired, Msg: "invitation expired"}
	ErrEmailMismatch    = &Error{Kind: KindEmailMismatch, Msg: "email does not match invitation"}
	ErrAlreadyUsed      = &Error{Kind: KindAlreadyUsed, Msg: "invitation already used"}
	ErrRoleConflict     = &Error{Kind: KindRoleConflict, Msg: "membership exists with a different role"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, Msg: "store unavailable"}
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest, Msg: "invalid request"}
)

// Unavailable wraps a store failure. The cause stays reachable through
// errors.Is, e.g. for context.Canceled.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindStoreUnavailable, Msg: "store unavailable", Err: err}
}

// Invalid builds an invalid_request error with a caller-facing message.
func Invalid(msg string) error {
	return &Error{Kind: KindInvalidRequest, Msg: msg}
}

// KindOf extracts the kind of err. Untagged errors are reported as
// store_unavailable since they can only come from infrastructure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreUnavailable
}
