package tenantsdk

import (
	"errors"
	"fmt"
)

// Error codes shared by ErrorResponse.Error and InvitationResult.Error.
const (
	CodeNotFound         = "not_found"
	CodeExpired          = "expired"
	CodeEmailMismatch    = "email_mismatch"
	CodeAlreadyUsed      = "already_used"
	CodeRoleConflict     = "role_conflict"
	CodeUnauthorized     = "unauthorized"
	CodeStoreUnavailable = "store_unavailable"
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidToken     = "invalid_token"
	CodeRateLimited      = "rate_limit_exceeded"
	CodeServerError      = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("tenantsdk: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("tenantsdk: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Retryable reports whether the request may succeed if repeated later.
func (e *APIError) Retryable() bool {
	return e.Code == CodeStoreUnavailable || e.Code == CodeRateLimited
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
