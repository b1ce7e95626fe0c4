package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrAdminForbidden ErrorType = "ADMIN_FORBIDDEN"
	ErrReferralReject ErrorType = "REFERRAL_REJECT"
	ErrFaucetReject   ErrorType = "FAUCET_REJECT"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrReadOnly       ErrorType = "READ_ONLY"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application.
// Every rejection is categorical: the whole call aborts with no partial
// state change, and the caller resubmits after fixing inputs or waiting
// out the blocking condition (cooldown, new day).
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewReferralReject(msg string) *AppError {
	return New(ErrReferralReject, msg, nil)
}

func NewFaucetReject(msg string) *AppError {
	return New(ErrFaucetReject, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrReferralReject, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrFaucetReject:
		return http.StatusForbidden
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrAdminForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrReadOnly:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrAuthFailed:
		return "check the X-Gateway-Key header"
	case ErrAdminForbidden:
		return "admin capability required for this endpoint"
	case ErrReferralReject:
		return "referral bindings are immutable and must not form short cycles"
	case ErrFaucetReject:
		return "retry after the cooldown clears or the next UTC day begins"
	case ErrInvalidRequest:
		return "fix the request payload and resubmit"
	case ErrReadOnly:
		return "the engine is in a settlement freeze, retry later"
	default:
		return ""
	}
}
