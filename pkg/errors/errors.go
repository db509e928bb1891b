package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed error carried through services up to the response
// writer. Status decides the HTTP code, Code is a stable machine-readable
// identifier and Err holds the underlying cause.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a typed error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinel errors shared across services. Use Clone to specialise the
// message without losing the code and status.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrInvalidTransition = New("INVALID_TRANSITION", http.StatusBadRequest, "invalid status transition")
	ErrEquipmentScrapped = New("EQUIPMENT_SCRAPPED", http.StatusConflict, "equipment is scrapped")
	ErrTechnicianTeam    = New("TECHNICIAN_NOT_IN_TEAM", http.StatusBadRequest, "technician does not belong to the assigned team")
	ErrCacheMiss         = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// InvalidTransition specialises ErrInvalidTransition with both states.
func InvalidTransition(current, next string) *Error {
	return Clone(ErrInvalidTransition, fmt.Sprintf("invalid status transition from %s to %s", current, next))
}

// Clone copies err, optionally overriding the message. Sentinels stay
// untouched so errors.Is keeps working against them.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// FromError coerces any error into *Error, defaulting to ErrInternal for
// untyped ones.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
