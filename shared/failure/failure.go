package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that knows which HTTP status it maps to.
// Details carries structured context the caller can render, e.g. the conflicting periods of a booking request.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, msg string) error {
	return &Failure{Code: code, Message: msg}
}

// BadRequest converts a validation error into a 400. A nil error stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg)
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg)
}

// ConflictWithDetails reports a clash with existing state, e.g. an occupied car, and what it clashes with.
func ConflictWithDetails(msg string, details any) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: msg,
		Details: details,
	}
}

// PreconditionFailed reports a lifecycle guard that does not hold, such as confirming an expired reservation.
func PreconditionFailed(msg string) error {
	return newFailure(http.StatusPreconditionFailed, msg)
}

// GetCode returns the status carried by err, or 500 for anything that is not a Failure.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func GetDetails(err error) any {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Details
	}

	return nil
}

// Is reports whether err is a Failure with the given code.
func Is(err error, code int) bool {
	var fail *Failure

	return errors.As(err, &fail) && fail.Code == code
}
