package failure_test

import (
	"errors"
	"fleet/shared/failure"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "bad request from error",
			err:     failure.BadRequest(errors.New("start_date is required")),
			code:    http.StatusBadRequest,
			message: "start_date is required",
		},
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("end date precedes start date"),
			code:    http.StatusBadRequest,
			message: "end date precedes start date",
		},
		{
			name:    "unauthorized",
			err:     failure.Unauthorized("token expired"),
			code:    http.StatusUnauthorized,
			message: "token expired",
		},
		{
			name:    "forbidden",
			err:     failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
		{
			name:    "not found",
			err:     failure.NotFound("booking not found"),
			code:    http.StatusNotFound,
			message: "booking not found",
		},
		{
			name:    "conflict",
			err:     failure.ConflictWithDetails("car is unavailable", nil),
			code:    http.StatusConflict,
			message: "car is unavailable",
		},
		{
			name:    "precondition failed",
			err:     failure.PreconditionFailed("payment below reservation fee"),
			code:    http.StatusPreconditionFailed,
			message: "payment below reservation fee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fail *failure.Failure
			require.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.code, fail.Code)
			assert.Equal(t, tt.message, fail.Error())
		})
	}
}

func TestBadRequest_NilStaysNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "failure", err: failure.NotFound("car not found"), want: http.StatusNotFound},
		{name: "wrapped failure", err: fmt.Errorf("failed to confirm booking: %w", failure.PreconditionFailed("expired")), want: http.StatusPreconditionFailed},
		{name: "plain error", err: errors.New("pq: connection refused"), want: http.StatusInternalServerError},
		{name: "nil", err: nil, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}

func TestGetDetails(t *testing.T) {
	periods := []string{"2025-03-01..2025-03-05", "2025-03-06..2025-03-06"}
	err := fmt.Errorf("wrapped: %w", failure.ConflictWithDetails("requested range is unavailable", periods))

	assert.Equal(t, periods, failure.GetDetails(err))
	assert.Nil(t, failure.GetDetails(errors.New("plain")))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", failure.NotFound("booking not found"))

	assert.True(t, failure.Is(err, http.StatusNotFound))
	assert.False(t, failure.Is(err, http.StatusConflict))
	assert.False(t, failure.Is(errors.New("plain"), http.StatusNotFound))
}
