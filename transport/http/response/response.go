package response

import (
	"encoding/json"
	"fleet/shared/constant"
	"fleet/shared/failure"
	"fleet/shared/logger"
	"net/http"
	"strconv"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error carries the failure message and, for conflicts, the periods that clash.
type Error struct {
	Error   *string `json:"error,omitempty"`
	Details any     `json:"details,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

// WithJSON wraps payload in the data envelope.
func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError maps err to its HTTP status. Errors that are not failures are reported as
// internal errors without leaking their text.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = http.StatusText(code)
	}

	write(writer, code, Error{Error: &msg, Details: failure.GetDetails(err)})
}

// WithRequestLimitExceeded tells the client to come back once the current window closes.
func WithRequestLimitExceeded(writer http.ResponseWriter, retryAfterSeconds int) {
	writer.Header().Set(constant.ResponseHeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	withStatus(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// RouteNotFound and MethodNotAllowed replace chi's plain text replies.
func RouteNotFound(writer http.ResponseWriter, _ *http.Request) {
	withStatus(writer, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

func MethodNotAllowed(writer http.ResponseWriter, _ *http.Request) {
	withStatus(writer, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

func withStatus(writer http.ResponseWriter, code int, msg string) {
	write(writer, code, Error{Error: &msg})
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
