package processor

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned while the circuit breaker refuses calls.
var ErrUnavailable = errors.New("document processor is unavailable, please try again later")

// ServerError is a non-2xx reply from the processing service.
type ServerError struct {
	Status  int
	Message string
}

func newServerError(status int, message string) *ServerError {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &ServerError{Status: status, Message: message}
}

func (e *ServerError) Error() string {
	return e.Message
}

// Temporary reports whether the service failed rather than rejected the
// document.
func (e *ServerError) Temporary() bool {
	return e.Status >= 500
}

// Outcome classifies err for logs and metrics.
func Outcome(err error) string {
	var serverErr *ServerError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &serverErr):
		return "server_error"
	default:
		return "request_failed"
	}
}
