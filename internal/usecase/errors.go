package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"mortgage-voice-relay/internal/domain"
)

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorConfig       ErrorCode = "CONFIG_ERROR"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

const genericErrorMessage = "Internal Server Error"

// Error is the relay error surfaced to the HTTP layer. Status and Message,
// when set, are sent to the client as-is.
type Error struct {
	Code    ErrorCode
	Reason  string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatus returns the explicit status, or the default for the code.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case ErrorInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the text for the {"error": ...} body: the explicit
// message, else the wrapped error's text, else a generic fallback.
func (e *Error) ClientMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return genericErrorMessage
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type upstreamMessager interface {
	UpstreamMessage() string
}

// upstreamFailure maps an LLM client error onto a relay error: the upstream
// status and message pass through when the provider supplied them. A status
// without a message gets a short generic text.
func upstreamFailure(reason string, err error) *Error {
	if errors.Is(err, domain.ErrMissingAPIKey) {
		return &Error{
			Code:    ErrorConfig,
			Reason:  "missing_api_key",
			Status:  http.StatusInternalServerError,
			Message: domain.ErrMissingAPIKey.Error(),
			Err:     err,
		}
	}
	out := newError(ErrorUpstream, reason, err)
	out.Status = http.StatusInternalServerError
	status, hasStatus := upstreamStatusCode(err)
	if hasStatus && status >= 400 && status <= 599 {
		out.Status = status
	}
	var msg upstreamMessager
	if errors.As(err, &msg) {
		out.Message = msg.UpstreamMessage()
	}
	// The raw upstream body stays in the log only.
	if out.Message == "" && hasStatus {
		out.Message = fmt.Sprintf("Request failed with status code %d", status)
	}
	return out
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
