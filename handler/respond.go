package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mortgage-voice-relay/internal/usecase"
)

// maxJSONBody matches the 1 MB body limit of the browser client contract.
const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

// writeError logs err and maps it onto a JSON error response. Errors that are
// not relay errors are reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, route string, err error) {
	var relayErr *usecase.Error
	if !errors.As(err, &relayErr) {
		relayErr = &usecase.Error{
			Code:    usecase.ErrorInternal,
			Reason:  "unexpected_error",
			Status:  http.StatusInternalServerError,
			Message: "Internal Server Error",
			Err:     err,
		}
	}
	status := relayErr.HTTPStatus()

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(r.Context(), level, "relay request failed",
		"route", route,
		"code", relayErr.Code,
		"reason", relayErr.Reason,
		"status", status,
		"correlation_id", correlationIDFrom(r.Context()),
		"err", err,
	)

	writeJSON(w, status, errorResponse{Error: relayErr.ClientMessage()})
}

// decodeObject reads a JSON body into its top-level fields. An empty body or a
// JSON value that is not an object yields no fields; malformed JSON is an
// input error.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &usecase.Error{
				Code:    usecase.ErrorInvalidInput,
				Reason:  "body_too_large",
				Status:  http.StatusRequestEntityTooLarge,
				Message: "request body too large",
				Err:     err,
			}
		}
		return nil, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "body_read_error", Message: "could not read request body", Err: err}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(body) {
		return nil, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Message: "invalid JSON body"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}
