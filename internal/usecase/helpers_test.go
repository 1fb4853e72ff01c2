package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mortgage-voice-relay/internal/domain"
)

type capturingLLM struct {
	completion domain.Completion
	err        error
	captured   domain.CompletionRequest
	callCount  int
}

func (c *capturingLLM) Complete(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	c.callCount++
	c.captured = req
	return c.completion, c.err
}

// statusErr mimics the xai client's HTTPStatusError without importing it.
type statusErr struct {
	status  int
	message string
}

func (e *statusErr) Error() string           { return "xai: unexpected status" }
func (e *statusErr) HTTPStatusCode() int     { return e.status }
func (e *statusErr) UpstreamMessage() string { return e.message }

func rawMessages(t *testing.T, msgs []json.RawMessage) []domain.ChatMessage {
	t.Helper()
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		var cm domain.ChatMessage
		require.NoError(t, json.Unmarshal(m, &cm))
		out = append(out, cm)
	}
	return out
}

func fields(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var f map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &f))
	return f
}

func expectRelayError(t *testing.T, err error, code ErrorCode, reason string) *Error {
	t.Helper()
	var relayErr *Error
	require.ErrorAs(t, err, &relayErr)
	require.Equal(t, code, relayErr.Code)
	require.Equal(t, reason, relayErr.Reason)
	return relayErr
}
