package domain

import "encoding/json"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used for locally
// constructed turns (persona, summary instruction, transcript).
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is an upstream chat completion: the extracted assistant text and
// the untouched response body.
type Completion struct {
	Content string
	Raw     json.RawMessage
}

// CompletionRequest is the outbound chat-completions payload. Messages are kept
// as raw JSON so client-supplied turns reach the provider byte-for-byte.
type CompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	Temperature json.Number       `json:"temperature"`
	MaxTokens   json.Number       `json:"max_tokens"`
}
