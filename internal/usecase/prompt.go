package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"mortgage-voice-relay/internal/domain"
)

// DefaultPersonaPrompt is the system turn prepended to every chat relay call
// unless SYSTEM_PROMPT overrides it.
var DefaultPersonaPrompt = strings.Join([]string{
	"You are Jess from Omni Mortgage, a helpful agent assisting with mortgage inquiries. " +
		"Engage the user in a natural conversation about obtaining a home loan. " +
		"Ask relevant questions one at a time, such as:",
	"- If they're looking to refinance or get a new loan.",
	"- If they're a first-time buyer.",
	"- Their budget or help figuring it out by asking annual income.",
	"- Savings for down payment.",
	"- Any debts.",
	"- Family situation (e.g., kids).",
	"- Preferred area or neighborhood.",
	"- Preferred property type.",
	"- At the end, offer to set up a meeting with a loan specialist.",
	"",
	"Keep responses concise, friendly, and suitable for voice conversation. " +
		"Respond based on what the user says, and ask the next logical question. " +
		"Do not repeat questions unnecessarily. If the user wants to end, acknowledge and stop.",
}, "\n")

// DefaultSummaryPrompt is the system turn for the summary relay unless
// SUMMARY_PROMPT overrides it.
const DefaultSummaryPrompt = "You are a concise summarizer for mortgage-related conversations. " +
	"Produce a short structured summary (bullets) including: intent, key facts collected, " +
	"next steps / follow-up questions."

const (
	DefaultModel = "grok-3-beta"

	defaultChatTemperature = json.Number("0.7")
	defaultChatMaxTokens   = json.Number("300")

	summaryTemperature = json.Number("0.2")
	summaryMaxTokens   = json.Number("250")
)

// buildChatMessages returns [persona] followed by the client turns untouched.
func buildChatMessages(persona string, client []json.RawMessage) ([]json.RawMessage, error) {
	system, err := marshalMessage(domain.ChatMessage{Role: domain.RoleSystem, Content: persona})
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(client)+1)
	out = append(out, system)
	out = append(out, client...)
	return out, nil
}

func buildSummaryMessages(instruction, transcript string) ([]json.RawMessage, error) {
	system, err := marshalMessage(domain.ChatMessage{Role: domain.RoleSystem, Content: instruction})
	if err != nil {
		return nil, err
	}
	user, err := marshalMessage(domain.ChatMessage{Role: domain.RoleUser, Content: transcript})
	if err != nil {
		return nil, err
	}
	return []json.RawMessage{system, user}, nil
}

func marshalMessage(m domain.ChatMessage) (json.RawMessage, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("usecase: marshal %s message: %w", m.Role, err)
	}
	return b, nil
}

// numberField reports whether raw is a JSON number and returns it verbatim.
func numberField(raw json.RawMessage) (json.Number, bool) {
	if len(raw) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
