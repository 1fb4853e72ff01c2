package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"mortgage-voice-relay/internal/domain"
)

// LLMClient is the upstream chat-completions API.
type LLMClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

// ChatInput is a normalized chat relay request. Zero values mean "use the
// default".
type ChatInput struct {
	Messages    []json.RawMessage
	Model       string
	Temperature json.Number
	MaxTokens   json.Number
}

type ChatOutput struct {
	Assistant string
	Raw       json.RawMessage
}

// ChatInputFromFields normalizes a decoded JSON object. Fields of the wrong
// JSON type are treated as absent, never as errors: a non-array messages
// field yields an empty conversation.
func ChatInputFromFields(fields map[string]json.RawMessage) ChatInput {
	var in ChatInput
	if raw, ok := fields["messages"]; ok {
		var msgs []json.RawMessage
		if err := json.Unmarshal(raw, &msgs); err == nil {
			in.Messages = msgs
		}
	}
	if model, ok := stringField(fields["model"]); ok {
		in.Model = strings.TrimSpace(model)
	}
	if n, ok := numberField(fields["temperature"]); ok {
		in.Temperature = n
	}
	if n, ok := numberField(fields["max_tokens"]); ok {
		in.MaxTokens = n
	}
	return in
}

// ChatService relays a conversation to the LLM behind a fixed persona.
type ChatService struct {
	llm          LLMClient
	persona      string
	defaultModel string
}

func NewChatService(llm LLMClient, persona, defaultModel string) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersonaPrompt
	}
	if strings.TrimSpace(defaultModel) == "" {
		defaultModel = DefaultModel
	}
	return &ChatService{llm: llm, persona: persona, defaultModel: defaultModel}, nil
}

func (s *ChatService) Reply(ctx context.Context, in ChatInput) (ChatOutput, error) {
	messages, err := buildChatMessages(s.persona, in.Messages)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "prompt_build_error", err)
	}

	req := domain.CompletionRequest{
		Model:       in.Model,
		Messages:    messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}
	if req.Temperature == "" {
		req.Temperature = defaultChatTemperature
	}
	if req.MaxTokens == "" {
		req.MaxTokens = defaultChatMaxTokens
	}

	completion, err := s.llm.Complete(ctx, req)
	if err != nil {
		return ChatOutput{}, upstreamFailure("chat_upstream_error", err)
	}
	return ChatOutput{Assistant: completion.Content, Raw: completion.Raw}, nil
}
