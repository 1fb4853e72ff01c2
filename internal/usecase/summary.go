package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"mortgage-voice-relay/internal/domain"
)

const transcriptRequiredMessage = "transcript is required and cannot be empty"

type SummaryOutput struct {
	Summary string
	Raw     json.RawMessage
}

// TranscriptFromFields returns the transcript field if it is a JSON string.
func TranscriptFromFields(fields map[string]json.RawMessage) string {
	s, _ := stringField(fields["transcript"])
	return s
}

// SummaryService asks the LLM for a short bulleted call summary.
type SummaryService struct {
	llm         LLMClient
	instruction string
	model       string
}

func NewSummaryService(llm LLMClient, instruction, model string) (*SummaryService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultSummaryPrompt
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &SummaryService{llm: llm, instruction: instruction, model: model}, nil
}

// Summarize rejects a blank transcript before any upstream call.
func (s *SummaryService) Summarize(ctx context.Context, transcript string) (SummaryOutput, error) {
	if strings.TrimSpace(transcript) == "" {
		return SummaryOutput{}, &Error{
			Code:    ErrorInvalidInput,
			Reason:  "empty_transcript",
			Status:  http.StatusBadRequest,
			Message: transcriptRequiredMessage,
		}
	}

	messages, err := buildSummaryMessages(s.instruction, transcript)
	if err != nil {
		return SummaryOutput{}, newError(ErrorInternal, "prompt_build_error", err)
	}

	completion, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return SummaryOutput{}, upstreamFailure("summary_upstream_error", err)
	}
	return SummaryOutput{Summary: completion.Content, Raw: completion.Raw}, nil
}
