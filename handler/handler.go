// Package handler is the HTTP edge of the relay: routing, CORS, request
// decoding and the mapping of relay errors onto HTTP responses. The same
// Handler serves both the standalone server and API Gateway via Lambda.
package handler

import (
	"context"
	"errors"
	"net/http"

	"mortgage-voice-relay/internal/usecase"
)

const defaultMaxUploadBytes = 25 << 20

type ChatReplier interface {
	Reply(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (usecase.SummaryOutput, error)
}

type EmailDeliverer interface {
	Deliver(ctx context.Context, in usecase.EmailInput) (usecase.EmailOutput, error)
}

// Deps are the collaborators and edge settings for NewHandler.
type Deps struct {
	Chat           ChatReplier
	Summary        Summarizer
	Email          EmailDeliverer
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Handler struct {
	router    http.Handler
	maxUpload int64
	chat      ChatReplier
	summary   Summarizer
	email     EmailDeliverer
}

func NewHandler(deps Deps) (*Handler, error) {
	if deps.Chat == nil {
		return nil, errors.New("handler: chat relay must not be nil")
	}
	if deps.Summary == nil {
		return nil, errors.New("handler: summary relay must not be nil")
	}
	if deps.Email == nil {
		return nil, errors.New("handler: email relay must not be nil")
	}
	h := &Handler{
		maxUpload: deps.MaxUploadBytes,
		chat:      deps.Chat,
		summary:   deps.Summary,
		email:     deps.Email,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUploadBytes
	}
	h.router = h.routes(deps.AllowedOrigins)
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}
