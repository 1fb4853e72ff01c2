package domain

import "errors"

// ErrMissingAPIKey is returned by LLM clients when no API key is configured.
var ErrMissingAPIKey = errors.New("XAI_API_KEY is not set")
