package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"mortgage-voice-relay/internal/domain"
)

const (
	defaultBaseURL = "https://api.x.ai/v1"
	defaultTimeout = 30 * time.Second

	maxErrorBody    = 64 << 10
	maxResponseBody = 4 << 20
)

// choicesEnvelope is the only part of a chat completion the relay reads.
type choicesEnvelope struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorEnvelope covers both error shapes seen from OpenAI-compatible APIs:
// {"error":{"message":"..."}} and {"error":"..."}.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// tokenPayload is the JSON shape stored in SSM for the API key.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("xai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// UpstreamMessage returns the provider's own error text, or "" when the body
// carries none.
func (e *HTTPStatusError) UpstreamMessage() string {
	var env errorEnvelope
	if err := json.Unmarshal([]byte(e.Body), &env); err != nil || len(env.Error) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(env.Error, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asObject struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &asObject); err == nil {
		return strings.TrimSpace(asObject.Message)
	}
	return ""
}

// Client is a focused client for the xAI (OpenAI-compatible) chat completions API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	staticKey string
	getter    Getter
	keyParam  string

	keyMu  sync.Mutex
	apiKey string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithAPIKey sets the bearer token directly.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.staticKey = strings.TrimSpace(key)
	}
}

// WithParamStore makes the client fetch its key from the named SSM parameter
// when no static key was given.
func WithParamStore(getter Getter, name string) Option {
	return func(c *Client) {
		c.getter = getter
		c.keyParam = strings.TrimSpace(name)
	}
}

// NewClient creates a Client. Without WithAPIKey or WithParamStore every call
// fails with domain.ErrMissingAPIKey.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.getter != nil && c.keyParam == "" {
		return nil, errors.New("xai: key parameter name must not be empty")
	}
	return c, nil
}

// resolveAPIKey returns the static key, or the SSM key. Only a successful
// fetch is cached; a failed or cancelled one is retried on the next call.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	if c.staticKey != "" {
		return c.staticKey, nil
	}
	if c.getter == nil {
		return "", domain.ErrMissingAPIKey
	}
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	// The key outlives the request that happens to fetch it.
	key, err := fetchAPIKeyFromParamStore(context.WithoutCancel(ctx), c.getter, c.keyParam)
	if err != nil {
		return "", err
	}
	c.apiKey = key
	return key, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Complete sends one chat completion request. The returned Completion carries
// the response body verbatim alongside the first choice's text.
func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (domain.Completion, error) {
	if in.Model == "" {
		return domain.Completion{}, errors.New("xai: model must not be empty")
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return domain.Completion{}, err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("xai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return domain.Completion{}, fmt.Errorf("xai: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("xai: request failed: %w", err)
	}
	if !json.Valid(raw) {
		return domain.Completion{}, errors.New("xai: decode response: body is not valid JSON")
	}

	content, _ := firstChoiceContent(raw)
	return domain.Completion{Content: content, Raw: json.RawMessage(raw)}, nil
}

// firstChoiceContent unwraps choices[0].message.content. The boolean is false
// when the path does not resolve to a string.
func firstChoiceContent(raw []byte) (string, bool) {
	var env choicesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false
	}
	if len(env.Choices) == 0 {
		return "", false
	}
	rawContent := env.Choices[0].Message.Content
	if len(rawContent) == 0 || bytes.Equal(rawContent, []byte("null")) {
		return "", false
	}
	var content string
	if err := json.Unmarshal(rawContent, &content); err != nil {
		return "", false
	}
	return content, true
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// fetchAPIKeyFromParamStore accepts either {"token":"..."} or the bare key.
func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("xai: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("xai: key parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("xai: fetch key from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("xai: unmarshal paramstore key value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("xai: API key is empty")
	}
	return raw, nil
}
