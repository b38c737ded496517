// Package assistant talks to an OpenAI-compatible chat completion API
// (Groq by default).
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when neither the user nor the server picks one.
const DefaultModel = "llama-3.3-70b-versatile"

const (
	maxCompletionTokens = 1024
	temperature         = 0.4
)

var (
	// ErrNoAPIKey is returned when no key is available for the call.
	ErrNoAPIKey = errors.New("no api key configured")
	// ErrEmptyCompletion is returned when the provider answers with no choices.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Roles accepted in a conversation.
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
	RoleSystem    = openai.ChatMessageRoleSystem
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat completion failed with status %d: %s", e.StatusCode, e.Message)
}

// Client sends chat completions. A per-call key overrides the server key.
type Client struct {
	baseURL      string
	defaultKey   string
	defaultModel string
	httpClient   *http.Client
}

// NewClient creates a Client. defaultKey may be empty when every user
// brings their own key.
func NewClient(baseURL, defaultKey, defaultModel string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultKey:   defaultKey,
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether calls can be made without a user key.
func (c *Client) Configured() bool {
	return c.defaultKey != ""
}

// Complete sends the conversation and returns the assistant's reply.
// Empty key or model fall back to the server defaults.
func (c *Client) Complete(ctx context.Context, key, model string, messages []Message) (string, error) {
	if key == "" {
		key = c.defaultKey
	}
	if key == "" {
		return "", ErrNoAPIKey
	}
	if model == "" {
		model = c.defaultModel
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAI(messages),
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	}
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &APIError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode)}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toOpenAI(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
