// Package search queries the Tavily web search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Tavily API.
const DefaultBaseURL = "https://api.tavily.com"

// Result limits.
const (
	MinResults     = 1
	MaxResults     = 10
	DefaultResults = 5
)

// ErrNoAPIKey is returned when no key is available for the call.
var ErrNoAPIKey = errors.New("no api key configured")

// APIError is a non-2xx answer from Tavily.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search failed with status %d: %s", e.StatusCode, e.Message)
}

// Result is one web page found.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response is the answer to a search.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Client calls the Tavily search endpoint.
type Client struct {
	baseURL    string
	defaultKey string
	httpClient *http.Client
}

// NewClient creates a Client. defaultKey may be empty when every user
// brings their own key.
func NewClient(baseURL, defaultKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultKey: defaultKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether calls can be made without a user key.
func (c *Client) Configured() bool {
	return c.defaultKey != ""
}

type searchRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
	SearchDepth   string `json:"search_depth"`
}

type errorBody struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
	Error string `json:"error"`
}

// Search runs query. An empty key falls back to the server key.
// maxResults is clamped to [MinResults, MaxResults].
func (c *Client) Search(ctx context.Context, key, query string, maxResults int) (*Response, error) {
	if key == "" {
		key = c.defaultKey
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}
	maxResults = ClampResults(maxResults)

	payload, err := json.Marshal(searchRequest{
		Query:         query,
		MaxResults:    maxResults,
		IncludeAnswer: true,
		SearchDepth:   "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if out.Results == nil {
		out.Results = []Result{}
	}
	if out.Query == "" {
		out.Query = query
	}
	return &out, nil
}

// ClampResults bounds a requested result count.
func ClampResults(n int) int {
	switch {
	case n <= 0:
		return DefaultResults
	case n > MaxResults:
		return MaxResults
	case n < MinResults:
		return MinResults
	}
	return n
}

func errorMessage(body []byte, status int) string {
	var e errorBody
	if json.Unmarshal(body, &e) == nil {
		if e.Detail.Error != "" {
			return e.Detail.Error
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return http.StatusText(status)
}
