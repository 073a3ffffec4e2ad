package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.tavily.com"
	defaultUA      = "agora/0.1 (+github.com/agora-platform/agora)"
)

// Client is a minimal HTTP client for the Tavily Search API.
type Client struct {
	apiKey     string
	baseURL    string
	ua         string
	http       *http.Client
	maxRetries int
	minBackoff time.Duration
	maxBackoff time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom http.Client (e.g., with proxy or custom transport).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.ua = ua }
}

// WithRetry configures retry policy for 429/5xx.
func WithRetry(maxRetries int, minBackoff, maxBackoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if minBackoff > 0 {
			c.minBackoff = minBackoff
		}
		if maxBackoff >= c.minBackoff {
			c.maxBackoff = maxBackoff
		}
	}
}

// NewClient constructs a Client with sane defaults.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		ua:         defaultUA,
		http:       &http.Client{Timeout: 30 * time.Second},
		maxRetries: 2,
		minBackoff: 250 * time.Millisecond,
		maxBackoff: 4 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var (
	// ErrUnauthorized indicates a 401 response.
	ErrUnauthorized = errors.New("search: unauthorized (check API key)")
	// ErrForbidden indicates a 403 response.
	ErrForbidden = errors.New("search: forbidden")
)

// Depth defines the Tavily search_depth parameter.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// SearchRequest models the request body for /search.
type SearchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results,omitempty"`
	SearchDepth Depth  `json:"search_depth,omitempty"` // "basic" | "advanced"
}

// APIError models an error payload from the API, if any.
type APIError struct {
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return fmt.Sprintf("search api error: %s (status=%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("search api error (status=%d)", e.Status)
}

// SearchResponse wraps the raw JSON payload. The provider's response shape
// varies by plan and endpoint version, so normalization is left to callers.
type SearchResponse struct {
	// Raw is the exact JSON returned by the API.
	Raw json.RawMessage
}

// DecodeInto unmarshals the response into v.
func (r SearchResponse) DecodeInto(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Searcher is the evidence-search port consumed by the verification pipeline.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

// Search calls POST /search and returns the raw JSON payload.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if c.apiKey == "" {
		return SearchResponse{}, errors.New("search: API key is empty")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return SearchResponse{}, err
	}

	url := c.baseURL + "/search"
	retries := c.maxRetries

	for attempt := 0; ; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return SearchResponse{}, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("User-Agent", c.ua)

		res, err := c.http.Do(httpReq)
		if err != nil {
			// Only retry transient network issues.
			if attempt < retries {
				time.Sleep(backoff(attempt, c.minBackoff, c.maxBackoff))
				continue
			}
			return SearchResponse{}, err
		}

		// Handle non-2xx
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			// Read body (bounded) to attempt decoding API error.
			b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20)) // 1 MiB
			_ = res.Body.Close()
			apiErr := &APIError{Status: res.StatusCode}
			_ = json.Unmarshal(b, apiErr)

			shouldRetry := res.StatusCode == http.StatusTooManyRequests || (res.StatusCode >= 500 && res.StatusCode <= 599)
			if shouldRetry && attempt < retries {
				// Honor Retry-After if present.
				if ra := res.Header.Get("Retry-After"); ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
						time.Sleep(time.Duration(secs) * time.Second)
					} else {
						time.Sleep(backoff(attempt, c.minBackoff, c.maxBackoff))
					}
				} else {
					time.Sleep(backoff(attempt, c.minBackoff, c.maxBackoff))
				}
				continue
			}

			switch res.StatusCode {
			case http.StatusUnauthorized:
				return SearchResponse{}, ErrUnauthorized
			case http.StatusForbidden:
				return SearchResponse{}, ErrForbidden
			default:
				if apiErr.Message != "" {
					return SearchResponse{}, apiErr
				}
				return SearchResponse{}, fmt.Errorf("search: http %d", res.StatusCode)
			}
		}

		// Success
		b, err := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			return SearchResponse{}, err
		}
		return SearchResponse{Raw: append([]byte(nil), b...)}, nil
	}
}

func backoff(attempt int, min, max time.Duration) time.Duration {
	// Exponential backoff with jitter.
	d := min * (1 << attempt)
	if d > max {
		d = max
	}
	// jitter +/- 20%
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}
