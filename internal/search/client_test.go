package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithRetry(2, time.Millisecond, 2*time.Millisecond),
	}, opts...)
	return NewClient("test-key", opts...)
}

func TestSearch_Success(t *testing.T) {
	var gotBody SearchRequest
	var gotAuth, gotUA string

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"t","url":"https://e.org","score":0.9}]}`))
	})

	resp, err := c.Search(context.Background(), SearchRequest{
		Query:       "solar panel efficiency",
		MaxResults:  5,
		SearchDepth: DepthAdvanced,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotUA, "agora")
	assert.Equal(t, "solar panel efficiency", gotBody.Query)
	assert.Equal(t, 5, gotBody.MaxResults)
	assert.Equal(t, DepthAdvanced, gotBody.SearchDepth)

	var decoded struct {
		Results []struct {
			Title string  `json:"title"`
			URL   string  `json:"url"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, resp.DecodeInto(&decoded))
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "https://e.org", decoded.Results[0].URL)
}

func TestSearch_EmptyAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestSearch_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	// initial attempt + 2 retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearch_Unauthorized(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSearch_Forbidden(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSearch_APIErrorMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"query too long"}`))
	})

	_, err := c.Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "query too long")
}

func TestBackoffBounds(t *testing.T) {
	min := 100 * time.Millisecond
	max := 400 * time.Millisecond
	for attempt := 0; attempt < 6; attempt++ {
		d := backoff(attempt, min, max)
		assert.GreaterOrEqual(t, d, time.Duration(float64(min)*0.8))
		assert.LessOrEqual(t, d, time.Duration(float64(max)*1.2))
	}
}
