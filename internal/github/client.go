package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

const (
	graphqlEndpoint = "https://api.github.com/graphql"
	restEndpoint    = "https://api.github.com"
	acceptHeader    = "application/vnd.github+json"

	// maxRetries bounds retry attempts for transient failures.
	maxRetries = 5
	// retryJitterFactor spreads retry delays to avoid thundering herds.
	retryJitterFactor = 0.2
)

// retryableStatus lists response codes that warrant a retry.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
}

// Client talks to the GitHub API. Construct it with NewClient; the zero
// value is not usable.
type Client struct {
	httpClient *http.Client
	token      string
	cache      *Cache

	// endpoint overrides for tests.
	graphqlURL string
	restURL    string

	// sleep is replaceable in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// NewClient returns a client authenticated with the given token. A nil cache
// disables response caching.
func NewClient(token string, cache *Cache) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		cache:      cache,
		graphqlURL: graphqlEndpoint,
		restURL:    restEndpoint,
		sleep:      time.Sleep,
	}
}

// graphqlRequest is the JSON body of a GraphQL call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlResponse is the envelope of a GraphQL reply.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql performs a GraphQL request, consulting the disk cache first.
// Responses carrying GraphQL errors are never cached.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding GraphQL request: %w", err)
	}

	key := Key(body)
	raw, cached := c.cache.Get(key)
	if !cached {
		raw, err = c.post(ctx, c.graphqlURL, body)
		if err != nil {
			return nil, err
		}
	}

	var resp graphqlResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding GraphQL response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL server responded with error: %s", resp.Errors[0].Message)
	}

	if !cached {
		if err := c.cache.Set(key, raw); err != nil {
			return nil, err
		}
	}
	return resp.Data, nil
}

// post sends a POST request with retry on transient failures.
func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// doWithRetry sends a request built by newReq, retrying transient transport
// errors and retryable status codes with exponential backoff and jitter.
// A Retry-After header, when present, sets the minimum delay.
func (c *Client) doWithRetry(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return data, nil
			} else if !retryableStatus[resp.StatusCode] {
				return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
			} else {
				lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
			}

			if attempt < maxRetries {
				c.sleep(retryDelay(attempt, resp.Header.Get("Retry-After")))
				continue
			}
		}

		if attempt < maxRetries {
			c.sleep(retryDelay(attempt, ""))
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// retryDelay computes the backoff before the next attempt: the Retry-After
// header when given, otherwise an exponential delay, both with jitter.
func retryDelay(attempt int, retryAfter string) time.Duration {
	seconds := float64(int(1) << uint(attempt+1))
	if retryAfter != "" {
		if parsed, err := strconv.ParseFloat(retryAfter, 64); err == nil && parsed > 0 {
			// Always wait at least as long as the server asked.
			return time.Duration((parsed + parsed*retryJitterFactor*rand.Float64()) * float64(time.Second))
		}
	}
	jitter := 1 + retryJitterFactor*(2*rand.Float64()-1)
	return time.Duration(seconds * jitter * float64(time.Second))
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}
