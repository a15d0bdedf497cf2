package mastodon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/CrestNiraj12/fedtimeline/domain"
	"github.com/CrestNiraj12/fedtimeline/infra/auth"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Recorder observes every API request. status is 0 when the request never
// got a response.
type Recorder interface {
	Request(method string, status int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Request(string, int, time.Duration) {}

// Client is a thin HTTP wrapper for the Mastodon API.
// It handles base URL construction, bearer token injection and error
// classification. Transport failures go through a circuit breaker so a dead
// instance fails fast.
type Client struct {
	baseURL       string
	tokenProvider auth.TokenProvider
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker
	log           logger.Logger
	metrics       Recorder
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = l } }

func WithRecorder(r Recorder) Option { return func(c *Client) { c.metrics = r } }

// NewClient creates a Mastodon API client.
func NewClient(baseURL string, tp auth.TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		tokenProvider: tp,
		http:          &http.Client{Timeout: 30 * time.Second},
		log:           logger.NewNop(),
		metrics:       nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mastodon",
		MaxRequests: 1,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return c
}

// response is a read body plus the headers pagination needs.
type response struct {
	body   []byte
	header http.Header
}

// Get performs an authenticated GET request.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	return resp.body, err
}

// Post performs an authenticated POST request.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	return resp.body, err
}

// Put performs an authenticated PUT request.
func (c *Client) Put(ctx context.Context, path string, body io.Reader) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPut, path, body)
	return resp.body, err
}

// Patch performs an authenticated PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body io.Reader) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPatch, path, body)
	return resp.body, err
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	return resp.body, err
}

// do returns a *domain.FetchError on failure: transport errors and an open
// breaker are network errors, everything else is other.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (response, error) {
	op := method + " " + path

	token, err := c.tokenProvider.AccessToken()
	if err != nil {
		return response{}, domain.OtherError(op, fmt.Errorf("auth: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return response{}, domain.OtherError(op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		return &rawResponse{code: resp.StatusCode, body: buf.Bytes(), header: resp.Header}, nil
	})
	if err != nil {
		c.metrics.Request(method, 0, time.Since(start))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return response{}, domain.NetworkError(op, fmt.Errorf("instance unavailable: %w", err))
		}
		return response{}, domain.NetworkError(op, fmt.Errorf("request to %s: %w", path, err))
	}

	raw := out.(*rawResponse)
	c.metrics.Request(method, raw.code, time.Since(start))

	if raw.code == http.StatusUnauthorized {
		return response{}, domain.OtherError(op, fmt.Errorf("%w: API %s %s returned %d", domain.ErrUnauthorized, method, path, raw.code))
	}
	if raw.code == http.StatusNotFound {
		return response{}, domain.OtherError(op, fmt.Errorf("%w: API %s %s returned %d", domain.ErrNotFound, method, path, raw.code))
	}
	if raw.code < 200 || raw.code >= 300 {
		return response{}, domain.OtherError(op, fmt.Errorf("API %s %s returned %d: %s", method, path, raw.code, string(raw.body)))
	}

	return response{body: raw.body, header: raw.header}, nil
}

type rawResponse struct {
	code   int
	body   []byte
	header http.Header
}
