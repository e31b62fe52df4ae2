// Package searchclient talks to the external search service. Transport
// failures are retried with exponential backoff; HTTP status errors are
// returned immediately.
package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/johnwards/leadsearch/internal/domain"
)

const maxBodyBytes = 32 << 20

// Config configures a Client.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// RateLimit is the outbound request rate per second. Zero disables it.
	RateLimit float64
	RateBurst int
}

// Response is the search service's list envelope. Count-only endpoints
// fill just Count.
type Response struct {
	Data    []json.RawMessage `json:"data"`
	Success bool              `json:"success"`
	Count   *int64            `json:"count"`
}

type Option func(*Client)

// WithHTTPClient replaces the lazily built client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRegisterer registers the request counter with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) { c.reg = reg }
}

type Client struct {
	cfg     Config
	logger  *slog.Logger
	reg     prometheus.Registerer
	limiter *rate.Limiter

	mu   sync.Mutex
	http *http.Client

	requests *prometheus.CounterVec
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	c.requests = promauto.With(c.reg).NewCounterVec(prometheus.CounterOpts{
		Name: "leadsearch_search_requests_total",
		Help: "Search service request attempts, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
	return c
}

func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c.http
}

// Close releases idle connections. The client is rebuilt on next use.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
}

// Search sends a VQL query.
func (c *Client) Search(ctx context.Context, entity domain.Entity, body any) (*Response, error) {
	return c.post(ctx, "/"+string(entity)+"/query", body)
}

// SearchWhere sends a where-clause request.
func (c *Client) SearchWhere(ctx context.Context, entity domain.Entity, body any) (*Response, error) {
	return c.post(ctx, "/"+string(entity)+"/where", body)
}

// Count sends a VQL query to the count endpoint.
func (c *Client) Count(ctx context.Context, entity domain.Entity, body any) (int64, error) {
	resp, err := c.post(ctx, "/"+string(entity)+"/count", body)
	if err != nil {
		return 0, err
	}
	if resp.Count == nil {
		return int64(len(resp.Data)), nil
	}
	return *resp.Count, nil
}

func (c *Client) backOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     c.cfg.InitialBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.cfg.MaxBackoff,
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	attempts := 0
	operation := func() (*Response, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		resp, err := c.do(ctx, endpoint, payload)
		var svcErr *ServiceError
		switch {
		case err == nil:
			c.requests.WithLabelValues(endpoint, "ok").Inc()
		case errors.As(err, &svcErr):
			c.requests.WithLabelValues(endpoint, "service_error").Inc()
			return nil, backoff.Permanent(err)
		default:
			c.requests.WithLabelValues(endpoint, "transport_error").Inc()
		}
		return resp, err
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("search service request failed, retrying",
				"endpoint", endpoint,
				"attempt", attempts,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	if err == nil {
		return resp, nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		c.logger.Error("search service rejected request",
			"endpoint", endpoint,
			"status", svcErr.Status,
			"message", svcErr.Message,
		)
		return nil, svcErr
	}
	c.logger.Error("search service unavailable", "endpoint", endpoint, "attempts", attempts, "error", err)
	return nil, &UnavailableError{Method: http.MethodPost, Endpoint: endpoint, Attempts: attempts, Err: err}
}

// do performs one attempt. Transport errors come back unwrapped so they are
// retried; anything the service answered is a *ServiceError.
func (c *Client) do(ctx context.Context, endpoint string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &ServiceError{
			Method:   http.MethodPost,
			Endpoint: endpoint,
			Status:   res.StatusCode,
			Message:  errorDetail(res.StatusCode, body),
		}
	}

	if ok := gjson.GetBytes(body, "success"); ok.Exists() && !ok.Bool() {
		return nil, &ServiceError{
			Method:   http.MethodPost,
			Endpoint: endpoint,
			Status:   res.StatusCode,
			Message:  errorDetail(res.StatusCode, body),
		}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ServiceError{
			Method:   http.MethodPost,
			Endpoint: endpoint,
			Status:   res.StatusCode,
			Message:  "invalid response body: " + err.Error(),
		}
	}
	return &out, nil
}
