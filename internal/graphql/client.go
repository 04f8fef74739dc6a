package graphql

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

	"go.uber.org/zap"
)

// ClientConfig defines dependencies required by Client.
type ClientConfig struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
	Attempts   int
	RetryDelay time.Duration
	Metrics    *Metrics
}

// Client sends query descriptors to the store API over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	attempts   int
	retryDelay time.Duration
	metrics    *Metrics
}

// NewClient constructs a Client. Attempts below one are raised to one.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		httpClient: httpClient,
		logger:     logger,
		attempts:   attempts,
		retryDelay: cfg.RetryDelay,
		metrics:    cfg.Metrics,
	}
}

// Endpoint returns the configured store API URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute sends req and returns the raw data member of the response.
// Transport failures and 5xx responses are retried; GraphQL errors are not.
func (c *Client) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	started := time.Now()

	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 && c.retryDelay > 0 {
			if err := sleepContext(ctx, c.retryDelay); err != nil {
				lastErr = err
				break
			}
		}
		data, retry, err := c.do(ctx, req)
		if err == nil {
			c.metrics.observe(req.OperationName, "ok", time.Since(started))
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
		if i < c.attempts-1 {
			c.logger.Warnf("store api request retry operation=%s attempt=%d err=%v", req.OperationName, i+1, err)
		}
	}

	outcome := "error"
	var respErr *ResponseError
	if errors.As(lastErr, &respErr) {
		outcome = "graphql_error"
	}
	c.metrics.observe(req.OperationName, outcome, time.Since(started))

	if errors.Is(lastErr, ErrUpstream) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %w", ErrUpstream, lastErr)
}

// ExecuteInto runs req and decodes the data member into out.
func (c *Client) ExecuteInto(ctx context.Context, req Request, out any) error {
	data, err := c.Execute(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", ErrUpstream, req.OperationName, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, req Request) (json.RawMessage, bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, false, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode >= 500 {
		return nil, true, fmt.Errorf("status=%d body=%s", res.StatusCode, truncate(payload))
	}
	if res.StatusCode >= 400 {
		return nil, false, fmt.Errorf("status=%d body=%s", res.StatusCode, truncate(payload))
	}

	var envelope Response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, false, &ResponseError{OperationName: req.OperationName, Errors: envelope.Errors}
	}
	return envelope.Data, false, nil
}

func truncate(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
