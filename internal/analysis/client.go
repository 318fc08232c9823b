package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEndpoint is the hosted analysis service.
const DefaultEndpoint = "https://mathplots.onrender.com"

// Client posts grids to an analysis service.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *slog.Logger
}

// NewClient returns a Client for endpoint whose requests give up after timeout.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
		Logger:   logger,
	}
}

// Analyze sends req and decodes the result. Transport failures come back as
// *NetworkError; error bodies, non-2xx statuses and unreadable payloads as
// *ServiceError.
func (c *Client) Analyze(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	c.Logger.Info("analysis request start", "endpoint", c.Endpoint, "rows", len(req.Data), "columns", len(req.Headers))
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		c.Logger.Error("analysis request failed", "endpoint", c.Endpoint, "error", err)
		return nil, &NetworkError{Endpoint: c.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: c.Endpoint, Err: err}
	}
	c.Logger.Debug("analysis response", "status", resp.StatusCode, "bytes", len(b), "elapsed", time.Since(start))

	trimmed := bytes.TrimSpace(b)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(trimmed, &eb) == nil && eb.Error != "" {
			return nil, &ServiceError{Status: resp.StatusCode, Message: eb.Error}
		}
		return nil, &ServiceError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("service returned %s: %q", resp.Status, snippet(trimmed)),
		}
	}
	if len(trimmed) == 0 {
		return nil, &ServiceError{Status: resp.StatusCode, Message: "empty response from analysis service"}
	}

	var eb errorBody
	if err := json.Unmarshal(trimmed, &eb); err == nil && eb.Error != "" {
		return nil, &ServiceError{Status: resp.StatusCode, Message: eb.Error}
	}
	var out Response
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, &ServiceError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("invalid JSON from analysis service: %v snippet=%q", err, snippet(trimmed)),
		}
	}
	c.Logger.Info("analysis request ok", "series", len(out.Series), "intersection", out.Intersection != nil)
	return &out, nil
}

func snippet(b []byte) string {
	s := string(b)
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
