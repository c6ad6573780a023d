package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/postforge/internal/errorwrapper"
	"github.com/aleister1102/postforge/internal/httpclient"
)

// runEndpoint is the workflow-run path on the service base URL
const runEndpoint = "/v1/workflow/run"

// ClientConfig configures the workflow service client
type ClientConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// Client triggers workflow runs against the remote execution service
type Client struct {
	transport *httpclient.HTTPClientTransport
	baseURL   string
	logger    zerolog.Logger
}

// RunRequest is the wire request for a workflow run
type RunRequest struct {
	WorkflowID string         `json:"workflow_id"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// RunResult carries the service response for a workflow run. Data is a
// JSON-encoded string whose shape is workflow-specific; decoding it is the
// caller's concern.
type RunResult struct {
	Code     int    `json:"code"`
	Msg      string `json:"msg"`
	Data     string `json:"data"`
	DebugURL string `json:"debug_url"`
}

// ServiceError is a non-zero service-level result code on an otherwise
// successful HTTP exchange
type ServiceError struct {
	Code     int
	Msg      string
	DebugURL string
}

func (e *ServiceError) Error() string {
	if e.DebugURL != "" {
		return fmt.Sprintf("workflow service error %d: %s (debug: %s)", e.Code, e.Msg, e.DebugURL)
	}
	return fmt.Sprintf("workflow service error %d: %s", e.Code, e.Msg)
}

// NewClient creates a new workflow service client
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	baseURL, err := httpclient.ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.APIToken == "" {
		return nil, errorwrapper.NewValidationError("api_token", "", "API token must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	componentLogger := logger.With().Str("component", "WorkflowClient").Logger()

	builder := httpclient.NewHTTPClientBuilder(componentLogger).
		WithTimeout(timeout).
		WithFollowRedirects(true).
		WithMaxRedirects(3).
		WithUserAgent("Postforge/1.0").
		WithCustomHeader("Authorization", "Bearer "+cfg.APIToken).
		WithCustomHeader("Content-Type", "application/json")

	client, err := builder.Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build workflow HTTP client")
	}

	headers := map[string]string{
		"Authorization": "Bearer " + cfg.APIToken,
		"Content-Type":  "application/json",
		"User-Agent":    builder.Config().UserAgent,
	}

	return &Client{
		transport: httpclient.NewHTTPClientTransport(client, headers, componentLogger),
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    componentLogger,
	}, nil
}

// Run triggers one workflow run and waits for its result. Any transport
// failure, non-2xx status or non-zero service code is returned as an error
// so callers can retry the whole call as a unit.
func (c *Client) Run(ctx context.Context, workflowID string, parameters map[string]any) (*RunResult, error) {
	if workflowID == "" {
		return nil, errorwrapper.NewValidationError("workflow_id", "", "workflow ID must not be empty")
	}

	body, err := json.Marshal(RunRequest{
		WorkflowID: workflowID,
		Parameters: parameters,
	})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to marshal workflow run request")
	}

	url := c.baseURL + runEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to build workflow run request")
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error().Err(closeErr).Msg("Failed to close workflow response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read workflow response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, truncateBody(respBody), url)
	}

	var result RunResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode workflow run response")
	}

	if result.Code != 0 {
		return nil, &ServiceError{
			Code:     result.Code,
			Msg:      result.Msg,
			DebugURL: result.DebugURL,
		}
	}

	c.logger.Info().
		Str("workflow_id", workflowID).
		Str("debug_url", result.DebugURL).
		Int("data_bytes", len(result.Data)).
		Msg("Workflow run completed")

	return &result, nil
}

// truncateBody keeps error messages readable when the service returns a
// large HTML or JSON error page
func truncateBody(body []byte) string {
	const maxLen = 512
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
