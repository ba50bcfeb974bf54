// internal/comj/client.go
package comj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/logger"
	"comj-admin/internal/common/metrics"
	"comj-admin/internal/common/observability"
)

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a typed client for the Comj REST API. Credentials travel in a
// cookie jar, matching the browser dashboard. Every call is a single attempt;
// retrying is left to the pollers' next tick.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
	obs        *observability.Observability
}

// NewClient creates a Comj API client.
func NewClient(cfg *Config, log logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("comj: base URL is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("comj: failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: log.WithFields(map[string]interface{}{"component": "comj-client"}),
	}, nil
}

// SetObservability attaches the OpenTelemetry recorder. A nil client keeps
// requests working with only the Prometheus counters.
func (c *Client) SetObservability(obs *observability.Observability) {
	c.obs = obs
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL resolves a possibly relative document URL against the API base.
func (c *Client) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return c.baseURL + "/" + strings.TrimPrefix(raw, "/")
}

// envelope mirrors the wire format with the data left raw for the caller.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doRequest executes one HTTP call and normalizes transport failures. The
// response body is returned along with the HTTP status.
func (c *Client) doRequest(ctx context.Context, operation, method, path string, body io.Reader, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("comj: failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if c.obs != nil {
		c.obs.RecordRequestDuration(ctx, operation, duration)
	}

	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		if c.obs != nil {
			c.obs.RecordRequest(ctx, operation, "network_error")
		}
		c.logger.Warn("api request failed at transport level", map[string]interface{}{
			"operation": operation,
			"requestId": requestID,
			"error":     err.Error(),
		})
		return nil, 0, errors.NewNetworkUnreachableError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		return nil, resp.StatusCode, errors.NewNetworkUnreachableError(err)
	}

	metrics.APIRequestsTotal.WithLabelValues(operation, outcomeLabel(resp.StatusCode)).Inc()
	if c.obs != nil {
		c.obs.RecordRequest(ctx, operation, outcomeLabel(resp.StatusCode))
	}
	c.logger.Debug("api request completed", map[string]interface{}{
		"operation":  operation,
		"requestId":  requestID,
		"httpStatus": resp.StatusCode,
		"durationMs": duration.Milliseconds(),
	})

	return data, resp.StatusCode, nil
}

func outcomeLabel(status int) string {
	if status >= 400 {
		return "rejected"
	}
	return "success"
}

// callEnvelope runs an enveloped endpoint and unmarshals the data field into
// out (which may be nil for calls with no payload).
func (c *Client) callEnvelope(ctx context.Context, operation, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("comj: failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
		contentType = "application/json"
	}

	data, status, err := c.doRequest(ctx, operation, method, path, reader, contentType)
	if err != nil {
		return err
	}

	var env envelope
	if decodeErr := json.Unmarshal(data, &env); decodeErr != nil {
		if status >= 400 {
			return c.rejected(operation, http.StatusText(status), status)
		}
		return fmt.Errorf("comj: failed to decode response: %w", decodeErr)
	}

	if status >= 400 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return c.rejected(operation, msg, status)
	}

	if env.Code != 200 {
		return c.rejected(operation, env.Message, env.Code)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("comj: failed to decode response data: %w", err)
		}
	}
	return nil
}

// callBare runs an endpoint that returns its payload without the envelope.
func (c *Client) callBare(ctx context.Context, operation, method, path string, out interface{}) error {
	data, status, err := c.doRequest(ctx, operation, method, path, nil, "")
	if err != nil {
		return err
	}

	if status >= 400 {
		return c.rejected(operation, http.StatusText(status), status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("comj: failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) rejected(operation, message string, code int) error {
	c.logger.Warn("api request rejected", map[string]interface{}{
		"operation": operation,
		"code":      code,
		"message":   message,
	})
	err := errors.NewServerRejectedError(message, code)
	err.Metadata = map[string]interface{}{"httpStatus": code}
	return err
}

func queryEscape(v string) string {
	return url.QueryEscape(v)
}
