package ditto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/config"
)

// defaultRequestTimeout bounds every API call when the config does not say
// otherwise. Matches the 5 second timeout the replay and polling paths use.
const defaultRequestTimeout = 5 * time.Second

// thingsPath is the Things API root under the instance base URL.
const thingsPath = "/api/2/things"

// Logger defines the logging interface for the client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client talks to the Things HTTP API of a single Ditto instance.
//
// All calls are synchronous and sequential; the client never issues two
// requests concurrently on behalf of one operation and performs no retries.
//
// Thread Safety:
//   - Safe for concurrent use; the client holds no per-request mutable state.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     Logger

	// now and sleep are injection points for time in tests.
	now   func() time.Time
	sleep func(d time.Duration)

	// probe is the availability check used by WaitUntilAvailable.
	// Defaults to CheckConnection; replaced in tests to script outcomes.
	probe func(ctx context.Context) error
}

// New creates a client from Ditto connection configuration.
func New(cfg config.DittoConfig) *Client {
	timeout := cfg.GetRequestTimeout()
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		creds: Credentials{
			Username: cfg.Username,
			Password: cfg.Password,
			Token:    cfg.Token,
		},
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: noopLogger{},
		now:    time.Now,
		sleep:  time.Sleep,
	}
	c.probe = c.CheckConnection
	return c
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// BaseURL returns the instance base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// thingURL builds the API URL for a thing, with optional sub-path segments
// (already escaped by the caller where needed; thing IDs and property names
// in this tool are restricted to URL-safe characters by normalisation).
func (c *Client) thingURL(thingID string, segments ...string) string {
	url := c.baseURL + thingsPath + "/" + thingID
	if len(segments) > 0 {
		url += "/" + strings.Join(segments, "/")
	}
	return url
}

// send issues a single API request and returns the response status and body.
//
// A nil payload sends no body. Payloads are JSON-encoded; contentType
// defaults to application/json when empty so merge-patch calls can override
// it. Transport failures return a wrapped error with a zero status.
func (c *Client) send(ctx context.Context, method, url, contentType string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}

	if contentType == "" {
		contentType = "application/json"
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", c.creds.AuthHeader())
	req.Header.Set("x-correlation-id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("api call",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
	)

	return resp.StatusCode, respBody, nil
}

// statusError wraps an unexpected status code with its response body.
func statusError(status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, status, strings.TrimSpace(string(body)))
}
