package webservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/backchair/storefront/internal/metrics"
)

const (
	accessTokenHeader = "ACCESSTOKEN"
	defaultTimeout    = 10 * time.Second
	maxResponseBytes  = 1 << 20
)

// Client talks to the remote identity/commerce service. Every operation is a POST
// to the same URL with the action name in the JSON body.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient builds a client for the given endpoint. A zero timeout falls back to 10s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// Call posts {"action": action, ...fields}. accessToken, when non-empty, is sent in
// the ACCESSTOKEN header. A decoded envelope is returned whatever its code; callers
// decide what the code means for their action. Failures to obtain an envelope are
// returned as *TransportError.
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, accessToken string) (Envelope, error) {
	start := time.Now()
	env, err := c.do(ctx, action, fields, accessToken)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		c.metrics.ObserveRemoteCall(action, metrics.OutcomeTransport, elapsed.Seconds())
		c.logger.Error("identity call failed",
			slog.String("action", action),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)
		return Envelope{}, err
	case !env.Accepted(action):
		c.metrics.ObserveRemoteCall(action, metrics.OutcomeRejected, elapsed.Seconds())
		c.logger.Warn("identity call rejected",
			slog.String("action", action),
			slog.Int("code", env.ServerResponse.Code),
			slog.String("message", env.ServerResponse.Message),
		)
	default:
		c.metrics.ObserveRemoteCall(action, metrics.OutcomeOK, elapsed.Seconds())
		c.logger.Debug("identity call completed", slog.String("action", action), slog.Duration("duration", elapsed))
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, action string, fields map[string]any, accessToken string) (Envelope, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["action"] = action

	raw, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, &TransportError{Action: action, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return Envelope{}, &TransportError{Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set(accessTokenHeader, accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Envelope{}, &TransportError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return Envelope{}, &TransportError{Action: action, Err: fmt.Errorf("status %d: %w", resp.StatusCode, ErrEmptyResponse)}
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, &TransportError{Action: action, Err: fmt.Errorf("status %d: decode response: %w", resp.StatusCode, err)}
	}
	if env.ServerResponse.Code == 0 {
		return Envelope{}, &TransportError{Action: action, Err: errors.New("response carries no serverResponse code")}
	}
	return env, nil
}
