// Package sms dispatches session-activation messages through an HTTP SMS
// gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Transport sends an activation message to a destination address. A nil
// error means the gateway accepted the message.
type Transport interface {
	Send(ctx context.Context, destination, message string) error
}

// GatewayClient is a Transport backed by a JSON HTTP gateway.
type GatewayClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

// GatewayOption configures the GatewayClient.
type GatewayOption func(*GatewayClient)

// WithSender sets the originating address reported to the gateway.
func WithSender(sender string) GatewayOption {
	return func(c *GatewayClient) {
		c.sender = sender
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) GatewayOption {
	return func(c *GatewayClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(d time.Duration) GatewayOption {
	return func(c *GatewayClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewGatewayClient creates a GatewayClient for the given gateway URL.
func NewGatewayClient(baseURL, apiKey string, opts ...GatewayOption) *GatewayClient {
	c := &GatewayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

type sendResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Send implements Transport.
func (c *GatewayClient) Send(ctx context.Context, destination, message string) error {
	payload, err := json.Marshal(sendRequest{To: destination, From: c.sender, Message: message})
	if err != nil {
		return eris.Wrap(err, "sms: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "sms: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "sms: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "sms: read body")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return eris.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return eris.Wrap(err, "sms: parse response")
	}
	if sr.Error != "" {
		return eris.Errorf("sms: gateway error: %s", sr.Error)
	}

	return nil
}

// LogTransport is a Transport that only logs the message. Used when no
// gateway is configured (development, tests).
type LogTransport struct{}

// Send implements Transport.
func (LogTransport) Send(_ context.Context, destination, message string) error {
	zap.L().Info("sms dispatch (log only)",
		zap.String("destination", destination),
		zap.String("message", message),
	)
	return nil
}
