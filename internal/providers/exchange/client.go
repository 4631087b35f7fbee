package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const (
	defaultTimeout  = 60 * time.Second
	maxResponseSize = 1 << 20
)

var errNoResponse = errors.New("responder reported success without a response")

// Client talks to a responder's /api/chat endpoint. Every failure is turned
// into core.FallbackMessage; the client never retries.
type Client struct {
	client   *http.Client
	endpoint string
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
	}
}

func NewClientFromConfig(cfg core.ExchangeConfig) *Client {
	return NewClient(cfg.GetEndpointURL(), cfg.GetExchangeTimeout())
}

func (c *Client) Exchange(ctx context.Context, message string, history []core.Message) string {
	logger := log.FromCtx(ctx)

	reply, err := c.send(ctx, message, history)
	if err != nil {
		logger.Error().Err(err).Str("endpoint", c.endpoint).Msg("exchange failed, using fallback reply")
		return core.FallbackMessage
	}

	logger.Debug().Int("history", len(history)).Int("reply_len", len(reply)).Msg("exchange completed")
	return reply
}

func (c *Client) send(ctx context.Context, message string, history []core.Message) (string, error) {
	if history == nil {
		history = []core.Message{}
	}

	body, err := json.Marshal(core.ChatRequest{Message: message, History: history})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.TuskUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result core.ChatResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if !result.Success {
		if result.Error == "" {
			result.Error = "unknown error"
		}
		return "", fmt.Errorf("responder error: %s", result.Error)
	}
	if result.Response == nil {
		return "", errNoResponse
	}

	return *result.Response, nil
}
