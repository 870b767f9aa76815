package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const DefaultAPIBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	httpc  *http.Client
	apiURL string
}

// NewClient builds a client for token. apiBase is DefaultAPIBase outside tests.
func NewClient(token, apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		apiURL: apiBase + "/bot" + token,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) send(ctx context.Context, method string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "telegram %s: encode", method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(b))
	if err != nil {
		return errors.Wrapf(err, "telegram %s", method)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "telegram %s", method)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}
