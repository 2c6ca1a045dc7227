package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Client calls a remote site's /chat-message/ endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the site at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/chat-message/",
		httpClient: &http.Client{},
	}
}

// Reply posts message and history and returns the assistant reply.
func (c *Client) Reply(ctx context.Context, message string, history []Message) (reply string, err error) {
	var reqBody []byte
	reqBody, err = json.Marshal(map[string]any{"message": message, "history": history})
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return reply, err
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return reply, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return reply, err
	}
	defer resp.Body.Close()

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return reply, err
	}
	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP error %d: %s", resp.StatusCode, truncate(string(body), 200))
		return reply, err
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err = json.Unmarshal(body, &result)
	if err != nil {
		err = errors.Wrap(err, "failed to parse response")
		return reply, err
	}
	if !result.Success {
		err = errors.Errorf("chat failed: %s", result.Message)
		return reply, err
	}

	reply = result.Message
	return reply, err
}
