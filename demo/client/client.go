// Package client is a small HTTP client for the lotcheck API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lotcheck/types"
)

// maxLineBytes bounds one NDJSON record. Records grow with the batch.
const maxLineBytes = 16 << 20

// Client talks to a lotcheck server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new client. Streaming calls have no client-side
// timeout; cancel the context to stop them.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// StreamLinks submits links and calls fn for every progress record as it arrives.
func (c *Client) StreamLinks(ctx context.Context, links []string, mode string, fn func(types.BatchProgress) error) error {
	body, err := json.Marshal(types.ProcessLinksRequest{Links: links, Mode: mode})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process-links", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to process links: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var bp types.BatchProgress
		if err := json.Unmarshal(line, &bp); err != nil {
			return fmt.Errorf("failed to decode progress: %w", err)
		}
		if err := fn(bp); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}
