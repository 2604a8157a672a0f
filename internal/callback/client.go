package callback

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

// DefaultURL is the evaluation endpoint that collects final reports.
const DefaultURL = "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"

type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send posts the report. Any 2xx status counts as acknowledged.
func (c *Client) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback rejected %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("final report delivered",
		"session_id", p.SessionID,
		"status", resp.StatusCode,
		"items", countItems(p.ExtractedIntelligence),
	)
	return nil
}

func countItems[K comparable](m map[K][]string) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}
