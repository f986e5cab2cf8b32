package wordpress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"jusfiscal/models"
)

// PostResult is the outcome of a successful WordPress publish.
type PostResult struct {
	PostID   int
	URL      string
	Response json.RawMessage
}

// Client publishes posts via the wp-json REST API using an
// application password.
type Client struct {
	Logger *zap.Logger
	client *http.Client
}

// NewClient creates a WordPress client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		Logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishPost creates a published post with the given title, body and tags.
func (c *Client) PublishPost(cfg models.WordPressConfig, title, content string, tags []string) (*PostResult, error) {
	if cfg.SiteURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("wordpress channel config incomplete")
	}

	payload := map[string]interface{}{
		"title":      title,
		"content":    content,
		"status":     "publish",
		"categories": []int{1},
		"tags":       tags,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(cfg.SiteURL, "/") + "/wp-json/wp/v2/posts"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.Username, cfg.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("wordpress API error: %d - %s", resp.StatusCode, string(respBody))
	}

	var created struct {
		ID   int    `json:"id"`
		Link string `json:"link"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("wordpress reply could not be parsed: %w", err)
	}

	c.Logger.Info("WordPress post published", zap.Int("post_id", created.ID), zap.String("link", created.Link))
	return &PostResult{PostID: created.ID, URL: created.Link, Response: respBody}, nil
}
