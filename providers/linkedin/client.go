package linkedin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jusfiscal/models"
)

const defaultBaseURL = "https://api.linkedin.com/v2"

// PostResult is the outcome of a successful UGC post.
type PostResult struct {
	PostID   string
	URL      string
	Response json.RawMessage
}

// Client posts content to LinkedIn via the UGC API.
type Client struct {
	BaseURL string
	Logger  *zap.Logger
	client  *http.Client
}

// NewClient creates a LinkedIn client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishPost creates a public text share for the configured person.
func (c *Client) PublishPost(cfg models.LinkedInConfig, text string) (*PostResult, error) {
	if cfg.AccessToken == "" || cfg.PersonID == "" {
		return nil, fmt.Errorf("linkedin channel config incomplete")
	}

	payload := map[string]interface{}{
		"author":         fmt.Sprintf("urn:li:person:%s", cfg.PersonID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("linkedin API error: %d - %s", resp.StatusCode, string(respBody))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("linkedin reply could not be parsed: %w", err)
	}

	c.Logger.Info("LinkedIn post published", zap.String("post_id", created.ID))
	return &PostResult{
		PostID:   created.ID,
		URL:      fmt.Sprintf("https://www.linkedin.com/feed/update/%s/", created.ID),
		Response: respBody,
	}, nil
}
