package instagram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"jusfiscal/models"
)

const defaultBaseURL = "https://graph.facebook.com/v18.0"

// PostResult is the outcome of a successful Instagram publish.
type PostResult struct {
	MediaID  string
	URL      string
	IsStory  bool
	Response json.RawMessage
}

// Client publishes to Instagram via the Graph API. All publishes are a
// two-step flow: create a media container, then publish it.
type Client struct {
	BaseURL string
	Logger  *zap.Logger
	client  *http.Client
}

// NewClient creates an Instagram Graph API client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishPost publishes a caption with the given hashtags. With an
// image URL it becomes a feed post, without one it is published as a
// story.
func (c *Client) PublishPost(cfg models.InstagramConfig, caption, imageURL string, hashtags []string) (*PostResult, error) {
	if cfg.AccessToken == "" || cfg.PageID == "" {
		return nil, fmt.Errorf("instagram channel config incomplete")
	}

	if len(hashtags) > 0 {
		tags := make([]string, 0, len(hashtags))
		for _, tag := range hashtags {
			tags = append(tags, "#"+tag)
		}
		caption = caption + "\n\n" + strings.Join(tags, " ")
	}

	if imageURL != "" {
		return c.publishImagePost(cfg, caption, imageURL)
	}
	return c.publishStory(cfg, caption)
}

func (c *Client) publishImagePost(cfg models.InstagramConfig, caption, imageURL string) (*PostResult, error) {
	mediaID, err := c.createMedia(cfg, url.Values{
		"image_url": {imageURL},
		"caption":   {caption},
	})
	if err != nil {
		return nil, err
	}

	postID, respBody, err := c.publishMedia(cfg, mediaID)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("Instagram post published", zap.String("post_id", postID))
	return &PostResult{
		MediaID:  postID,
		URL:      fmt.Sprintf("https://www.instagram.com/p/%s/", postID),
		Response: respBody,
	}, nil
}

func (c *Client) publishStory(cfg models.InstagramConfig, caption string) (*PostResult, error) {
	mediaID, err := c.createMedia(cfg, url.Values{
		"media_type": {"STORIES"},
		"caption":    {caption},
	})
	if err != nil {
		return nil, err
	}

	storyID, respBody, err := c.publishMedia(cfg, mediaID)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("Instagram story published", zap.String("story_id", storyID))
	return &PostResult{MediaID: storyID, IsStory: true, Response: respBody}, nil
}

// PublishCarousel publishes a multi-image carousel post.
func (c *Client) PublishCarousel(cfg models.InstagramConfig, caption string, imageURLs []string, hashtags []string) (*PostResult, error) {
	if cfg.AccessToken == "" || cfg.PageID == "" {
		return nil, fmt.Errorf("instagram channel config incomplete")
	}
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("carousel requires at least one image")
	}

	if len(hashtags) > 0 {
		tags := make([]string, 0, len(hashtags))
		for _, tag := range hashtags {
			tags = append(tags, "#"+tag)
		}
		caption = caption + "\n\n" + strings.Join(tags, " ")
	}

	children := make([]string, 0, len(imageURLs))
	for _, img := range imageURLs {
		id, err := c.createMedia(cfg, url.Values{
			"image_url":        {img},
			"is_carousel_item": {"true"},
		})
		if err != nil {
			return nil, fmt.Errorf("carousel item failed: %w", err)
		}
		children = append(children, id)
	}

	carouselID, err := c.createMedia(cfg, url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
		"caption":    {caption},
	})
	if err != nil {
		return nil, err
	}

	postID, respBody, err := c.publishMedia(cfg, carouselID)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("Instagram carousel published", zap.String("post_id", postID), zap.Int("items", len(children)))
	return &PostResult{
		MediaID:  postID,
		URL:      fmt.Sprintf("https://www.instagram.com/p/%s/", postID),
		Response: respBody,
	}, nil
}

// createMedia creates a media container and returns its id.
func (c *Client) createMedia(cfg models.InstagramConfig, form url.Values) (string, error) {
	form.Set("access_token", cfg.AccessToken)

	resp, err := c.client.PostForm(fmt.Sprintf("%s/%s/media", c.BaseURL, cfg.PageID), form)
	if err != nil {
		return "", fmt.Errorf("instagram media request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("instagram media creation failed: %s", string(body))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("instagram reply could not be parsed: %w", err)
	}
	return created.ID, nil
}

// publishMedia publishes a previously created media container.
func (c *Client) publishMedia(cfg models.InstagramConfig, creationID string) (string, json.RawMessage, error) {
	form := url.Values{
		"creation_id":  {creationID},
		"access_token": {cfg.AccessToken},
	}

	resp, err := c.client.PostForm(fmt.Sprintf("%s/%s/media_publish", c.BaseURL, cfg.PageID), form)
	if err != nil {
		return "", nil, fmt.Errorf("instagram publish request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("instagram publish failed: %s", string(body))
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &published); err != nil {
		return "", nil, fmt.Errorf("instagram reply could not be parsed: %w", err)
	}
	return published.ID, body, nil
}

// AccountInfo returns basic profile data for the configured account.
func (c *Client) AccountInfo(cfg models.InstagramConfig) (json.RawMessage, error) {
	if cfg.AccessToken == "" || cfg.PageID == "" {
		return nil, fmt.Errorf("instagram channel config incomplete")
	}

	u := fmt.Sprintf("%s/%s?fields=%s&access_token=%s",
		c.BaseURL, cfg.PageID,
		url.QueryEscape("id,username,account_type,media_count,followers_count"),
		url.QueryEscape(cfg.AccessToken))

	resp, err := c.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("instagram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram account lookup failed: %s", string(body))
	}
	return body, nil
}
