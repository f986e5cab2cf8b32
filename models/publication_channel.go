package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Channel types supported by the publication dispatcher.
const (
	ChannelTypeLinkedIn  = "linkedin"
	ChannelTypeInstagram = "instagram"
	ChannelTypeWordPress = "wordpress"
	ChannelTypeEmail     = "email"
)

// ValidChannelType reports whether t is a supported channel type.
func ValidChannelType(t string) bool {
	switch t {
	case ChannelTypeLinkedIn, ChannelTypeInstagram, ChannelTypeWordPress, ChannelTypeEmail:
		return true
	}
	return false
}

// LinkedInConfig holds the credentials for posting via the LinkedIn UGC API.
type LinkedInConfig struct {
	AccessToken string `json:"access_token"`
	PersonID    string `json:"person_id"`
}

// InstagramConfig holds the credentials for the Instagram Graph API.
// DefaultImageURL, when set, turns text content into an image post
// instead of a story.
type InstagramConfig struct {
	AccessToken     string `json:"access_token"`
	PageID          string `json:"page_id"`
	DefaultImageURL string `json:"default_image_url,omitempty"`
}

// WordPressConfig holds the basic-auth credentials for the wp-json API.
// Password is an application password, not the account password.
type WordPressConfig struct {
	SiteURL  string `json:"site_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// PublicationChannel is an external posting destination. APIConfig is
// the serialized per-type config struct above; the typed accessors
// decode it.
type PublicationChannel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string         `json:"name" gorm:"not null"`
	ChannelType string         `json:"channel_type" gorm:"index;not null"`
	APIConfig   datatypes.JSON `json:"api_config,omitempty" gorm:"type:jsonb"`
	// No column default: gorm drops zero-valued fields on Create, so a
	// "default:true" would silently reactivate channels created inactive.
	IsActive bool `json:"is_active"`
}

func (PublicationChannel) TableName() string { return "publication_channels" }

// LinkedInConfig decodes the channel's API config as LinkedIn credentials.
func (c *PublicationChannel) LinkedInConfig() (LinkedInConfig, error) {
	var cfg LinkedInConfig
	err := json.Unmarshal(c.APIConfig, &cfg)
	return cfg, err
}

// InstagramConfig decodes the channel's API config as Instagram credentials.
func (c *PublicationChannel) InstagramConfig() (InstagramConfig, error) {
	var cfg InstagramConfig
	err := json.Unmarshal(c.APIConfig, &cfg)
	return cfg, err
}

// WordPressConfig decodes the channel's API config as WordPress credentials.
func (c *PublicationChannel) WordPressConfig() (WordPressConfig, error) {
	var cfg WordPressConfig
	err := json.Unmarshal(c.APIConfig, &cfg)
	return cfg, err
}
