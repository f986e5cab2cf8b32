package models

import (
	"time"

	"gorm.io/datatypes"
)

// Publication outcome values.
const (
	PublicationStatusSuccess = "success"
	PublicationStatusFailed  = "failed"
)

// PublicationLog is an append-only record of one publish attempt.
type PublicationLog struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ContentID uint `json:"content_id" gorm:"index;not null"`
	ChannelID uint `json:"channel_id" gorm:"index;not null"`

	PublicationStatus string         `json:"publication_status" gorm:"not null"`
	PublicationURL    string         `json:"publication_url,omitempty" gorm:"size:500"`
	ResponseData      datatypes.JSON `json:"response_data,omitempty" gorm:"type:jsonb"`
	ErrorMessage      string         `json:"error_message,omitempty" gorm:"type:text"`

	PublishedAt time.Time `json:"published_at" gorm:"autoCreateTime;index"`
}

func (PublicationLog) TableName() string { return "publication_logs" }
