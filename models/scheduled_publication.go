package models

import "time"

// Scheduled publication status values.
const (
	ScheduleStatusScheduled = "scheduled"
	ScheduleStatusPublished = "published"
	ScheduleStatusFailed    = "failed"
	ScheduleStatusCancelled = "cancelled"
)

// ScheduledPublication binds a GeneratedContent to a PublicationChannel
// at a future time. The sweep picks up due rows that are still in
// status "scheduled".
type ScheduledPublication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ContentID uint `json:"content_id" gorm:"index;not null"`
	ChannelID uint `json:"channel_id" gorm:"index;not null"`

	ScheduledTime  time.Time  `json:"scheduled_time" gorm:"index;not null"`
	Status         string     `json:"status" gorm:"index;default:'scheduled'"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	PublicationURL string     `json:"publication_url,omitempty" gorm:"size:500"`
	ErrorMessage   string     `json:"error_message,omitempty" gorm:"type:text"`

	Content *GeneratedContent   `json:"-" gorm:"foreignKey:ContentID"`
	Channel *PublicationChannel `json:"-" gorm:"foreignKey:ChannelID"`
}

func (ScheduledPublication) TableName() string { return "scheduled_publications" }
