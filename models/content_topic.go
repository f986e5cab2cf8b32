package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentTopic is a candidate subject for content generation. Priority
// only drives the default sort order.
type ContentTopic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Topic    string `json:"topic" gorm:"not null"`
	Category string `json:"category" gorm:"index"`
	Priority int    `json:"priority" gorm:"default:1"`

	TargetSectors datatypes.JSONSlice[string] `json:"target_sectors,omitempty" gorm:"type:jsonb"`
	Keywords      datatypes.JSONSlice[string] `json:"keywords,omitempty" gorm:"type:jsonb"`
}

func (ContentTopic) TableName() string { return "content_topics" }
