package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content status values.
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
)

// GeneratedContent is the output of the content generator. The
// publication dispatcher flips status/published_at on a successful
// publish; a failed publish leaves both untouched so the content can be
// retried.
type GeneratedContent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title        string `json:"title" gorm:"not null"`
	Content      string `json:"content" gorm:"type:text"`
	ContentType  string `json:"content_type" gorm:"index;not null"`
	TargetSector string `json:"target_sector,omitempty" gorm:"index"`
	TemplateID   *uint  `json:"template_id,omitempty"`

	Keywords datatypes.JSONSlice[string] `json:"keywords,omitempty" gorm:"type:jsonb"`

	// Optional image used for Instagram publishing.
	ImageURL string `json:"image_url,omitempty"`

	Status      string     `json:"status" gorm:"index;default:'draft'"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func (GeneratedContent) TableName() string { return "generated_contents" }
