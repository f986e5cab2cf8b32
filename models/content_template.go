package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentTemplate is a named text template with {variable}-style
// placeholders, tagged by content type (article, post, email, ...).
type ContentTemplate struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name            string `json:"name" gorm:"uniqueIndex;not null"`
	ContentType     string `json:"content_type" gorm:"index;not null"`
	TemplateContent string `json:"template_content" gorm:"type:text;not null"`

	// Placeholder name -> human description of what belongs there.
	Variables datatypes.JSONMap `json:"variables,omitempty" gorm:"type:jsonb"`
}

func (ContentTemplate) TableName() string { return "content_templates" }
