package models

import (
	"time"

	"gorm.io/datatypes"
)

// LeadInteraction is an append-only log entry for one outreach attempt.
// Rows are never updated or deleted; only the parent lead's summary
// fields (status, last_contact_at) change.
type LeadInteraction struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	LeadID uint `json:"lead_id" gorm:"index;not null"`

	InteractionType string `json:"interaction_type" gorm:"not null"` // email, linkedin, instagram
	Channel         string `json:"channel,omitempty"`
	Subject         string `json:"subject,omitempty"`
	Message         string `json:"message,omitempty" gorm:"type:text"`
	Status          string `json:"status" gorm:"default:'sent'"`

	// Free-form metadata (template name, profile URL, ...). Kept as an
	// open string-keyed map on purpose.
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	SentAt time.Time `json:"sent_at" gorm:"autoCreateTime;index"`

	Lead *Lead `json:"-" gorm:"foreignKey:LeadID"`
}

func (LeadInteraction) TableName() string { return "lead_interactions" }
