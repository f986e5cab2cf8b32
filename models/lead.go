package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lead status values. New leads advance to contacted on the first
// recorded interaction; qualification is a manual decision afterwards.
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusUnqualified = "unqualified"
)

// Lead represents a prospective client company with contact and
// qualification data. Score is derived from the other fields and is
// never edited directly.
type Lead struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Company identity
	CompanyName   string   `json:"company_name" gorm:"not null"`
	// CNPJ is the dedup key; leads without one are exempt, so
	// uniqueness is enforced at intake rather than by the index.
	CNPJ          string   `json:"cnpj,omitempty" gorm:"column:cnpj;index"`
	Sector        string   `json:"sector,omitempty" gorm:"index"`
	CompanySize   string   `json:"company_size,omitempty"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty"`
	EmployeeCount *int     `json:"employee_count,omitempty"`

	// Contact
	ContactName      string `json:"contact_name,omitempty"`
	ContactPosition  string `json:"contact_position,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Website          string `json:"website,omitempty"`
	LinkedInProfile  string `json:"linkedin_profile,omitempty"`
	InstagramProfile string `json:"instagram_profile,omitempty"`

	// Address
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Address string `json:"address,omitempty"`

	// Qualification
	Source                     string     `json:"source" gorm:"index;default:'manual'"`
	TaxRegime                  string     `json:"tax_regime,omitempty"`
	EstimatedRecoveryPotential *float64   `json:"estimated_recovery_potential,omitempty"`
	Score                      int        `json:"score" gorm:"index;default:0"`
	Status                     string     `json:"status" gorm:"index;default:'new'"`
	LastContactAt              *time.Time `json:"last_contact_at,omitempty"`

	AdditionalData datatypes.JSON `json:"additional_data,omitempty" gorm:"type:jsonb"`
}

func (Lead) TableName() string { return "leads" }
