package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	HireStatusActive    = "active"
	HireStatusCompleted = "completed"
)

// HireRecord is an active or historical engagement between one associate and
// one freelancer for one request. At most one active record may exist per
// freelancer whose expected end date is null or in the future.
type HireRecord struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID       string         `gorm:"type:uuid;not null;index" json:"request_id"`
	AssociateID     string         `gorm:"type:uuid;not null;index" json:"associate_id"`
	FreelancerID    string         `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	ProjectTitle    string         `gorm:"size:255;not null" json:"project_title"`
	Rate            float64        `gorm:"type:decimal(10,2);not null" json:"rate"`
	ContractPath    string         `gorm:"size:500;not null" json:"contract_path"` // Reference to the stored contract document
	StartDate       time.Time      `gorm:"not null" json:"start_date"`
	ExpectedEndDate *time.Time     `json:"expected_end_date,omitempty"`
	ActualEndDate   *time.Time     `json:"actual_end_date,omitempty"` // Set only when status becomes completed
	Status          string         `gorm:"default:'active';check:status IN ('active', 'completed')" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Request    FreelanceRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Associate  User             `gorm:"foreignKey:AssociateID" json:"associate,omitempty"`
	Freelancer User             `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
