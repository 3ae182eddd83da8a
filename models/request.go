package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RequestStatusOpen   = "open"
	RequestStatusClosed = "closed"
)

const (
	ResponseStatusPending = "pending"
	ResponseStatusHired   = "hired"
)

// FreelanceRequest is a work request posted by an associate. Hires and
// interviews are always anchored to one request.
type FreelanceRequest struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AssociateID string         `gorm:"type:uuid;not null;index" json:"associate_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Status      string         `gorm:"default:'open';check:status IN ('open', 'closed')" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Associate User `gorm:"foreignKey:AssociateID" json:"associate,omitempty"`
}

// Recommendation records a platform decision pairing a freelancer with a
// request. It is a precondition for hiring or interviewing that freelancer.
type Recommendation struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID    string         `gorm:"type:uuid;not null;uniqueIndex:idx_recommendation_pair" json:"request_id"`
	FreelancerID string         `gorm:"type:uuid;not null;uniqueIndex:idx_recommendation_pair" json:"freelancer_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Request    FreelanceRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Freelancer User             `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// RecommendationResponse is the single response state per (request, freelancer)
// pair. Uniqueness is enforced at the schema level so hiring upserts one row
// instead of accumulating duplicates.
type RecommendationResponse struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID    string         `gorm:"type:uuid;not null;uniqueIndex:idx_response_pair" json:"request_id"`
	FreelancerID string         `gorm:"type:uuid;not null;uniqueIndex:idx_response_pair" json:"freelancer_id"`
	Status       string         `gorm:"default:'pending';check:status IN ('pending', 'hired')" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Request    FreelanceRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Freelancer User             `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}
