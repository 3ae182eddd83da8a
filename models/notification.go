package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationInterviewScheduled = "interview_scheduled"
	NotificationInterviewUpdated   = "interview_updated"
	NotificationInvitationResponse = "invitation_response"
	NotificationHireCreated        = "hire_created"
	NotificationReminder24h        = "interview_reminder_24h"
	NotificationReminder2h         = "interview_reminder_2h"
	NotificationReminder30m        = "interview_reminder_30m"
)

// Notification is a unit of async information delivered to one user. A nil
// ScheduledFor means immediate delivery; otherwise the flush loop picks the
// row up once the scheduled time has passed. IsSent becomes true after the
// delivery attempt, whether or not the recipient was connected.
type Notification struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RecipientID  string         `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID     *string        `gorm:"type:uuid" json:"sender_id,omitempty"`
	Type         string         `gorm:"not null" json:"type"`
	Title        string         `gorm:"not null" json:"title"`
	Message      string         `gorm:"type:text" json:"message,omitempty"`
	Data         datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"` // e.g. {"interview_id": "...", "request_id": "..."}
	ScheduledFor *time.Time     `gorm:"index" json:"scheduled_for,omitempty"`
	IsRead       bool           `gorm:"default:false" json:"is_read"`
	IsSent       bool           `gorm:"default:false;index" json:"is_sent"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Recipient User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}
