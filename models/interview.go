package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	InterviewTypeVideo    = "video"
	InterviewTypePhone    = "phone"
	InterviewTypeInPerson = "in_person"
)

const (
	InterviewStatusScheduled  = "scheduled"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusCancelled  = "cancelled"
)

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
)

const (
	FeedbackRecommendHire   = "hire"
	FeedbackRecommendNoHire = "no_hire"
	FeedbackRecommendMaybe  = "maybe"
)

// Interview is a scheduled meeting tied to one (request, freelancer) pair.
// At most one non-terminal interview may exist per pair.
type Interview struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RequestID       string         `gorm:"type:uuid;not null;index" json:"request_id"`
	AssociateID     string         `gorm:"type:uuid;not null;index" json:"associate_id"`
	FreelancerID    string         `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	Type            string         `gorm:"not null;check:type IN ('video', 'phone', 'in_person')" json:"type"`
	ScheduledAt     time.Time      `gorm:"not null" json:"scheduled_at"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	Location        string         `gorm:"size:500" json:"location,omitempty"`
	MeetingToken    string         `gorm:"size:500" json:"meeting_token,omitempty"` // Opaque room token, video interviews only
	Status          string         `gorm:"default:'scheduled';check:status IN ('scheduled', 'in_progress', 'completed', 'cancelled')" json:"status"`
	AssociateNotes  string         `gorm:"type:text" json:"associate_notes,omitempty"`
	FreelancerNotes string         `gorm:"type:text" json:"freelancer_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Request    FreelanceRequest      `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Associate  User                  `gorm:"foreignKey:AssociateID" json:"associate,omitempty"`
	Freelancer User                  `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Invitation *InterviewInvitation  `gorm:"foreignKey:InterviewID" json:"invitation,omitempty"`
	Feedbacks  []InterviewFeedback   `gorm:"foreignKey:InterviewID" json:"feedbacks,omitempty"`
}

// IsTerminal reports whether the interview can no longer change state.
func (i *Interview) IsTerminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusCancelled
}

// InterviewInvitation is the freelancer-facing acceptance gate for an
// interview, created 1:1 with it. Responses after ExpiresAt are rejected.
type InterviewInvitation struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InterviewID string         `gorm:"type:uuid;not null;uniqueIndex" json:"interview_id"`
	Message     string         `gorm:"type:text" json:"message,omitempty"`
	Status      string         `gorm:"default:'pending';check:status IN ('pending', 'accepted', 'declined')" json:"status"`
	ExpiresAt   time.Time      `gorm:"not null" json:"expires_at"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"` // Freelancer's response notes
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Interview Interview `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
}

// InterviewFeedback is one evaluator's assessment of a completed interview.
// Exactly one row per (interview, evaluator) pair; ratings are 1-5.
type InterviewFeedback struct {
	ID                  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InterviewID         string         `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_evaluator" json:"interview_id"`
	EvaluatorID         string         `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_evaluator" json:"evaluator_id"`
	EvaluatorRole       string         `gorm:"not null;check:evaluator_role IN ('associate', 'freelancer')" json:"evaluator_role"`
	OverallRating       *int           `json:"overall_rating,omitempty"`
	TechnicalRating     *int           `json:"technical_rating,omitempty"`
	CommunicationRating *int           `json:"communication_rating,omitempty"`
	ProfessionalRating  *int           `json:"professional_rating,omitempty"`
	Strengths           string         `gorm:"type:text" json:"strengths,omitempty"`
	Weaknesses          string         `gorm:"type:text" json:"weaknesses,omitempty"`
	Comments            string         `gorm:"type:text" json:"comments,omitempty"`
	Recommendation      string         `gorm:"not null;check:recommendation IN ('hire', 'no_hire', 'maybe')" json:"recommendation"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Interview Interview `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
	Evaluator User      `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
}
