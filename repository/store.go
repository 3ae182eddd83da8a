package repository

import (
	"context"
	"time"

	"github.com/gigbridge/backend/models"
)

// InterviewFilter narrows interview listings. Limit and Offset are explicit;
// the store never applies an implicit cap beyond the caller-specified limit.
type InterviewFilter struct {
	Status    string
	RequestID string
	Limit     int
	Offset    int
}

// Store is the persistence contract consumed by the service layer. The GORM
// implementation is the single source of truth for the domain invariants, so
// every multi-step write runs through Transaction and re-checks its
// preconditions on the transactional Store it receives.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Token operations
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error

	// Request and recommendation operations
	CreateRequest(ctx context.Context, request *models.FreelanceRequest) error
	CreateRecommendation(ctx context.Context, recommendation *models.Recommendation) error
	GetRequestByID(ctx context.Context, id string) (*models.FreelanceRequest, error)
	GetRecommendation(ctx context.Context, requestID, freelancerID string) (*models.Recommendation, error)
	UpsertRecommendationResponse(ctx context.Context, requestID, freelancerID, status string) error

	// Hire operations
	CompleteExpiredHires(ctx context.Context, asOf time.Time) (int64, error)
	GetBlockingHires(ctx context.Context, freelancerID string, asOf time.Time) ([]models.HireRecord, error)
	GetActiveHireForRequest(ctx context.Context, requestID, freelancerID string) (*models.HireRecord, error)
	CreateHire(ctx context.Context, hire *models.HireRecord) error
	ListHires(ctx context.Context, userID, role string, limit, offset int) ([]models.HireRecord, error)

	// Interview operations
	CreateInterview(ctx context.Context, interview *models.Interview) error
	GetInterviewByID(ctx context.Context, id string) (*models.Interview, error)
	GetOpenInterview(ctx context.Context, requestID, freelancerID string) (*models.Interview, error)
	UpdateInterview(ctx context.Context, interview *models.Interview) error
	CreateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error
	GetInvitationByInterview(ctx context.Context, interviewID string) (*models.InterviewInvitation, error)
	UpdateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error
	CreateFeedback(ctx context.Context, feedback *models.InterviewFeedback) error
	GetFeedback(ctx context.Context, interviewID, evaluatorID string) (*models.InterviewFeedback, error)
	ListInterviews(ctx context.Context, userID, role string, filter InterviewFilter) ([]models.Interview, error)

	// Notification operations
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetDueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error)
	MarkNotificationsSent(ctx context.Context, ids []string) error
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error

	// Transaction runs fn against a Store bound to one exclusive transactional
	// session. Any error from fn rolls the whole session back.
	Transaction(ctx context.Context, fn func(Store) error) error
}
