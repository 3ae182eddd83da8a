package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigbridge/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GORMStore struct {
	db *gorm.DB
}

var _ Store = (*GORMStore)(nil)

func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMStore) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.FreelanceRequest{},
		&models.Recommendation{},
		&models.RecommendationResponse{},
		&models.HireRecord{},
		&models.Interview{},
		&models.InterviewInvitation{},
		&models.InterviewFeedback{},
		&models.Notification{},
	)
}

// Transaction runs fn against a Store bound to a single transaction. GORM
// rolls back automatically when fn returns an error.
func (r *GORMStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMStore{db: tx})
	})
}

// User operations
func (r *GORMStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return nil
}

func (r *GORMStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

// Token operations
func (r *GORMStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMStore) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Request and recommendation operations
func (r *GORMStore) CreateRequest(ctx context.Context, request *models.FreelanceRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		slog.Error("Failed to create request", "error", err)
		return err
	}
	slog.Info("Request created", "request_id", request.ID, "associate_id", request.AssociateID)
	return nil
}

func (r *GORMStore) CreateRecommendation(ctx context.Context, recommendation *models.Recommendation) error {
	if err := r.db.WithContext(ctx).Create(recommendation).Error; err != nil {
		slog.Error("Failed to create recommendation", "error", err)
		return err
	}
	slog.Info("Recommendation created", "recommendation_id", recommendation.ID, "request_id", recommendation.RequestID, "freelancer_id", recommendation.FreelancerID)
	return nil
}

func (r *GORMStore) GetRequestByID(ctx context.Context, id string) (*models.FreelanceRequest, error) {
	var request models.FreelanceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get request by ID", "error", err, "request_id", id)
		return nil, err
	}
	return &request, nil
}

func (r *GORMStore) GetRecommendation(ctx context.Context, requestID, freelancerID string) (*models.Recommendation, error) {
	var recommendation models.Recommendation
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND freelancer_id = ?", requestID, freelancerID).
		First(&recommendation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get recommendation", "error", err, "request_id", requestID, "freelancer_id", freelancerID)
		return nil, err
	}
	return &recommendation, nil
}

// UpsertRecommendationResponse keeps one response row per (request, freelancer)
// pair, updating the status in place when the row already exists.
func (r *GORMStore) UpsertRecommendationResponse(ctx context.Context, requestID, freelancerID, status string) error {
	response := models.RecommendationResponse{
		RequestID:    requestID,
		FreelancerID: freelancerID,
		Status:       status,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "freelancer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": status, "updated_at": time.Now()}),
	}).Create(&response).Error
	if err != nil {
		slog.Error("Failed to upsert recommendation response", "error", err, "request_id", requestID, "freelancer_id", freelancerID)
		return fmt.Errorf("failed to upsert recommendation response: %w", err)
	}
	slog.Info("Recommendation response upserted", "request_id", requestID, "freelancer_id", freelancerID, "status", status)
	return nil
}

// Hire operations

// CompleteExpiredHires closes every active hire whose expected end date is
// strictly in the past, in one conditional bulk update. Two concurrent calls
// converge on the same end state; the second updates zero rows.
func (r *GORMStore) CompleteExpiredHires(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.HireRecord{}).
		Where("status = ? AND expected_end_date IS NOT NULL AND expected_end_date < ?", models.HireStatusActive, asOf).
		Updates(map[string]interface{}{
			"status":          models.HireStatusCompleted,
			"actual_end_date": asOf,
		})
	if result.Error != nil {
		slog.Error("Failed to complete expired hires", "error", result.Error)
		return 0, fmt.Errorf("failed to complete expired hires: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetBlockingHires returns the active hires that make a freelancer
// unavailable: status active with no expected end date or one still ahead.
func (r *GORMStore) GetBlockingHires(ctx context.Context, freelancerID string, asOf time.Time) ([]models.HireRecord, error) {
	var hires []models.HireRecord
	err := r.db.WithContext(ctx).
		Where("freelancer_id = ? AND status = ? AND (expected_end_date IS NULL OR expected_end_date > ?)",
			freelancerID, models.HireStatusActive, asOf).
		Find(&hires).Error
	if err != nil {
		slog.Error("Failed to get blocking hires", "error", err, "freelancer_id", freelancerID)
		return nil, fmt.Errorf("failed to get blocking hires: %w", err)
	}
	return hires, nil
}

func (r *GORMStore) GetActiveHireForRequest(ctx context.Context, requestID, freelancerID string) (*models.HireRecord, error) {
	var hire models.HireRecord
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND freelancer_id = ? AND status = ?", requestID, freelancerID, models.HireStatusActive).
		First(&hire).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get active hire for request", "error", err, "request_id", requestID, "freelancer_id", freelancerID)
		return nil, err
	}
	return &hire, nil
}

func (r *GORMStore) CreateHire(ctx context.Context, hire *models.HireRecord) error {
	if err := r.db.WithContext(ctx).Create(hire).Error; err != nil {
		slog.Error("Failed to create hire record", "error", err)
		return err
	}
	slog.Info("Hire record created", "hire_id", hire.ID, "request_id", hire.RequestID, "freelancer_id", hire.FreelancerID)
	return nil
}

func (r *GORMStore) ListHires(ctx context.Context, userID, role string, limit, offset int) ([]models.HireRecord, error) {
	var hires []models.HireRecord
	query := r.db.WithContext(ctx).Preload("Request")

	// Role selects the query shape once; associates see hires they made,
	// freelancers see hires made for them.
	if role == models.RoleAssociate {
		query = query.Where("associate_id = ?", userID)
	} else {
		query = query.Where("freelancer_id = ?", userID)
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&hires).Error
	if err != nil {
		slog.Error("Failed to list hires", "error", err, "user_id", userID, "role", role)
		return nil, fmt.Errorf("failed to list hires: %w", err)
	}
	return hires, nil
}

// Interview operations
func (r *GORMStore) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		slog.Error("Failed to create interview", "error", err)
		return err
	}
	slog.Info("Interview created", "interview_id", interview.ID, "request_id", interview.RequestID, "freelancer_id", interview.FreelancerID)
	return nil
}

func (r *GORMStore) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview by ID", "error", err, "interview_id", id)
		return nil, err
	}
	return &interview, nil
}

// GetOpenInterview returns the non-terminal interview for a (request,
// freelancer) pair, if one exists.
func (r *GORMStore) GetOpenInterview(ctx context.Context, requestID, freelancerID string) (*models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND freelancer_id = ? AND status IN ?",
			requestID, freelancerID,
			[]string{models.InterviewStatusScheduled, models.InterviewStatusInProgress}).
		First(&interview).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get open interview", "error", err, "request_id", requestID, "freelancer_id", freelancerID)
		return nil, err
	}
	return &interview, nil
}

func (r *GORMStore) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Save(interview).Error; err != nil {
		slog.Error("Failed to update interview", "error", err, "interview_id", interview.ID)
		return err
	}
	slog.Info("Interview updated", "interview_id", interview.ID, "status", interview.Status)
	return nil
}

func (r *GORMStore) CreateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		slog.Error("Failed to create interview invitation", "error", err)
		return err
	}
	slog.Info("Interview invitation created", "invitation_id", invitation.ID, "interview_id", invitation.InterviewID)
	return nil
}

func (r *GORMStore) GetInvitationByInterview(ctx context.Context, interviewID string) (*models.InterviewInvitation, error) {
	var invitation models.InterviewInvitation
	if err := r.db.WithContext(ctx).Where("interview_id = ?", interviewID).First(&invitation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get invitation by interview", "error", err, "interview_id", interviewID)
		return nil, err
	}
	return &invitation, nil
}

func (r *GORMStore) UpdateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error {
	if err := r.db.WithContext(ctx).Save(invitation).Error; err != nil {
		slog.Error("Failed to update interview invitation", "error", err, "invitation_id", invitation.ID)
		return err
	}
	slog.Info("Interview invitation updated", "invitation_id", invitation.ID, "status", invitation.Status)
	return nil
}

func (r *GORMStore) CreateFeedback(ctx context.Context, feedback *models.InterviewFeedback) error {
	if err := r.db.WithContext(ctx).Create(feedback).Error; err != nil {
		slog.Error("Failed to create interview feedback", "error", err)
		return err
	}
	slog.Info("Interview feedback created", "feedback_id", feedback.ID, "interview_id", feedback.InterviewID, "evaluator_id", feedback.EvaluatorID)
	return nil
}

func (r *GORMStore) GetFeedback(ctx context.Context, interviewID, evaluatorID string) (*models.InterviewFeedback, error) {
	var feedback models.InterviewFeedback
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND evaluator_id = ?", interviewID, evaluatorID).
		First(&feedback).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get interview feedback", "error", err, "interview_id", interviewID, "evaluator_id", evaluatorID)
		return nil, err
	}
	return &feedback, nil
}

func (r *GORMStore) ListInterviews(ctx context.Context, userID, role string, filter InterviewFilter) ([]models.Interview, error) {
	var interviews []models.Interview
	query := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Invitation").
		Preload("Feedbacks")

	if role == models.RoleAssociate {
		query = query.Where("associate_id = ?", userID)
	} else {
		query = query.Where("freelancer_id = ?", userID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestID != "" {
		query = query.Where("request_id = ?", filter.RequestID)
	}

	err := query.Order("scheduled_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&interviews).Error
	if err != nil {
		slog.Error("Failed to list interviews", "error", err, "user_id", userID, "role", role)
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return interviews, nil
}
