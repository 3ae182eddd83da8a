package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
)

// fakeStore is an in-memory Store for exercising service logic without a
// database. Transaction runs the callback against the same instance; service
// preconditions fail before any write, so rollback is not simulated.
type fakeStore struct {
	users         map[string]*models.User
	tokens        map[string]*models.RefreshToken
	requests      map[string]*models.FreelanceRequest
	recs          []*models.Recommendation
	responses     []*models.RecommendationResponse
	hires         map[string]*models.HireRecord
	interviews    map[string]*models.Interview
	invitations   map[string]*models.InterviewInvitation
	feedbacks     []*models.InterviewFeedback
	notifications map[string]*models.Notification
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*models.User),
		tokens:        make(map[string]*models.RefreshToken),
		requests:      make(map[string]*models.FreelanceRequest),
		hires:         make(map[string]*models.HireRecord),
		interviews:    make(map[string]*models.Interview),
		invitations:   make(map[string]*models.InterviewInvitation),
		notifications: make(map[string]*models.Notification),
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return f.tokens[token], nil
}

func (f *fakeStore) DeleteRefreshToken(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeStore) DeleteAllUserTokens(ctx context.Context, userID string) error {
	for key, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, key)
		}
	}
	return nil
}

func (f *fakeStore) CreateRequest(ctx context.Context, request *models.FreelanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	f.requests[request.ID] = request
	return nil
}

func (f *fakeStore) CreateRecommendation(ctx context.Context, recommendation *models.Recommendation) error {
	if recommendation.ID == "" {
		recommendation.ID = uuid.New().String()
	}
	f.recs = append(f.recs, recommendation)
	return nil
}

func (f *fakeStore) GetRequestByID(ctx context.Context, id string) (*models.FreelanceRequest, error) {
	return f.requests[id], nil
}

func (f *fakeStore) GetRecommendation(ctx context.Context, requestID, freelancerID string) (*models.Recommendation, error) {
	for _, rec := range f.recs {
		if rec.RequestID == requestID && rec.FreelancerID == freelancerID {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpsertRecommendationResponse(ctx context.Context, requestID, freelancerID, status string) error {
	for _, response := range f.responses {
		if response.RequestID == requestID && response.FreelancerID == freelancerID {
			response.Status = status
			return nil
		}
	}
	f.responses = append(f.responses, &models.RecommendationResponse{
		ID:           uuid.New().String(),
		RequestID:    requestID,
		FreelancerID: freelancerID,
		Status:       status,
	})
	return nil
}

func (f *fakeStore) CompleteExpiredHires(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	for _, hire := range f.hires {
		if hire.Status == models.HireStatusActive && hire.ExpectedEndDate != nil && hire.ExpectedEndDate.Before(asOf) {
			hire.Status = models.HireStatusCompleted
			end := asOf
			hire.ActualEndDate = &end
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) GetBlockingHires(ctx context.Context, freelancerID string, asOf time.Time) ([]models.HireRecord, error) {
	var blocking []models.HireRecord
	for _, hire := range f.hires {
		if hire.FreelancerID != freelancerID || hire.Status != models.HireStatusActive {
			continue
		}
		if hire.ExpectedEndDate == nil || hire.ExpectedEndDate.After(asOf) {
			blocking = append(blocking, *hire)
		}
	}
	return blocking, nil
}

func (f *fakeStore) GetActiveHireForRequest(ctx context.Context, requestID, freelancerID string) (*models.HireRecord, error) {
	for _, hire := range f.hires {
		if hire.RequestID == requestID && hire.FreelancerID == freelancerID && hire.Status == models.HireStatusActive {
			return hire, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateHire(ctx context.Context, hire *models.HireRecord) error {
	if hire.ID == "" {
		hire.ID = uuid.New().String()
	}
	f.hires[hire.ID] = hire
	return nil
}

func (f *fakeStore) ListHires(ctx context.Context, userID, role string, limit, offset int) ([]models.HireRecord, error) {
	var hires []models.HireRecord
	for _, hire := range f.hires {
		if role == models.RoleAssociate && hire.AssociateID != userID {
			continue
		}
		if role == models.RoleFreelancer && hire.FreelancerID != userID {
			continue
		}
		hires = append(hires, *hire)
	}
	return hires, nil
}

func (f *fakeStore) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if interview.ID == "" {
		interview.ID = uuid.New().String()
	}
	f.interviews[interview.ID] = interview
	return nil
}

func (f *fakeStore) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	return f.interviews[id], nil
}

func (f *fakeStore) GetOpenInterview(ctx context.Context, requestID, freelancerID string) (*models.Interview, error) {
	for _, interview := range f.interviews {
		if interview.RequestID == requestID && interview.FreelancerID == freelancerID && !interview.IsTerminal() {
			return interview, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	f.interviews[interview.ID] = interview
	return nil
}

func (f *fakeStore) CreateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	f.invitations[invitation.InterviewID] = invitation
	return nil
}

func (f *fakeStore) GetInvitationByInterview(ctx context.Context, interviewID string) (*models.InterviewInvitation, error) {
	return f.invitations[interviewID], nil
}

func (f *fakeStore) UpdateInvitation(ctx context.Context, invitation *models.InterviewInvitation) error {
	f.invitations[invitation.InterviewID] = invitation
	return nil
}

func (f *fakeStore) CreateFeedback(ctx context.Context, feedback *models.InterviewFeedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	f.feedbacks = append(f.feedbacks, feedback)
	return nil
}

func (f *fakeStore) GetFeedback(ctx context.Context, interviewID, evaluatorID string) (*models.InterviewFeedback, error) {
	for _, feedback := range f.feedbacks {
		if feedback.InterviewID == interviewID && feedback.EvaluatorID == evaluatorID {
			return feedback, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListInterviews(ctx context.Context, userID, role string, filter repository.InterviewFilter) ([]models.Interview, error) {
	var interviews []models.Interview
	for _, interview := range f.interviews {
		if role == models.RoleAssociate && interview.AssociateID != userID {
			continue
		}
		if role == models.RoleFreelancer && interview.FreelancerID != userID {
			continue
		}
		if filter.Status != "" && interview.Status != filter.Status {
			continue
		}
		if filter.RequestID != "" && interview.RequestID != filter.RequestID {
			continue
		}
		interviews = append(interviews, *interview)
	}
	return interviews, nil
}

func (f *fakeStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	f.notifications[notification.ID] = notification
	return nil
}

func (f *fakeStore) GetDueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	var due []models.Notification
	for _, notification := range f.notifications {
		if notification.IsSent || notification.ScheduledFor == nil {
			continue
		}
		if !notification.ScheduledFor.After(now) {
			due = append(due, *notification)
		}
	}
	return due, nil
}

func (f *fakeStore) MarkNotificationsSent(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if notification, ok := f.notifications[id]; ok {
			notification.IsSent = true
		}
	}
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range f.notifications {
		if notification.RecipientID == userID {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkNotificationRead(ctx context.Context, id, userID string) error {
	notification, ok := f.notifications[id]
	if !ok || notification.RecipientID != userID {
		return errNotificationMissing
	}
	notification.IsRead = true
	return nil
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return fn(f)
}
