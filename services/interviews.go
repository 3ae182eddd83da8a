package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
)

// InvitationExpiryWindow is how long after the scheduled time the freelancer
// can still respond to an invitation.
const InvitationExpiryWindow = 24 * time.Hour

// allowedTransitions is the interview state machine. Terminal states carry no
// outgoing edges, so transitions are monotonic.
var allowedTransitions = map[string][]string{
	models.InterviewStatusScheduled:  {models.InterviewStatusInProgress, models.InterviewStatusCancelled},
	models.InterviewStatusInProgress: {models.InterviewStatusCompleted, models.InterviewStatusCancelled},
}

// InterviewService owns interviews, their invitations and feedback. Every
// multi-step write runs inside one exclusive transaction that re-checks the
// relevant invariant before writing, so interleaved associate/freelancer
// actions resolve deterministically.
type InterviewService struct {
	store         repository.Store
	notifications *NotificationService
	signaling     RoomAllocator
	now           func() time.Time
}

type ScheduleInterviewInput struct {
	RequestID         string    `json:"request_id"`
	FreelancerID      string    `json:"freelancer_id"`
	Type              string    `json:"type"`
	ScheduledAt       time.Time `json:"scheduled_at"`
	DurationMinutes   int       `json:"duration_minutes"`
	Location          string    `json:"location,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	InvitationMessage string    `json:"invitation_message,omitempty"`
}

type RespondInvitationInput struct {
	Response string `json:"response"`
	Notes    string `json:"notes,omitempty"`
}

type UpdateStatusInput struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type SubmitFeedbackInput struct {
	OverallRating       *int   `json:"overall_rating,omitempty"`
	TechnicalRating     *int   `json:"technical_rating,omitempty"`
	CommunicationRating *int   `json:"communication_rating,omitempty"`
	ProfessionalRating  *int   `json:"professional_rating,omitempty"`
	Strengths           string `json:"strengths,omitempty"`
	Weaknesses          string `json:"weaknesses,omitempty"`
	Comments            string `json:"comments,omitempty"`
	Recommendation      string `json:"recommendation"`
}

func NewInterviewService(store repository.Store, notifications *NotificationService, signaling RoomAllocator) *InterviewService {
	return &InterviewService{
		store:         store,
		notifications: notifications,
		signaling:     signaling,
		now:           time.Now,
	}
}

// Schedule creates an interview and its paired invitation atomically. Video
// interviews get an opaque meeting-room token from the signaling collaborator;
// the token is stored verbatim. Notifications fire after commit and never
// roll a successful schedule back.
func (s *InterviewService) Schedule(ctx context.Context, caller *models.User, input ScheduleInterviewInput) (*models.Interview, error) {
	if caller.Role != models.RoleAssociate {
		return nil, NewErrForbidden("only associates can schedule interviews")
	}

	switch input.Type {
	case models.InterviewTypeVideo, models.InterviewTypePhone, models.InterviewTypeInPerson:
	default:
		return nil, NewErrInvalid(fmt.Sprintf("interview type %q is not one of video, phone, in_person", input.Type))
	}

	now := s.now()
	if !input.ScheduledAt.After(now) {
		return nil, NewErrInvalid("scheduled time must be in the future")
	}
	if input.DurationMinutes <= 0 {
		return nil, NewErrInvalid("duration must be positive")
	}

	interview := &models.Interview{
		RequestID:       input.RequestID,
		AssociateID:     caller.ID,
		FreelancerID:    input.FreelancerID,
		Type:            input.Type,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Location:        input.Location,
		AssociateNotes:  input.Notes,
		Status:          models.InterviewStatusScheduled,
	}

	// Room allocation talks to the external signaling collaborator, so it
	// happens before the transaction opens.
	if input.Type == models.InterviewTypeVideo {
		token, err := s.signaling.AllocateRoomToken(ctx)
		if err != nil {
			return nil, NewErrDependency(err)
		}
		interview.MeetingToken = token
	}

	var requestTitle string
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		request, err := tx.GetRequestByID(ctx, input.RequestID)
		if err != nil {
			return NewErrDependency(err)
		}
		if request == nil {
			return NewErrNotFound("request", input.RequestID)
		}
		if request.AssociateID != caller.ID {
			return NewErrForbidden("request does not belong to the caller")
		}
		requestTitle = request.Title

		recommendation, err := tx.GetRecommendation(ctx, input.RequestID, input.FreelancerID)
		if err != nil {
			return NewErrDependency(err)
		}
		if recommendation == nil {
			return NewErrNotFound("recommendation for freelancer", input.FreelancerID)
		}

		open, err := tx.GetOpenInterview(ctx, input.RequestID, input.FreelancerID)
		if err != nil {
			return NewErrDependency(err)
		}
		if open != nil {
			return NewErrConflict(fmt.Sprintf("an interview for this freelancer is already %s", open.Status))
		}

		if err := tx.CreateInterview(ctx, interview); err != nil {
			return NewErrDependency(err)
		}

		invitation := &models.InterviewInvitation{
			InterviewID: interview.ID,
			Message:     input.InvitationMessage,
			Status:      models.InvitationStatusPending,
			ExpiresAt:   input.ScheduledAt.Add(InvitationExpiryWindow),
		}
		if err := tx.CreateInvitation(ctx, invitation); err != nil {
			return NewErrDependency(err)
		}
		interview.Invitation = invitation

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort.
	s.notifications.NotifyInterviewScheduled(ctx, interview, requestTitle)
	s.notifications.ScheduleReminders(ctx, interview, requestTitle)

	slog.Info("Interview scheduled", "interview_id", interview.ID, "request_id", interview.RequestID, "freelancer_id", interview.FreelancerID, "type", interview.Type)
	return interview, nil
}

// RespondToInvitation records the freelancer's single accept/decline answer.
// Declining forces the interview to cancelled in the same transaction; no
// state exists where the invitation is declined and the interview is not
// cancelled. A response after the expiry window leaves the invitation pending.
func (s *InterviewService) RespondToInvitation(ctx context.Context, caller *models.User, interviewID string, input RespondInvitationInput) (*models.InterviewInvitation, error) {
	if input.Response != models.InvitationStatusAccepted && input.Response != models.InvitationStatusDeclined {
		return nil, NewErrInvalid(fmt.Sprintf("response %q is not one of accepted, declined", input.Response))
	}

	var (
		invitation *models.InterviewInvitation
		interview  *models.Interview
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		interview, err = tx.GetInterviewByID(ctx, interviewID)
		if err != nil {
			return NewErrDependency(err)
		}
		if interview == nil {
			return NewErrNotFound("interview", interviewID)
		}
		if interview.FreelancerID != caller.ID {
			return NewErrForbidden("invitation does not belong to the caller")
		}

		invitation, err = tx.GetInvitationByInterview(ctx, interviewID)
		if err != nil {
			return NewErrDependency(err)
		}
		if invitation == nil {
			return NewErrNotFound("invitation for interview", interviewID)
		}

		if invitation.Status != models.InvitationStatusPending {
			return NewErrConflict(fmt.Sprintf("invitation has already been %s", invitation.Status))
		}
		if s.now().After(invitation.ExpiresAt) {
			return NewErrExpired("the response window for this invitation has closed")
		}

		respondedAt := s.now()
		invitation.Status = input.Response
		invitation.Notes = input.Notes
		invitation.RespondedAt = &respondedAt
		if err := tx.UpdateInvitation(ctx, invitation); err != nil {
			return NewErrDependency(err)
		}

		if input.Response == models.InvitationStatusDeclined {
			interview.Status = models.InterviewStatusCancelled
			if err := tx.UpdateInterview(ctx, interview); err != nil {
				return NewErrDependency(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyInvitationResponded(ctx, interview, input.Response)

	slog.Info("Invitation response recorded", "interview_id", interviewID, "freelancer_id", caller.ID, "response", input.Response)
	return invitation, nil
}

// UpdateStatus moves an interview along the state machine. Notes are
// attributed to the caller's role-specific field, never overwriting the other
// party's notes.
func (s *InterviewService) UpdateStatus(ctx context.Context, caller *models.User, interviewID string, input UpdateStatusInput) (*models.Interview, error) {
	switch input.Status {
	case models.InterviewStatusInProgress, models.InterviewStatusCompleted, models.InterviewStatusCancelled:
	default:
		return nil, NewErrInvalid(fmt.Sprintf("status %q is not one of in_progress, completed, cancelled", input.Status))
	}

	var interview *models.Interview
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		interview, err = tx.GetInterviewByID(ctx, interviewID)
		if err != nil {
			return NewErrDependency(err)
		}
		if interview == nil {
			return NewErrNotFound("interview", interviewID)
		}
		if interview.AssociateID != caller.ID && interview.FreelancerID != caller.ID {
			return NewErrForbidden("interview does not belong to the caller")
		}

		if !transitionAllowed(interview.Status, input.Status) {
			return NewErrConflict(fmt.Sprintf("interview cannot move from %s to %s", interview.Status, input.Status))
		}

		interview.Status = input.Status
		if input.Notes != "" {
			if caller.Role == models.RoleAssociate {
				interview.AssociateNotes = input.Notes
			} else {
				interview.FreelancerNotes = input.Notes
			}
		}

		if err := tx.UpdateInterview(ctx, interview); err != nil {
			return NewErrDependency(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyInterviewStatus(ctx, interview, caller)

	slog.Info("Interview status updated", "interview_id", interviewID, "status", input.Status, "caller_id", caller.ID)
	return interview, nil
}

// SubmitFeedback records one evaluator's assessment of a completed interview.
func (s *InterviewService) SubmitFeedback(ctx context.Context, caller *models.User, interviewID string, input SubmitFeedbackInput) (*models.InterviewFeedback, error) {
	switch input.Recommendation {
	case models.FeedbackRecommendHire, models.FeedbackRecommendNoHire, models.FeedbackRecommendMaybe:
	default:
		return nil, NewErrInvalid(fmt.Sprintf("recommendation %q is not one of hire, no_hire, maybe", input.Recommendation))
	}

	ratings := map[string]*int{
		"overall_rating":       input.OverallRating,
		"technical_rating":     input.TechnicalRating,
		"communication_rating": input.CommunicationRating,
		"professional_rating":  input.ProfessionalRating,
	}
	for name, rating := range ratings {
		if rating != nil && (*rating < 1 || *rating > 5) {
			return nil, NewErrInvalid(fmt.Sprintf("%s must be between 1 and 5", name))
		}
	}

	feedback := &models.InterviewFeedback{
		InterviewID:         interviewID,
		EvaluatorID:         caller.ID,
		EvaluatorRole:       caller.Role,
		OverallRating:       input.OverallRating,
		TechnicalRating:     input.TechnicalRating,
		CommunicationRating: input.CommunicationRating,
		ProfessionalRating:  input.ProfessionalRating,
		Strengths:           input.Strengths,
		Weaknesses:          input.Weaknesses,
		Comments:            input.Comments,
		Recommendation:      input.Recommendation,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		interview, err := tx.GetInterviewByID(ctx, interviewID)
		if err != nil {
			return NewErrDependency(err)
		}
		if interview == nil {
			return NewErrNotFound("interview", interviewID)
		}
		if interview.AssociateID != caller.ID && interview.FreelancerID != caller.ID {
			return NewErrForbidden("interview does not belong to the caller")
		}
		if interview.Status != models.InterviewStatusCompleted {
			return NewErrConflict(fmt.Sprintf("feedback requires a completed interview, status is %s", interview.Status))
		}

		existing, err := tx.GetFeedback(ctx, interviewID, caller.ID)
		if err != nil {
			return NewErrDependency(err)
		}
		if existing != nil {
			return NewErrConflict("feedback has already been submitted for this interview")
		}

		if err := tx.CreateFeedback(ctx, feedback); err != nil {
			return NewErrDependency(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Interview feedback submitted", "interview_id", interviewID, "evaluator_id", caller.ID, "recommendation", input.Recommendation)
	return feedback, nil
}

// ListInterviews returns the caller's interviews with feedback joined per
// interview. The role selects the query shape once at the entry point.
func (s *InterviewService) ListInterviews(ctx context.Context, caller *models.User, filter repository.InterviewFilter) ([]models.Interview, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	interviews, err := s.store.ListInterviews(ctx, caller.ID, caller.Role, filter)
	if err != nil {
		return nil, NewErrDependency(err)
	}
	return interviews, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
