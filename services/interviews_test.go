package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
)

func newInterviewService(sc *scenario, at time.Time) (*InterviewService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	notifications := NewNotificationService(sc.store, publisher, time.Second)
	notifications.now = fixedClock(at)

	interviews := NewInterviewService(sc.store, notifications, LocalRoomAllocator{})
	interviews.now = fixedClock(at)
	return interviews, publisher
}

func scheduleInput(sc *scenario, at time.Time) ScheduleInterviewInput {
	return ScheduleInterviewInput{
		RequestID:       sc.request.ID,
		FreelancerID:    sc.freelancer.ID,
		Type:            models.InterviewTypeVideo,
		ScheduledAt:     at,
		DurationMinutes: 60,
	}
}

func TestScheduleInterview(t *testing.T) {
	sc := newScenario()
	interviews, publisher := newInterviewService(sc, testBase)

	scheduledAt := testBase.Add(48 * time.Hour)
	interview, err := interviews.Schedule(context.Background(), sc.associate, scheduleInput(sc, scheduledAt))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if interview.Status != models.InterviewStatusScheduled {
		t.Errorf("interview status = %q, expected scheduled", interview.Status)
	}
	if interview.MeetingToken == "" {
		t.Error("video interview should carry a meeting token")
	}

	invitation := interview.Invitation
	if invitation == nil {
		t.Fatal("schedule should create the invitation atomically")
	}
	if invitation.Status != models.InvitationStatusPending {
		t.Errorf("invitation status = %q, expected pending", invitation.Status)
	}
	wantExpiry := scheduledAt.Add(InvitationExpiryWindow)
	if !invitation.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("invitation expires %v, expected %v", invitation.ExpiresAt, wantExpiry)
	}

	// One immediate notification published to the freelancer
	if publisher.count() != 1 {
		t.Errorf("expected 1 published notification, got %d", publisher.count())
	}

	// Three reminders deferred at 24h, 2h and 30m before the interview
	var reminders []time.Time
	for _, notification := range sc.store.notifications {
		if notification.ScheduledFor != nil {
			if notification.IsSent {
				t.Errorf("reminder %s should not be marked sent at creation", notification.Type)
			}
			reminders = append(reminders, *notification.ScheduledFor)
		}
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].Before(reminders[j]) })

	want := []time.Time{
		scheduledAt.Add(-24 * time.Hour),
		scheduledAt.Add(-2 * time.Hour),
		scheduledAt.Add(-30 * time.Minute),
	}
	if len(reminders) != len(want) {
		t.Fatalf("expected %d reminders, got %d", len(want), len(reminders))
	}
	for i := range want {
		if !reminders[i].Equal(want[i]) {
			t.Errorf("reminder %d scheduled for %v, expected %v", i, reminders[i], want[i])
		}
	}
}

func TestScheduleInterviewDropsPastReminders(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)

	// Three hours of lead time: the 24h candidate is already past, the 2h
	// and 30m candidates are still ahead
	scheduledAt := testBase.Add(3 * time.Hour)
	_, err := interviews.Schedule(context.Background(), sc.associate, scheduleInput(sc, scheduledAt))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	var reminders int
	for _, notification := range sc.store.notifications {
		if notification.ScheduledFor == nil {
			continue
		}
		reminders++
		if !notification.ScheduledFor.After(testBase) {
			t.Errorf("reminder %s stored with past fire time %v", notification.Type, notification.ScheduledFor)
		}
	}
	if reminders != 2 {
		t.Errorf("expected 2 reminders, got %d", reminders)
	}
}

func TestScheduleInterviewValidation(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	future := testBase.Add(48 * time.Hour)

	tests := []struct {
		name       string
		caller     *models.User
		mutate     func(*ScheduleInterviewInput)
		wantStatus int
	}{
		{
			name:       "freelancer cannot schedule",
			caller:     sc.freelancer,
			mutate:     func(in *ScheduleInterviewInput) {},
			wantStatus: 403,
		},
		{
			name:       "unknown interview type",
			caller:     sc.associate,
			mutate:     func(in *ScheduleInterviewInput) { in.Type = "carrier_pigeon" },
			wantStatus: 400,
		},
		{
			name:       "scheduled time in the past",
			caller:     sc.associate,
			mutate:     func(in *ScheduleInterviewInput) { in.ScheduledAt = testBase.Add(-time.Hour) },
			wantStatus: 400,
		},
		{
			name:       "non-positive duration",
			caller:     sc.associate,
			mutate:     func(in *ScheduleInterviewInput) { in.DurationMinutes = 0 },
			wantStatus: 400,
		},
		{
			name:       "unknown request",
			caller:     sc.associate,
			mutate:     func(in *ScheduleInterviewInput) { in.RequestID = "d0000000-0000-0000-0000-00000000dead" },
			wantStatus: 404,
		},
		{
			name:       "freelancer without recommendation",
			caller:     sc.associate,
			mutate:     func(in *ScheduleInterviewInput) { in.FreelancerID = "f0000000-0000-0000-0000-00000000dead" },
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := scheduleInput(sc, future)
			tt.mutate(&input)

			_, err := interviews.Schedule(ctx, tt.caller, input)
			if err == nil {
				t.Fatal("Schedule() expected error, got nil")
			}
			if status := HTTPStatus(err); status != tt.wantStatus {
				t.Errorf("Schedule() error = %v maps to %d, expected %d", err, status, tt.wantStatus)
			}
			if len(sc.store.interviews) != 0 {
				t.Errorf("no interview should be written, found %d", len(sc.store.interviews))
			}
		})
	}
}

func TestScheduleInterviewDuplicateOpen(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	input := scheduleInput(sc, testBase.Add(48*time.Hour))
	if _, err := interviews.Schedule(ctx, sc.associate, input); err != nil {
		t.Fatalf("first Schedule() error = %v", err)
	}

	_, err := interviews.Schedule(ctx, sc.associate, input)
	var conflict *ErrConflict
	if !errors.As(err, &conflict) {
		t.Errorf("second Schedule() error = %v, expected ErrConflict", err)
	}
	if len(sc.store.interviews) != 1 {
		t.Errorf("expected 1 interview after duplicate attempt, got %d", len(sc.store.interviews))
	}
}

func TestScheduleInterviewTerminalAllowsNew(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	first, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, testBase.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// A cancelled interview no longer blocks the pair
	first.Status = models.InterviewStatusCancelled

	if _, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, testBase.Add(72*time.Hour))); err != nil {
		t.Errorf("Schedule() after cancellation error = %v", err)
	}
}

func TestScheduleInterviewPhoneHasNoToken(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)

	input := scheduleInput(sc, testBase.Add(48*time.Hour))
	input.Type = models.InterviewTypePhone

	interview, err := interviews.Schedule(context.Background(), sc.associate, input)
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if interview.MeetingToken != "" {
		t.Errorf("phone interview should not carry a meeting token, got %q", interview.MeetingToken)
	}
}

func TestRespondToInvitationAccept(t *testing.T) {
	sc := newScenario()
	interviews, publisher := newInterviewService(sc, testBase)
	ctx := context.Background()

	interview, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, testBase.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	before := publisher.count()

	invitation, err := interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{
		Response: models.InvitationStatusAccepted,
		Notes:    "Looking forward to it",
	})
	if err != nil {
		t.Fatalf("RespondToInvitation() error = %v", err)
	}

	if invitation.Status != models.InvitationStatusAccepted {
		t.Errorf("invitation status = %q, expected accepted", invitation.Status)
	}
	if invitation.RespondedAt == nil {
		t.Error("responded timestamp should be set")
	}
	if sc.store.interviews[interview.ID].Status != models.InterviewStatusScheduled {
		t.Error("accepting should leave the interview scheduled")
	}
	if publisher.count() != before+1 {
		t.Errorf("expected 1 response notification, got %d", publisher.count()-before)
	}
}

func TestRespondToInvitationDeclineCancels(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	interview, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, testBase.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	invitation, err := interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{
		Response: models.InvitationStatusDeclined,
	})
	if err != nil {
		t.Fatalf("RespondToInvitation() error = %v", err)
	}

	if invitation.Status != models.InvitationStatusDeclined {
		t.Errorf("invitation status = %q, expected declined", invitation.Status)
	}
	if sc.store.interviews[interview.ID].Status != models.InterviewStatusCancelled {
		t.Error("declining must cancel the interview in the same operation")
	}
}

func TestRespondToInvitationGuards(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	interview, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, testBase.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	t.Run("invalid response value", func(t *testing.T) {
		_, err := interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{Response: "maybe"})
		if status := HTTPStatus(err); status != 400 {
			t.Errorf("error = %v maps to %d, expected 400", err, status)
		}
	})

	t.Run("unknown interview", func(t *testing.T) {
		_, err := interviews.RespondToInvitation(ctx, sc.freelancer, "d0000000-0000-0000-0000-00000000dead", RespondInvitationInput{Response: models.InvitationStatusAccepted})
		if status := HTTPStatus(err); status != 404 {
			t.Errorf("error = %v maps to %d, expected 404", err, status)
		}
	})

	t.Run("wrong freelancer", func(t *testing.T) {
		other := &models.User{ID: "f0000000-0000-0000-0000-000000000002", Role: models.RoleFreelancer}
		_, err := interviews.RespondToInvitation(ctx, other, interview.ID, RespondInvitationInput{Response: models.InvitationStatusAccepted})
		if status := HTTPStatus(err); status != 403 {
			t.Errorf("error = %v maps to %d, expected 403", err, status)
		}
	})

	t.Run("second response conflicts", func(t *testing.T) {
		if _, err := interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{Response: models.InvitationStatusAccepted}); err != nil {
			t.Fatalf("first response error = %v", err)
		}
		_, err := interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{Response: models.InvitationStatusDeclined})
		if status := HTTPStatus(err); status != 409 {
			t.Errorf("error = %v maps to %d, expected 409", err, status)
		}
		// The first answer stands
		if sc.store.invitations[interview.ID].Status != models.InvitationStatusAccepted {
			t.Error("a rejected second response must not overwrite the first")
		}
	})
}

func TestRespondToInvitationExpired(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	scheduledAt := testBase.Add(48 * time.Hour)
	interview, err := interviews.Schedule(ctx, sc.associate, scheduleInput(sc, scheduledAt))
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// The window closes 24 hours after the scheduled time
	interviews.now = fixedClock(scheduledAt.Add(InvitationExpiryWindow + time.Minute))

	_, err = interviews.RespondToInvitation(ctx, sc.freelancer, interview.ID, RespondInvitationInput{
		Response: models.InvitationStatusAccepted,
	})

	var expired *ErrExpired
	if !errors.As(err, &expired) {
		t.Fatalf("RespondToInvitation() error = %v, expected ErrExpired", err)
	}
	if status := HTTPStatus(err); status != 410 {
		t.Errorf("expired error maps to %d, expected 410", status)
	}

	invitation := sc.store.invitations[interview.ID]
	if invitation.Status != models.InvitationStatusPending {
		t.Errorf("expired response must leave the invitation pending, got %q", invitation.Status)
	}
	if invitation.RespondedAt != nil {
		t.Error("expired response must not record a responded timestamp")
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		ok   bool
	}{
		{"scheduled to in_progress", models.InterviewStatusScheduled, models.InterviewStatusInProgress, true},
		{"scheduled to cancelled", models.InterviewStatusScheduled, models.InterviewStatusCancelled, true},
		{"scheduled to completed skips in_progress", models.InterviewStatusScheduled, models.InterviewStatusCompleted, false},
		{"in_progress to completed", models.InterviewStatusInProgress, models.InterviewStatusCompleted, true},
		{"in_progress to cancelled", models.InterviewStatusInProgress, models.InterviewStatusCancelled, true},
		{"completed is terminal", models.InterviewStatusCompleted, models.InterviewStatusCancelled, false},
		{"cancelled is terminal", models.InterviewStatusCancelled, models.InterviewStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newScenario()
			interviews, _ := newInterviewService(sc, testBase)

			sc.store.interviews["i1"] = &models.Interview{
				ID: "i1", RequestID: sc.request.ID,
				AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
				Type: models.InterviewTypePhone, Status: tt.from,
			}

			_, err := interviews.UpdateStatus(context.Background(), sc.associate, "i1", UpdateStatusInput{Status: tt.to})
			if tt.ok {
				if err != nil {
					t.Fatalf("UpdateStatus() error = %v", err)
				}
				if sc.store.interviews["i1"].Status != tt.to {
					t.Errorf("status = %q, expected %q", sc.store.interviews["i1"].Status, tt.to)
				}
				return
			}

			var conflict *ErrConflict
			if !errors.As(err, &conflict) {
				t.Errorf("UpdateStatus() error = %v, expected ErrConflict", err)
			}
			if sc.store.interviews["i1"].Status != tt.from {
				t.Errorf("rejected transition must not change status, got %q", sc.store.interviews["i1"].Status)
			}
		})
	}
}

func TestUpdateStatusNotesAttribution(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	sc.store.interviews["i1"] = &models.Interview{
		ID: "i1", RequestID: sc.request.ID,
		AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Type: models.InterviewTypePhone, Status: models.InterviewStatusScheduled,
		AssociateNotes: "prepared questions",
	}

	_, err := interviews.UpdateStatus(ctx, sc.freelancer, "i1", UpdateStatusInput{
		Status: models.InterviewStatusInProgress,
		Notes:  "joined the call",
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	interview := sc.store.interviews["i1"]
	if interview.FreelancerNotes != "joined the call" {
		t.Errorf("freelancer notes = %q", interview.FreelancerNotes)
	}
	if interview.AssociateNotes != "prepared questions" {
		t.Error("the other party's notes must not be overwritten")
	}
}

func TestUpdateStatusOutsider(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)

	sc.store.interviews["i1"] = &models.Interview{
		ID: "i1", AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Status: models.InterviewStatusScheduled,
	}

	outsider := &models.User{ID: "a0000000-0000-0000-0000-000000000099", Role: models.RoleAssociate}
	_, err := interviews.UpdateStatus(context.Background(), outsider, "i1", UpdateStatusInput{Status: models.InterviewStatusCancelled})

	var forbidden *ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Errorf("UpdateStatus() error = %v, expected ErrForbidden", err)
	}
}

func TestSubmitFeedback(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	sc.store.interviews["i1"] = &models.Interview{
		ID: "i1", AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Status: models.InterviewStatusCompleted,
	}

	rating := 4
	feedback, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{
		OverallRating:   &rating,
		TechnicalRating: &rating,
		Strengths:       "Strong protocol knowledge",
		Recommendation:  models.FeedbackRecommendHire,
	})
	if err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	if feedback.EvaluatorRole != models.RoleAssociate {
		t.Errorf("evaluator role = %q, expected associate", feedback.EvaluatorRole)
	}

	// The freelancer submits their own assessment independently
	if _, err := interviews.SubmitFeedback(ctx, sc.freelancer, "i1", SubmitFeedbackInput{
		Recommendation: models.FeedbackRecommendMaybe,
	}); err != nil {
		t.Errorf("freelancer SubmitFeedback() error = %v", err)
	}
	if len(sc.store.feedbacks) != 2 {
		t.Errorf("expected 2 feedback rows, got %d", len(sc.store.feedbacks))
	}
}

func TestSubmitFeedbackGuards(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	sc.store.interviews["i1"] = &models.Interview{
		ID: "i1", AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Status: models.InterviewStatusCompleted,
	}
	sc.store.interviews["i2"] = &models.Interview{
		ID: "i2", AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Status: models.InterviewStatusScheduled,
	}

	six := 6
	zero := 0

	t.Run("rating above range", func(t *testing.T) {
		_, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{
			OverallRating:  &six,
			Recommendation: models.FeedbackRecommendHire,
		})
		if status := HTTPStatus(err); status != 400 {
			t.Errorf("error = %v maps to %d, expected 400", err, status)
		}
	})

	t.Run("rating below range", func(t *testing.T) {
		_, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{
			TechnicalRating: &zero,
			Recommendation:  models.FeedbackRecommendHire,
		})
		if status := HTTPStatus(err); status != 400 {
			t.Errorf("error = %v maps to %d, expected 400", err, status)
		}
	})

	t.Run("unknown recommendation", func(t *testing.T) {
		_, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{Recommendation: "strong_hire"})
		if status := HTTPStatus(err); status != 400 {
			t.Errorf("error = %v maps to %d, expected 400", err, status)
		}
	})

	t.Run("interview not completed", func(t *testing.T) {
		_, err := interviews.SubmitFeedback(ctx, sc.associate, "i2", SubmitFeedbackInput{Recommendation: models.FeedbackRecommendHire})
		if status := HTTPStatus(err); status != 409 {
			t.Errorf("error = %v maps to %d, expected 409", err, status)
		}
	})

	t.Run("duplicate per evaluator", func(t *testing.T) {
		if _, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{Recommendation: models.FeedbackRecommendHire}); err != nil {
			t.Fatalf("first SubmitFeedback() error = %v", err)
		}
		_, err := interviews.SubmitFeedback(ctx, sc.associate, "i1", SubmitFeedbackInput{Recommendation: models.FeedbackRecommendNoHire})
		if status := HTTPStatus(err); status != 409 {
			t.Errorf("error = %v maps to %d, expected 409", err, status)
		}
	})

	t.Run("outsider evaluator", func(t *testing.T) {
		outsider := &models.User{ID: "a0000000-0000-0000-0000-000000000099", Role: models.RoleAssociate}
		_, err := interviews.SubmitFeedback(ctx, outsider, "i1", SubmitFeedbackInput{Recommendation: models.FeedbackRecommendHire})
		if status := HTTPStatus(err); status != 403 {
			t.Errorf("error = %v maps to %d, expected 403", err, status)
		}
	})
}

func TestListInterviews(t *testing.T) {
	sc := newScenario()
	interviews, _ := newInterviewService(sc, testBase)
	ctx := context.Background()

	sc.store.interviews["i1"] = &models.Interview{
		ID: "i1", RequestID: sc.request.ID,
		AssociateID: sc.associate.ID, FreelancerID: sc.freelancer.ID,
		Status: models.InterviewStatusScheduled,
	}
	sc.store.interviews["i2"] = &models.Interview{
		ID: "i2", RequestID: "c0000000-0000-0000-0000-000000000002",
		AssociateID: sc.associate.ID, FreelancerID: "f0000000-0000-0000-0000-000000000002",
		Status: models.InterviewStatusCompleted,
	}

	got, err := interviews.ListInterviews(ctx, sc.associate, repository.InterviewFilter{})
	if err != nil {
		t.Fatalf("ListInterviews() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("associate sees %d interviews, expected 2", len(got))
	}

	got, err = interviews.ListInterviews(ctx, sc.freelancer, repository.InterviewFilter{})
	if err != nil {
		t.Fatalf("ListInterviews() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("freelancer sees %d interviews, expected 1", len(got))
	}

	got, err = interviews.ListInterviews(ctx, sc.associate, repository.InterviewFilter{Status: models.InterviewStatusCompleted})
	if err != nil {
		t.Fatalf("ListInterviews() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "i2" {
		t.Errorf("status filter returned %d interviews", len(got))
	}
}
