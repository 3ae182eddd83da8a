package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"gorm.io/datatypes"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
	ws "github.com/gigbridge/backend/websocket"
)

// reminderOffsets are the candidate lead times before an interview's scheduled
// time. Candidates whose computed time has already passed at scheduling time
// are dropped, never stored.
var reminderOffsets = []struct {
	Offset   time.Duration
	Type     string
	Template string
}{
	{24 * time.Hour, models.NotificationReminder24h, "Your interview for %q starts in 24 hours"},
	{2 * time.Hour, models.NotificationReminder2h, "Your interview for %q starts in 2 hours"},
	{30 * time.Minute, models.NotificationReminder30m, "Your interview for %q starts in 30 minutes"},
}

// NotificationService persists notifications and dispatches them over the
// real-time channel. Immediate notifications are published at creation time;
// deferred ones are picked up by the flush loop once due. Delivery is
// at-most-once-effort: attempted rows are marked sent whether or not the
// recipient was connected, and remain queryable through the listing API.
type NotificationService struct {
	store     repository.Store
	publisher ws.Publisher
	interval  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

func NewNotificationService(store repository.Store, publisher ws.Publisher, flushInterval time.Duration) *NotificationService {
	if publisher == nil {
		publisher = ws.NoopPublisher{}
	}
	if flushInterval <= 0 {
		flushInterval = 15 * time.Second
	}
	return &NotificationService{
		store:     store,
		publisher: publisher,
		interval:  flushInterval,
		now:       time.Now,
	}
}

// NotifyInterviewScheduled creates one immediate notification for the
// freelancer. Failures are logged and swallowed; they never invalidate the
// committed schedule.
func (s *NotificationService) NotifyInterviewScheduled(ctx context.Context, interview *models.Interview, requestTitle string) {
	s.createImmediate(ctx, &models.Notification{
		RecipientID: interview.FreelancerID,
		SenderID:    &interview.AssociateID,
		Type:        models.NotificationInterviewScheduled,
		Title:       "Interview scheduled",
		Message:     fmt.Sprintf("You have been invited to a %s interview for %q on %s", interview.Type, requestTitle, interview.ScheduledAt.Format(time.RFC1123)),
		Data:        interviewPayload(interview),
	})
}

// ScheduleReminders creates a deferred notification for every reminder
// candidate still in the future relative to now. Past candidates are
// silently dropped.
func (s *NotificationService) ScheduleReminders(ctx context.Context, interview *models.Interview, requestTitle string) {
	now := s.now()

	for _, candidate := range reminderOffsets {
		fireAt := interview.ScheduledAt.Add(-candidate.Offset)
		if !fireAt.After(now) {
			slog.Debug("Reminder candidate already past, skipped", "interview_id", interview.ID, "type", candidate.Type)
			continue
		}

		notification := &models.Notification{
			RecipientID:  interview.FreelancerID,
			SenderID:     &interview.AssociateID,
			Type:         candidate.Type,
			Title:        "Interview reminder",
			Message:      fmt.Sprintf(candidate.Template, requestTitle),
			Data:         interviewPayload(interview),
			ScheduledFor: &fireAt,
		}
		if err := s.store.CreateNotification(ctx, notification); err != nil {
			slog.Error("Failed to schedule interview reminder", "error", err, "interview_id", interview.ID, "type", candidate.Type)
		}
	}
}

// NotifyInvitationResponded tells the associate how the freelancer answered.
func (s *NotificationService) NotifyInvitationResponded(ctx context.Context, interview *models.Interview, response string) {
	s.createImmediate(ctx, &models.Notification{
		RecipientID: interview.AssociateID,
		SenderID:    &interview.FreelancerID,
		Type:        models.NotificationInvitationResponse,
		Title:       "Invitation " + response,
		Message:     fmt.Sprintf("The freelancer has %s the interview invitation", response),
		Data:        interviewPayload(interview),
	})
}

// NotifyInterviewStatus tells the counterparty about a status change.
func (s *NotificationService) NotifyInterviewStatus(ctx context.Context, interview *models.Interview, actor *models.User) {
	recipient := interview.FreelancerID
	if actor.ID == interview.FreelancerID {
		recipient = interview.AssociateID
	}

	s.createImmediate(ctx, &models.Notification{
		RecipientID: recipient,
		SenderID:    &actor.ID,
		Type:        models.NotificationInterviewUpdated,
		Title:       "Interview " + interview.Status,
		Message:     fmt.Sprintf("The interview status changed to %s", interview.Status),
		Data:        interviewPayload(interview),
	})
}

// NotifyHireCreated tells the freelancer they were hired.
func (s *NotificationService) NotifyHireCreated(ctx context.Context, hire *models.HireRecord, associate *models.User) {
	payload, _ := json.Marshal(map[string]string{
		"hire_id":    hire.ID,
		"request_id": hire.RequestID,
	})

	s.createImmediate(ctx, &models.Notification{
		RecipientID: hire.FreelancerID,
		SenderID:    &associate.ID,
		Type:        models.NotificationHireCreated,
		Title:       "You were hired",
		Message:     fmt.Sprintf("You have been hired for %q", hire.ProjectTitle),
		Data:        datatypes.JSON(payload),
	})
}

// ListNotifications returns the recipient's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	notifications, err := s.store.ListNotifications(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewErrDependency(err)
	}
	return notifications, nil
}

// MarkRead marks one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.store.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		return NewErrNotFound("notification", notificationID)
	}
	return nil
}

// StartFlushLoop starts the background dispatcher. A second call while
// running is a no-op.
func (s *NotificationService) StartFlushLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("Notification flush loop already running")
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})

	go s.flushLoop(s.stopChan)
	slog.Info("Notification flush loop started", "interval", s.interval)
}

// StopFlushLoop stops the background dispatcher.
func (s *NotificationService) StopFlushLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopChan)
	slog.Info("Notification flush loop stopped")
}

func (s *NotificationService) flushLoop(stop <-chan struct{}) {
	ticker := jitterbug.New(s.interval, &jitterbug.Norm{Stdev: 500 * time.Millisecond})
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.FlushDue(context.Background()); err != nil {
				slog.Error("Notification flush tick failed", "error", err)
			}
		case <-stop:
			return
		}
	}
}

// FlushDue pushes every due unsent notification to the real-time channel and
// marks all attempted rows sent, connected recipient or not. A missed live
// push is not retried here; the notification stays queryable via the listing
// interface.
func (s *NotificationService) FlushDue(ctx context.Context) (int, error) {
	due, err := s.store.GetDueNotifications(ctx, s.now())
	if err != nil {
		return 0, NewErrDependency(err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(due))
	for i := range due {
		s.publisher.Publish(due[i].RecipientID, &due[i])
		ids = append(ids, due[i].ID)
	}

	if err := s.store.MarkNotificationsSent(ctx, ids); err != nil {
		return 0, NewErrDependency(err)
	}

	slog.Info("Due notifications flushed", "count", len(ids))
	return len(ids), nil
}

// createImmediate persists and publishes a notification in one best-effort
// pass. Errors are logged, never surfaced to the committed business outcome.
func (s *NotificationService) createImmediate(ctx context.Context, notification *models.Notification) {
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		slog.Error("Failed to create notification", "error", err, "recipient_id", notification.RecipientID, "type", notification.Type)
		return
	}

	s.publisher.Publish(notification.RecipientID, notification)

	if err := s.store.MarkNotificationsSent(ctx, []string{notification.ID}); err != nil {
		slog.Error("Failed to mark notification sent", "error", err, "notification_id", notification.ID)
	}
}

func interviewPayload(interview *models.Interview) datatypes.JSON {
	payload, err := json.Marshal(map[string]string{
		"interview_id": interview.ID,
		"request_id":   interview.RequestID,
		"scheduled_at": interview.ScheduledAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}
