package services

import (
	"errors"
	"sync"
	"time"

	"github.com/gigbridge/backend/models"
)

var errNotificationMissing = errors.New("notification not found")

// recordingPublisher captures real-time pushes for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	UserID  string
	Payload interface{}
}

func (p *recordingPublisher) Publish(userID string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Payload: payload})
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// scenario is a store pre-seeded with an associate, a freelancer and an open
// request carrying a recommendation for that freelancer.
type scenario struct {
	store      *fakeStore
	associate  *models.User
	freelancer *models.User
	request    *models.FreelanceRequest
}

func newScenario() *scenario {
	store := newFakeStore()

	associate := &models.User{
		ID:       "a0000000-0000-0000-0000-000000000001",
		Email:    "associate@example.com",
		FullName: "Ava Associate",
		Role:     models.RoleAssociate,
	}
	freelancer := &models.User{
		ID:       "f0000000-0000-0000-0000-000000000001",
		Email:    "freelancer@example.com",
		FullName: "Felix Freelancer",
		Role:     models.RoleFreelancer,
	}
	store.users[associate.ID] = associate
	store.users[freelancer.ID] = freelancer

	request := &models.FreelanceRequest{
		ID:          "c0000000-0000-0000-0000-000000000001",
		AssociateID: associate.ID,
		Title:       "Payments Dashboard Revamp",
		Status:      models.RequestStatusOpen,
	}
	store.requests[request.ID] = request
	store.recs = append(store.recs, &models.Recommendation{
		ID:           "b0000000-0000-0000-0000-000000000001",
		RequestID:    request.ID,
		FreelancerID: freelancer.ID,
	})

	return &scenario{
		store:      store,
		associate:  associate,
		freelancer: freelancer,
		request:    request,
	}
}

// fixedClock returns a deterministic now function.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

var testBase = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
