package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
)

// ContractService owns hire-record state: it reconciles wall-clock expiration,
// answers availability queries and creates new engagements. The store is the
// sole arbiter of the single-active-engagement invariant, so every write
// re-checks its preconditions inside the transaction that performs it.
type ContractService struct {
	store         repository.Store
	notifications *NotificationService
	now           func() time.Time
}

type CreateHireInput struct {
	RequestID       string     `json:"request_id"`
	FreelancerID    string     `json:"freelancer_id"`
	ProjectTitle    string     `json:"project_title"`
	Rate            float64    `json:"rate"`
	ContractPath    string     `json:"contract_path"`
	StartDate       time.Time  `json:"start_date"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`
}

type BlockingHire struct {
	HireID          string     `json:"hire_id"`
	ProjectTitle    string     `json:"project_title"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`
}

type Availability struct {
	FreelancerID string         `json:"freelancer_id"`
	Available    bool           `json:"available"`
	Blocking     []BlockingHire `json:"blocking,omitempty"`
}

func NewContractService(store repository.Store, notifications *NotificationService) *ContractService {
	return &ContractService{
		store:         store,
		notifications: notifications,
		now:           time.Now,
	}
}

// ReconcileExpired completes every active hire whose expected end date has
// passed, setting the actual end date to the current date. The store performs
// this as one conditional bulk update, so concurrent calls are harmless and a
// repeated call updates zero rows.
func (s *ContractService) ReconcileExpired(ctx context.Context) (int64, error) {
	today := s.today()

	count, err := s.store.CompleteExpiredHires(ctx, today)
	if err != nil {
		return 0, NewErrDependency(err)
	}

	if count > 0 {
		slog.Info("Expired hire records reconciled", "count", count, "as_of", today)
	}
	return count, nil
}

// CheckAvailability reconciles expirations first, then reports whether the
// freelancer has any active engagement blocking a new hire. Blocking records
// carry the project title and end date for user-facing messaging.
func (s *ContractService) CheckAvailability(ctx context.Context, freelancerID string) (*Availability, error) {
	if _, err := s.ReconcileExpired(ctx); err != nil {
		return nil, err
	}

	blocking, err := s.store.GetBlockingHires(ctx, freelancerID, s.now())
	if err != nil {
		return nil, NewErrDependency(err)
	}

	availability := &Availability{
		FreelancerID: freelancerID,
		Available:    len(blocking) == 0,
	}
	for _, hire := range blocking {
		availability.Blocking = append(availability.Blocking, BlockingHire{
			HireID:          hire.ID,
			ProjectTitle:    hire.ProjectTitle,
			ExpectedEndDate: hire.ExpectedEndDate,
		})
	}

	return availability, nil
}

// CreateHire creates an engagement inside one exclusive transaction. Every
// precondition is verified on the transactional store; any violation rolls
// the whole operation back with nothing written.
func (s *ContractService) CreateHire(ctx context.Context, caller *models.User, input CreateHireInput) (*models.HireRecord, error) {
	if caller.Role != models.RoleAssociate {
		return nil, NewErrForbidden("only associates can hire freelancers")
	}
	if input.ContractPath == "" {
		return nil, NewErrInvalid("a stored contract document reference is required")
	}
	if input.ProjectTitle == "" {
		return nil, NewErrInvalid("project title is required")
	}
	if input.Rate <= 0 {
		return nil, NewErrInvalid("rate must be positive")
	}

	// Freshen expirations so the availability check below sees current state.
	if _, err := s.ReconcileExpired(ctx); err != nil {
		return nil, err
	}

	hire := &models.HireRecord{
		RequestID:       input.RequestID,
		AssociateID:     caller.ID,
		FreelancerID:    input.FreelancerID,
		ProjectTitle:    input.ProjectTitle,
		Rate:            input.Rate,
		ContractPath:    input.ContractPath,
		StartDate:       input.StartDate,
		ExpectedEndDate: input.ExpectedEndDate,
		Status:          models.HireStatusActive,
	}
	if hire.StartDate.IsZero() {
		hire.StartDate = s.today()
	}

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

		recommendation, err := tx.GetRecommendation(ctx, input.RequestID, input.FreelancerID)
		if err != nil {
			return NewErrDependency(err)
		}
		if recommendation == nil {
			return NewErrNotFound("recommendation for freelancer", input.FreelancerID)
		}

		existing, err := tx.GetActiveHireForRequest(ctx, input.RequestID, input.FreelancerID)
		if err != nil {
			return NewErrDependency(err)
		}
		if existing != nil {
			return NewErrConflict(fmt.Sprintf("freelancer is already hired for this request (hire %s)", existing.ID))
		}

		blocking, err := tx.GetBlockingHires(ctx, input.FreelancerID, s.now())
		if err != nil {
			return NewErrDependency(err)
		}
		if len(blocking) > 0 {
			first := blocking[0]
			if first.ExpectedEndDate != nil {
				return NewErrConflict(fmt.Sprintf("freelancer has an active engagement %q until %s",
					first.ProjectTitle, first.ExpectedEndDate.Format("2006-01-02")))
			}
			return NewErrConflict(fmt.Sprintf("freelancer has an open-ended active engagement %q", first.ProjectTitle))
		}

		if err := tx.CreateHire(ctx, hire); err != nil {
			return NewErrDependency(err)
		}

		if err := tx.UpsertRecommendationResponse(ctx, input.RequestID, input.FreelancerID, models.ResponseStatusHired); err != nil {
			return NewErrDependency(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, best-effort: a failed notification never invalidates the hire.
	s.notifications.NotifyHireCreated(ctx, hire, caller)

	slog.Info("Hire created", "hire_id", hire.ID, "request_id", hire.RequestID, "associate_id", caller.ID, "freelancer_id", hire.FreelancerID)
	return hire, nil
}

// ListHires returns the caller's engagements, newest first.
func (s *ContractService) ListHires(ctx context.Context, caller *models.User, limit, offset int) ([]models.HireRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	hires, err := s.store.ListHires(ctx, caller.ID, caller.Role, limit, offset)
	if err != nil {
		return nil, NewErrDependency(err)
	}
	return hires, nil
}

// today returns the current date with the time component dropped.
func (s *ContractService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
