package appointment

import (
	"context"

	"github.com/salonflow/salon-api/internal/audit"
	domain "github.com/salonflow/salon-api/internal/domain/appointment"
)

// ReleaseHold deletes an unpaid PENDING hold. Explicit cancellation,
// countdown expiry and the delayed worker all funnel through here, so
// the delete tolerates the row already being gone.
type ReleaseHold struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewReleaseHold(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ReleaseHold {
	return &ReleaseHold{
		repo:  repo,
		audit: audit,
	}
}

func (uc *ReleaseHold) Execute(
	ctx context.Context,
	appointmentID uint,
) (bool, error) {

	deleted, err := uc.repo.DeletePendingAppointment(ctx, appointmentID)
	if err != nil {
		return false, err
	}

	if deleted {
		uc.audit.Dispatch(audit.Event{
			Action:   "appointment_hold_released",
			Entity:   "appointment",
			EntityID: &appointmentID,
		})
	}

	return deleted, nil
}
