package appointment

import (
	"context"

	"github.com/salonflow/salon-api/internal/audit"
	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
)

// AdvanceStatus moves an appointment one step along the waiting board:
// CONFIRMED -> INCHAIR -> COMPLETED. Promotion out of PENDING is
// payment-gated and never happens here.
type AdvanceStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewAdvanceStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *AdvanceStatus {
	return &AdvanceStatus{
		repo:  repo,
		audit: audit,
	}
}

func (uc *AdvanceStatus) Execute(
	ctx context.Context,
	organizationID uint,
	userID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, organizationID, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	next, ok := domain.NextStatus(domain.Status(ap.Status))
	if !ok {
		return nil, httperr.ErrBusiness("no_further_transition")
	}

	ap.Status = string(next)
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		UserID:         &userID,
		Action:         "appointment_status_advanced",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata:       map[string]any{"status": ap.Status},
	})

	return ap, nil
}
