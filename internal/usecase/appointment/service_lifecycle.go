package appointment

import (
	"context"

	"github.com/salonflow/salon-api/internal/audit"
	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/timezone"
)

// Line items progress independently of the parent appointment and of
// each other: staff starts and completes each service on its own,
// recording who did it and when.

// ======================================================
// START
// ======================================================

type StartService struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewStartService(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *StartService {
	return &StartService{
		repo:  repo,
		audit: audit,
	}
}

func (uc *StartService) Execute(
	ctx context.Context,
	organizationID uint,
	appointmentServiceID uint,
	barberID uint,
) (*models.AppointmentService, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	item, err := uc.repo.GetAppointmentService(ctx, organizationID, appointmentServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_item_not_found")
	}

	if item.StartedAt != nil {
		return nil, httperr.ErrBusiness("service_already_started")
	}

	now := timezone.NowIn(org.Timezone)
	item.BarberID = &barberID
	item.StartedAt = &now

	if err := uc.repo.UpdateAppointmentService(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		UserID:         &barberID,
		Action:         "service_started",
		Entity:         "appointment_service",
		EntityID:       &item.ID,
	})

	return item, nil
}

// ======================================================
// COMPLETE
// ======================================================

type CompleteService struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCompleteService(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CompleteService {
	return &CompleteService{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CompleteService) Execute(
	ctx context.Context,
	organizationID uint,
	appointmentServiceID uint,
	barberID uint,
) (*models.AppointmentService, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	item, err := uc.repo.GetAppointmentService(ctx, organizationID, appointmentServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_item_not_found")
	}

	// A service cannot be completed before it is started.
	if item.StartedAt == nil {
		return nil, httperr.ErrBusiness("service_not_started")
	}
	if item.EndedAt != nil {
		return nil, httperr.ErrBusiness("service_already_completed")
	}

	now := timezone.NowIn(org.Timezone)
	item.EndedAt = &now

	if err := uc.repo.UpdateAppointmentService(ctx, item); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		UserID:         &barberID,
		Action:         "service_completed",
		Entity:         "appointment_service",
		EntityID:       &item.ID,
	})

	return item, nil
}
