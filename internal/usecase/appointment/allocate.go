package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/salonflow/salon-api/internal/audit"
	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	infraRepo "github.com/salonflow/salon-api/internal/infra/repository"
	"github.com/salonflow/salon-api/internal/locks"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type AllocateInput struct {
	OrganizationID uint
	BarberID       *uint

	ServiceIDs []uint

	FirstName   string
	PhoneNumber string
	Notes       string

	Date string // "2006-01-02"
}

// ExpiryScheduler enqueues the delayed auto-cancellation of the hold.
type ExpiryScheduler interface {
	ScheduleHoldExpiry(appointmentID uint, delay time.Duration) error
}

// ======================================================
// USE CASE
// ======================================================

// AllocateAppointment assigns the next daily queue position, computes
// the start time by chaining onto the last valid appointment of the
// day, and persists the PENDING hold with its line items.
type AllocateAppointment struct {
	repo   domain.Repository
	lock   *locks.DayLock
	expiry ExpiryScheduler
	audit  *audit.Dispatcher

	now func(tz string) time.Time
}

func NewAllocateAppointment(
	repo domain.Repository,
	lock *locks.DayLock,
	expiry ExpiryScheduler,
	audit *audit.Dispatcher,
) *AllocateAppointment {
	return &AllocateAppointment{
		repo:   repo,
		lock:   lock,
		expiry: expiry,
		audit:  audit,
		now:    timezone.NowIn,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *AllocateAppointment) Execute(
	ctx context.Context,
	in AllocateInput,
) (*models.Appointment, error) {

	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("no_services_selected")
	}

	org, err := uc.repo.GetOrganizationByID(ctx, in.OrganizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	day, err := time.ParseInLocation(
		"2006-01-02",
		in.Date,
		timezone.Location(org.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	day = domain.Noon(day)

	now := uc.now(org.Timezone)
	if day.Before(domain.Noon(now)) {
		return nil, httperr.ErrBusiness("date_in_past")
	}

	// Same-day bookings close at the cutoff hour. Hard rule.
	if domain.SameDay(day, now) && now.Hour() >= domain.BookingCutoffHour {
		return nil, httperr.ErrBusiness("booking_closed_today")
	}

	services, err := uc.repo.ListServices(ctx, in.OrganizationID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, httperr.ErrBusiness("no_services_selected")
	}

	estimated := domain.EstimateDuration(services)

	dayStart, dayEnd := domain.DayBounds(day)

	// Serialize allocation per (organization, day). The unique index on
	// (organization_id, day, order_number) backs this up when the lock
	// is unavailable, so the whole block retries on conflict.
	release, err := uc.lock.Acquire(ctx, in.OrganizationID, day)
	if err != nil {
		return nil, err
	}
	defer release()

	serviceIDs := make([]uint, 0, len(services))
	for _, s := range services {
		serviceIDs = append(serviceIDs, s.ID)
	}

	var ap *models.Appointment

	for attempt := 0; attempt < 3; attempt++ {
		maxOrder, err := uc.repo.MaxOrderNumber(ctx, in.OrganizationID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}

		hour, err := uc.nextHour(ctx, in.OrganizationID, dayStart, dayEnd, now)
		if err != nil {
			return nil, err
		}

		ap = &models.Appointment{
			OrganizationID: in.OrganizationID,
			BarberID:       in.BarberID,
			Day:            day,
			OrderNumber:    maxOrder + 1,
			Hour:           hour,
			EstimatedTime:  estimated,
			Status:         string(domain.StatusPending),
			FirstName:      in.FirstName,
			PhoneNumber:    in.PhoneNumber,
			Notes:          in.Notes,
		}

		err = uc.repo.CreateAppointmentWithServices(ctx, ap, serviceIDs)
		if err == nil {
			break
		}
		if infraRepo.IsUniqueViolation(err) {
			// Lost the race for this order number, recompute.
			ap = nil
			continue
		}
		log.Error().Err(err).Uint("organization_id", in.OrganizationID).Msg("appointment save failed")
		return nil, httperr.ErrBusiness("could_not_save_appointment")
	}

	if ap == nil {
		return nil, httperr.ErrBusiness("could_not_save_appointment")
	}

	if uc.expiry != nil {
		if err := uc.expiry.ScheduleHoldExpiry(ap.ID, domain.HoldLifetime); err != nil {
			// The client countdown still covers expiry; log and move on.
			log.Warn().Err(err).Uint("appointment_id", ap.ID).Msg("could not schedule hold expiry")
		}
	}

	uc.audit.Dispatch(audit.Event{
		OrganizationID: in.OrganizationID,
		Action:         "appointment_hold_created",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata:       map[string]any{"order_number": ap.OrderNumber, "hour": ap.Hour},
	})

	return ap, nil
}

// nextHour chains onto the last valid appointment of the day: any
// non-PENDING appointment counts, and so does a PENDING hold younger
// than the freshness window. Stale holds are ignored so an abandoned
// checkout does not push the whole day back.
func (uc *AllocateAppointment) nextHour(
	ctx context.Context,
	organizationID uint,
	dayStart, dayEnd time.Time,
	now time.Time,
) (string, error) {

	anchor, err := uc.repo.AnchorAppointment(
		ctx,
		organizationID,
		dayStart,
		dayEnd,
		now.Add(-domain.HoldFreshness),
	)
	if err != nil {
		return "", err
	}

	if anchor == nil {
		return domain.DefaultOpeningHour, nil
	}

	return domain.AddMinutes(anchor.Hour, anchor.EstimatedTime)
}
