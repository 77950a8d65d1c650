package appointment

import (
	"context"
	"time"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/timezone"
)

// ListByDay feeds the waiting board: the day's appointments in queue
// order, line items included.
type ListByDay struct {
	repo domain.Repository
}

func NewListByDay(repo domain.Repository) *ListByDay {
	return &ListByDay{repo: repo}
}

func (uc *ListByDay) Execute(
	ctx context.Context,
	organizationID uint,
	barberID *uint,
	date string,
) ([]models.Appointment, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, httperr.ErrBusiness("organization_not_found")
	}

	day, err := time.ParseInLocation(
		"2006-01-02",
		date,
		timezone.Location(org.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	dayStart, dayEnd := domain.DayBounds(domain.Noon(day))

	return uc.repo.ListAppointmentsForDay(ctx, organizationID, barberID, dayStart, dayEnd)
}
