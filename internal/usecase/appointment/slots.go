package appointment

import (
	"context"
	"time"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/timezone"
)

type SlotsInput struct {
	OrganizationID uint
	BarberID       *uint

	// ServiceIDs size the requested window; empty means one grid step.
	ServiceIDs []uint

	Date string // "2006-01-02"
}

// ListSlots produces the bookable start times for a day on a fixed
// 30-minute grid, excluding every candidate whose window overlaps an
// existing appointment. A nil barber filter is conservative: any
// appointment blocks the slot.
type ListSlots struct {
	repo domain.Repository
}

func NewListSlots(repo domain.Repository) *ListSlots {
	return &ListSlots{repo: repo}
}

func (uc *ListSlots) Execute(
	ctx context.Context,
	in SlotsInput,
) ([]string, error) {

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

	av, err := uc.repo.GetAvailability(ctx, in.OrganizationID)
	if err != nil {
		return nil, err
	}

	// No template, or closed that weekday: nothing bookable.
	if av == nil || !av.OpenOn(day.Weekday()) {
		return []string{}, nil
	}

	duration := domain.SlotIntervalMinutes
	if len(in.ServiceIDs) > 0 {
		services, err := uc.repo.ListServices(ctx, in.OrganizationID, in.ServiceIDs)
		if err != nil {
			return nil, err
		}
		if est := domain.EstimateDuration(services); est > 0 {
			duration = est
		}
	}

	dayStart, dayEnd := domain.DayBounds(day)
	existing, err := uc.repo.ListAppointmentsForDay(
		ctx,
		in.OrganizationID,
		in.BarberID,
		dayStart,
		dayEnd,
	)
	if err != nil {
		return nil, err
	}

	type window struct{ start, dur int }
	taken := make([]window, 0, len(existing))
	for _, ap := range existing {
		start, err := domain.ParseHour(ap.Hour)
		if err != nil {
			continue
		}
		taken = append(taken, window{start: start, dur: ap.EstimatedTime})
	}

	slots := []string{}
	for cur := av.OpeningTime; cur+duration <= av.ClosingTime; cur += domain.SlotIntervalMinutes {
		conflict := false
		for _, w := range taken {
			if domain.Overlaps(cur, duration, w.start, w.dur) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, domain.FormatHour(cur))
		}
	}

	return slots, nil
}
