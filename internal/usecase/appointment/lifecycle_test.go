package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/models"
)

func TestAdvanceStatusWalksTheBoard(t *testing.T) {
	repo := bookingRepo()
	day := domain.Noon(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	ap := repo.addAppointment(testAppointment(day, 1, "09:00", 30, domain.StatusConfirmed, monday10am))

	uc := NewAdvanceStatus(repo, nil)

	got, err := uc.Execute(context.Background(), 1, 7, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusInChair), got.Status)

	got, err = uc.Execute(context.Background(), 1, 7, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), got.Status)

	_, err = uc.Execute(context.Background(), 1, 7, ap.ID)
	assertBusiness(t, err, "no_further_transition")
}

func TestAdvanceStatusNeverPromotesPending(t *testing.T) {
	repo := bookingRepo()
	day := domain.Noon(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	ap := repo.addAppointment(testAppointment(day, 1, "09:00", 30, domain.StatusPending, monday10am))

	uc := NewAdvanceStatus(repo, nil)

	_, err := uc.Execute(context.Background(), 1, 7, ap.ID)
	assertBusiness(t, err, "no_further_transition")
}

func TestAdvanceStatusUnknownAppointment(t *testing.T) {
	repo := bookingRepo()
	uc := NewAdvanceStatus(repo, nil)

	_, err := uc.Execute(context.Background(), 1, 7, 42)
	assertBusiness(t, err, "appointment_not_found")
}

func TestServiceLifecycle(t *testing.T) {
	repo := bookingRepo()
	day := domain.Noon(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	ap := repo.addAppointment(testAppointment(day, 1, "09:00", 30, domain.StatusConfirmed, monday10am))
	item := repo.addItem(models.AppointmentService{AppointmentID: ap.ID, ServiceID: 1})

	start := NewStartService(repo, nil)
	complete := NewCompleteService(repo, nil)

	// Completing before starting is rejected.
	_, err := complete.Execute(context.Background(), 1, item.ID, 7)
	assertBusiness(t, err, "service_not_started")

	got, err := start.Execute(context.Background(), 1, item.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.BarberID)
	assert.Equal(t, uint(7), *got.BarberID)

	_, err = start.Execute(context.Background(), 1, item.ID, 7)
	assertBusiness(t, err, "service_already_started")

	got, err = complete.Execute(context.Background(), 1, item.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)

	_, err = complete.Execute(context.Background(), 1, item.ID, 7)
	assertBusiness(t, err, "service_already_completed")
}

func TestReleaseHoldIsIdempotent(t *testing.T) {
	repo := bookingRepo()
	day := domain.Noon(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	ap := repo.addAppointment(testAppointment(day, 1, "09:00", 30, domain.StatusPending, monday10am))
	repo.addItem(models.AppointmentService{AppointmentID: ap.ID, ServiceID: 1})

	uc := NewReleaseHold(repo, nil)

	deleted, err := uc.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, repo.appointments)
	assert.Empty(t, repo.items, "line items go with the hold")

	// Countdown expiry and the delayed worker may both fire.
	deleted, err = uc.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestReleaseHoldLeavesConfirmedAlone(t *testing.T) {
	repo := bookingRepo()
	day := domain.Noon(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	ap := repo.addAppointment(testAppointment(day, 1, "09:00", 30, domain.StatusConfirmed, monday10am))

	uc := NewReleaseHold(repo, nil)

	deleted, err := uc.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, repo.appointments, 1)
}
