package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/payments"
	ucAppointment "github.com/salonflow/salon-api/internal/usecase/appointment"
)

// ======================================================
// FAKES
// ======================================================

type fakeAllocator struct {
	mu     sync.Mutex
	ap     *models.Appointment
	err    error
	inputs []ucAppointment.AllocateInput
}

func (f *fakeAllocator) Execute(_ context.Context, in ucAppointment.AllocateInput) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.ap
	return &cp, nil
}

type fakeSlotLister struct {
	slots []string
}

func (f *fakeSlotLister) Execute(_ context.Context, _ ucAppointment.SlotsInput) ([]string, error) {
	return f.slots, nil
}

type fakeReleaser struct {
	mu    sync.Mutex
	ids   []uint
	calls int
}

func (f *fakeReleaser) Execute(_ context.Context, appointmentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ids = append(f.ids, appointmentID)
	// Only the first delete finds the row.
	return f.calls == 1, nil
}

func (f *fakeReleaser) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeConfirmer struct {
	mu     sync.Mutex
	errs   []error // consumed one per call; nil entry means success
	inputs []payments.ConfirmInput
}

func (f *fakeConfirmer) Execute(_ context.Context, in payments.ConfirmInput) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)

	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &models.Transaction{
		ID:            1,
		Status:        models.TransactionPaid,
		AppointmentID: &in.AppointmentID,
	}, nil
}

// ======================================================
// HELPERS
// ======================================================

func heldAppointment() *models.Appointment {
	return &models.Appointment{
		ID:          42,
		OrderNumber: 1,
		Hour:        "09:00",
		Status:      string(domain.StatusPending),
	}
}

type sessionDeps struct {
	alloc   *fakeAllocator
	slots   *fakeSlotLister
	release *fakeReleaser
	confirm *fakeConfirmer
}

func newTestSession(t *testing.T) (*Session, *sessionDeps) {
	t.Helper()
	deps := &sessionDeps{
		alloc:   &fakeAllocator{ap: heldAppointment()},
		slots:   &fakeSlotLister{slots: []string{"09:00", "09:30"}},
		release: &fakeReleaser{},
		confirm: &fakeConfirmer{},
	}
	s := NewSession(1, deps.alloc, deps.slots, deps.release, deps.confirm)
	return s, deps
}

// advanceToSlot walks a session through the happy path up to an armed
// hold.
func advanceToSlot(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SelectServices([]uint{1, 2}))
	require.NoError(t, s.SetClientInfo("Alice", "79123456", "window seat"))
	require.NoError(t, s.ChooseBarber(nil))
	_, err := s.ChooseSlot(context.Background(), "2025-03-11", "09:00")
	require.NoError(t, err)
}

func assertBusiness(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	got, ok := httperr.BusinessCode(err)
	require.True(t, ok, "expected a business error, got %v", err)
	assert.Equal(t, code, got)
}

// ======================================================
// TESTS
// ======================================================

func TestSessionHappyPathToPaid(t *testing.T) {
	s, deps := newTestSession(t)

	require.NoError(t, s.SelectServices([]uint{1, 2}))
	assert.Equal(t, StepClientInfo, s.Step())

	require.NoError(t, s.SetClientInfo("Alice", "79123456", ""))
	assert.Equal(t, StepBarber, s.Step())

	require.NoError(t, s.ChooseBarber(nil))
	assert.Equal(t, StepDateTime, s.Step())

	slots, err := s.AvailableSlots(context.Background(), "2025-03-11")
	require.NoError(t, err)
	assert.NotEmpty(t, slots)
	assert.Equal(t, StepDateTime, s.Step(), "listing slots does not advance the flow")

	ap, err := s.ChooseSlot(context.Background(), "2025-03-11", "09:00")
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, s.Step())
	assert.Equal(t, ap.ID, s.AppointmentID())
	assert.False(t, s.Deadline().IsZero(), "the hold countdown is armed")

	// Client info flowed into the allocation.
	require.Len(t, deps.alloc.inputs, 1)
	assert.Equal(t, "Alice", deps.alloc.inputs[0].FirstName)
	assert.Equal(t, []uint{1, 2}, deps.alloc.inputs[0].ServiceIDs)

	tx, err := s.Pay(context.Background(), "79123456", "lumicash")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPaid, tx.Status)

	assert.Equal(t, OutcomePaid, s.Outcome())
	assert.True(t, s.Deadline().IsZero(), "payment disarms the countdown")
	assert.Zero(t, deps.release.count(), "a paid hold is never released")
}

func TestSessionStepGating(t *testing.T) {
	s, _ := newTestSession(t)

	assertBusiness(t, s.SetClientInfo("Alice", "79123456", ""), "invalid_step")
	assertBusiness(t, s.ChooseBarber(nil), "invalid_step")

	_, err := s.ChooseSlot(context.Background(), "2025-03-11", "09:00")
	assertBusiness(t, err, "invalid_step")

	_, err = s.Pay(context.Background(), "79123456", "")
	assertBusiness(t, err, "invalid_step")
}

func TestSessionInputValidation(t *testing.T) {
	s, _ := newTestSession(t)

	assertBusiness(t, s.SelectServices(nil), "no_services_selected")
	require.NoError(t, s.SelectServices([]uint{1}))

	assertBusiness(t, s.SetClientInfo("Al", "79123456", ""), "invalid_name")
	assertBusiness(t, s.SetClientInfo("Alice", "not-a-phone", ""), "invalid_phone")
	require.NoError(t, s.SetClientInfo("Alice", "79123456", ""))

	require.NoError(t, s.ChooseBarber(nil))

	_, err := s.ChooseSlot(context.Background(), "", "09:00")
	assertBusiness(t, err, "missing_date_or_slot")
}

func TestSessionBack(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.SelectServices([]uint{1}))
	require.NoError(t, s.SetClientInfo("Alice", "79123456", ""))
	assert.Equal(t, StepBarber, s.Step())

	require.NoError(t, s.Back())
	assert.Equal(t, StepClientInfo, s.Step())

	require.NoError(t, s.Back())
	assert.Equal(t, StepServices, s.Step())

	assertBusiness(t, s.Back(), "already_at_first_step")
}

func TestSessionExpiryReleasesHoldOnce(t *testing.T) {
	s, deps := newTestSession(t)
	s.holdLifetime = 20 * time.Millisecond

	advanceToSlot(t, s)

	assert.Eventually(t, func() bool {
		return s.Outcome() == OutcomeExpired
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StepServices, s.Step(), "expiry resets the flow")
	assert.Zero(t, s.AppointmentID())
	assert.True(t, s.Deadline().IsZero())

	assert.Eventually(t, func() bool {
		return deps.release.count() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []uint{42}, deps.release.ids)

	// A second firing is a no-op: the outcome is already set.
	s.expire()
	assert.Equal(t, 1, deps.release.count())
}

func TestSessionCancelReleasesHold(t *testing.T) {
	s, deps := newTestSession(t)
	s.holdLifetime = 20 * time.Millisecond

	advanceToSlot(t, s)

	require.NoError(t, s.Cancel(context.Background()))
	assert.Equal(t, OutcomeCancelled, s.Outcome())
	assert.Equal(t, 1, deps.release.count())

	// The countdown was disarmed: waiting past the lifetime must not
	// release again.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, deps.release.count())
}

func TestSessionCancelWithoutHold(t *testing.T) {
	s, deps := newTestSession(t)

	require.NoError(t, s.Cancel(context.Background()))
	assert.Equal(t, OutcomeCancelled, s.Outcome())
	assert.Zero(t, deps.release.count())
}

func TestSessionCancelAfterPayment(t *testing.T) {
	s, deps := newTestSession(t)

	advanceToSlot(t, s)
	_, err := s.Pay(context.Background(), "79123456", "")
	require.NoError(t, err)

	assertBusiness(t, s.Cancel(context.Background()), "already_paid")
	assert.Zero(t, deps.release.count())
}

func TestSessionPayFailureKeepsHoldArmed(t *testing.T) {
	s, deps := newTestSession(t)
	deps.confirm.errs = []error{httperr.ErrBusiness("payment_failed")}

	advanceToSlot(t, s)

	_, err := s.Pay(context.Background(), "79123456", "")
	assertBusiness(t, err, "payment_failed")

	assert.Equal(t, StepConfirmation, s.Step(), "a failed payment keeps the flow on confirmation")
	assert.Equal(t, OutcomeNone, s.Outcome())
	assert.False(t, s.Deadline().IsZero(), "the countdown keeps running")

	// Retry against the same hold succeeds.
	tx, err := s.Pay(context.Background(), "79123456", "")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionPaid, tx.Status)
	assert.Equal(t, OutcomePaid, s.Outcome())
}

func TestSessionPayRejectsInvalidPhone(t *testing.T) {
	s, deps := newTestSession(t)
	advanceToSlot(t, s)

	_, err := s.Pay(context.Background(), "123", "")
	assertBusiness(t, err, "invalid_phone")
	assert.Empty(t, deps.confirm.inputs, "nothing reaches the gateway")
}

func TestSessionCloseOnlyStopsCountdown(t *testing.T) {
	s, deps := newTestSession(t)
	s.holdLifetime = 20 * time.Millisecond

	advanceToSlot(t, s)
	s.Close()

	time.Sleep(60 * time.Millisecond)

	// Closing the UI must not delete a hold that might be getting paid
	// through another channel; the delayed server task covers true
	// abandonment.
	assert.Zero(t, deps.release.count())
	assert.Equal(t, OutcomeNone, s.Outcome())
}
