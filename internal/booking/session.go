// Package booking drives the customer-facing flow as an explicit
// session state machine: services, client info, barber, date/time,
// payment-gated confirmation. One session owns at most one PENDING
// hold, and every mutation of that hold goes through the session.
package booking

import (
	"context"
	"sync"
	"time"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
	"github.com/salonflow/salon-api/internal/payments"
	ucAppointment "github.com/salonflow/salon-api/internal/usecase/appointment"
	"github.com/salonflow/salon-api/internal/validators"
)

// ======================================================
// STEPS & OUTCOMES
// ======================================================

type Step string

const (
	StepServices     Step = "services"
	StepClientInfo   Step = "client_info"
	StepBarber       Step = "barber"
	StepDateTime     Step = "date_time"
	StepConfirmation Step = "confirmation"
)

var stepOrder = []Step{
	StepServices,
	StepClientInfo,
	StepBarber,
	StepDateTime,
	StepConfirmation,
}

type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomePaid      Outcome = "paid"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeExpired   Outcome = "expired"
)

// ======================================================
// COLLABORATORS
// ======================================================

type Allocator interface {
	Execute(ctx context.Context, in ucAppointment.AllocateInput) (*models.Appointment, error)
}

type SlotLister interface {
	Execute(ctx context.Context, in ucAppointment.SlotsInput) ([]string, error)
}

type HoldReleaser interface {
	Execute(ctx context.Context, appointmentID uint) (bool, error)
}

type PaymentConfirmer interface {
	Execute(ctx context.Context, in payments.ConfirmInput) (*models.Transaction, error)
}

// ======================================================
// SESSION
// ======================================================

type Session struct {
	mu sync.Mutex

	organizationID uint

	step    Step
	outcome Outcome

	serviceIDs  []uint
	firstName   string
	phoneNumber string
	notes       string
	barberID    *uint
	date        string
	slot        string

	appointmentID uint
	deadline      time.Time
	countdown     *time.Timer

	allocate Allocator
	slots    SlotLister
	release  HoldReleaser
	confirm  PaymentConfirmer

	holdLifetime time.Duration
}

func NewSession(
	organizationID uint,
	allocate Allocator,
	slots SlotLister,
	release HoldReleaser,
	confirm PaymentConfirmer,
) *Session {
	return &Session{
		organizationID: organizationID,
		step:           StepServices,
		allocate:       allocate,
		slots:          slots,
		release:        release,
		confirm:        confirm,
		holdLifetime:   domain.HoldLifetime,
	}
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func (s *Session) AppointmentID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointmentID
}

// Deadline is the moment the current hold auto-expires; zero when no
// hold is armed.
func (s *Session) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// ======================================================
// FORWARD TRANSITIONS
// ======================================================

func (s *Session) SelectServices(serviceIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepServices {
		return httperr.ErrBusiness("invalid_step")
	}
	if len(serviceIDs) == 0 {
		return httperr.ErrBusiness("no_services_selected")
	}

	s.serviceIDs = append([]uint(nil), serviceIDs...)
	s.outcome = OutcomeNone
	s.step = StepClientInfo
	return nil
}

func (s *Session) SetClientInfo(firstName, phoneNumber, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepClientInfo {
		return httperr.ErrBusiness("invalid_step")
	}
	if !validators.IsClientName(firstName) {
		return httperr.ErrBusiness("invalid_name")
	}
	if !validators.IsBookingPhone(phoneNumber) {
		return httperr.ErrBusiness("invalid_phone")
	}

	s.firstName = firstName
	s.phoneNumber = phoneNumber
	s.notes = notes
	s.step = StepBarber
	return nil
}

// ChooseBarber accepts nil: "any barber" is a first-class choice.
func (s *Session) ChooseBarber(barberID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepBarber {
		return httperr.ErrBusiness("invalid_step")
	}

	s.barberID = barberID
	s.step = StepDateTime
	return nil
}

// AvailableSlots lists the bookable start times for a date without
// advancing the flow.
func (s *Session) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	s.mu.Lock()
	in := ucAppointment.SlotsInput{
		OrganizationID: s.organizationID,
		BarberID:       s.barberID,
		ServiceIDs:     append([]uint(nil), s.serviceIDs...),
		Date:           date,
	}
	s.mu.Unlock()

	return s.slots.Execute(ctx, in)
}

// ChooseSlot creates the PENDING hold and arms the countdown. From
// here the customer has the hold lifetime to pay.
func (s *Session) ChooseSlot(ctx context.Context, date, slot string) (*models.Appointment, error) {
	s.mu.Lock()
	if s.step != StepDateTime {
		s.mu.Unlock()
		return nil, httperr.ErrBusiness("invalid_step")
	}
	if date == "" || slot == "" {
		s.mu.Unlock()
		return nil, httperr.ErrBusiness("missing_date_or_slot")
	}

	in := ucAppointment.AllocateInput{
		OrganizationID: s.organizationID,
		BarberID:       s.barberID,
		ServiceIDs:     append([]uint(nil), s.serviceIDs...),
		FirstName:      s.firstName,
		PhoneNumber:    s.phoneNumber,
		Notes:          s.notes,
		Date:           date,
	}
	s.mu.Unlock()

	ap, err := s.allocate.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.date = date
	s.slot = slot
	s.appointmentID = ap.ID
	s.deadline = time.Now().Add(s.holdLifetime)
	s.countdown = time.AfterFunc(s.holdLifetime, s.expire)
	s.step = StepConfirmation

	return ap, nil
}

// Pay runs the gateway flow against the session's hold. On failure the
// hold and the countdown survive, so the customer can retry.
func (s *Session) Pay(ctx context.Context, payerPhone, provider string) (*models.Transaction, error) {
	s.mu.Lock()
	if s.step != StepConfirmation || s.appointmentID == 0 {
		s.mu.Unlock()
		return nil, httperr.ErrBusiness("invalid_step")
	}
	if !validators.IsBookingPhone(payerPhone) {
		s.mu.Unlock()
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	in := payments.ConfirmInput{
		OrganizationID: s.organizationID,
		AppointmentID:  s.appointmentID,
		PayerPhone:     payerPhone,
		Provider:       provider,
	}
	s.mu.Unlock()

	tx, err := s.confirm.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCountdown()
	s.outcome = OutcomePaid
	return tx, nil
}

// ======================================================
// BACKWARD & TERMINAL
// ======================================================

// Back steps the flow one screen back. It never touches persisted
// state: an armed hold stays armed and keeps its countdown.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, st := range stepOrder {
		if st == s.step {
			if i == 0 {
				return httperr.ErrBusiness("already_at_first_step")
			}
			s.step = stepOrder[i-1]
			return nil
		}
	}
	return httperr.ErrBusiness("invalid_step")
}

// Cancel deletes the hold, if any, and ends the session.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.outcome == OutcomePaid {
		s.mu.Unlock()
		return httperr.ErrBusiness("already_paid")
	}
	id := s.appointmentID
	s.stopCountdown()
	s.outcome = OutcomeCancelled
	s.mu.Unlock()

	if id == 0 {
		return nil
	}

	// The hold may already be gone (expiry raced us); that is fine.
	_, err := s.release.Execute(ctx, id)
	return err
}

// Close tears the session down on navigation-away. It only stops the
// countdown: a dangling timer must never delete an appointment that
// got paid after the UI disappeared. The delayed server-side task
// still expires a genuinely abandoned hold.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdown()
}

// expire fires when the countdown reaches zero: the hold is deleted
// and the flow resets to the first step. Running twice, or racing the
// explicit cancel, is harmless because the delete is idempotent.
func (s *Session) expire() {
	s.mu.Lock()
	if s.outcome != OutcomeNone {
		s.mu.Unlock()
		return
	}
	id := s.appointmentID
	s.outcome = OutcomeExpired
	s.appointmentID = 0
	s.deadline = time.Time{}
	s.step = StepServices
	s.mu.Unlock()

	if id != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = s.release.Execute(ctx, id)
	}
}

func (s *Session) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	s.deadline = time.Time{}
}
