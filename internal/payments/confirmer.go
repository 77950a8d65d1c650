package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonflow/salon-api/internal/audit"
	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/models"
)

// Store is the slice of persistence the confirmer needs. The gorm
// appointment repository satisfies it.
type Store interface {
	GetAppointment(ctx context.Context, organizationID, appointmentID uint) (*models.Appointment, error)
	ConfirmAppointment(ctx context.Context, appointmentID uint) error
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
}

type ConfirmInput struct {
	OrganizationID uint
	AppointmentID  uint
	PayerPhone     string
	PayerEmail     string
	Provider       string
}

// Confirmer runs the payment leg of a booking: pending transaction,
// invoice, handset push, bounded status poll. On settlement the hold is
// promoted to CONFIRMED. On any failure the hold stays PENDING so the
// payer can retry against the same appointment.
type Confirmer struct {
	store   Store
	gateway Gateway
	poller  *Poller
	audit   *audit.Dispatcher
}

func NewConfirmer(
	store Store,
	gateway Gateway,
	poller *Poller,
	audit *audit.Dispatcher,
) *Confirmer {
	return &Confirmer{
		store:   store,
		gateway: gateway,
		poller:  poller,
		audit:   audit,
	}
}

func (c *Confirmer) Execute(
	ctx context.Context,
	in ConfirmInput,
) (*models.Transaction, error) {

	ap, err := c.store.GetAppointment(ctx, in.OrganizationID, in.AppointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if domain.Status(ap.Status) != domain.StatusPending {
		return nil, httperr.ErrBusiness("appointment_already_confirmed")
	}

	amount := 0.0
	for _, item := range ap.Services {
		amount += item.Service.Price
	}

	tx := &models.Transaction{
		OrganizationID: in.OrganizationID,
		Amount:         amount,
		Reference:      uuid.NewString(),
		Type:           models.TransactionTypeAppointment,
		Status:         models.TransactionPending,
		AppointmentID:  &ap.ID,
	}
	if err := c.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	billID, err := c.gateway.CreateInvoice(ctx, Invoice{
		Amount:            amount,
		PayerPhone:        in.PayerPhone,
		PayerEmail:        in.PayerEmail,
		Description:       fmt.Sprintf("Appointment #%d for %s", ap.OrderNumber, ap.FirstName),
		ExternalReference: tx.Reference,
	})
	if err != nil {
		return nil, c.fail(ctx, tx, "invoice creation failed", err)
	}

	tx.BillID = billID
	if err := c.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if err := c.gateway.PushPaymentPrompt(ctx, billID, in.PayerPhone, in.Provider); err != nil {
		return nil, c.fail(ctx, tx, "payment push failed", err)
	}

	state, err := c.poller.Wait(ctx, billID)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err != nil || !state.Settled() {
		return nil, c.fail(ctx, tx, "payment did not settle", err)
	}

	// Settlement side effects run once per transaction: the status
	// update and the PENDING->CONFIRMED promotion are both no-ops when
	// re-observed.
	tx.Status = models.TransactionPaid
	if err := c.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	if err := c.store.ConfirmAppointment(ctx, ap.ID); err != nil {
		return nil, err
	}

	c.audit.Dispatch(audit.Event{
		OrganizationID: in.OrganizationID,
		Action:         "appointment_paid",
		Entity:         "appointment",
		EntityID:       &ap.ID,
		Metadata:       map[string]any{"reference": tx.Reference, "amount": amount},
	})

	return tx, nil
}

func (c *Confirmer) fail(
	ctx context.Context,
	tx *models.Transaction,
	reason string,
	cause error,
) error {

	log.Warn().Err(cause).Str("reference", tx.Reference).Msg(reason)

	tx.Status = models.TransactionFailed
	if err := c.store.UpdateTransaction(ctx, tx); err != nil {
		log.Error().Err(err).Str("reference", tx.Reference).Msg("failed to mark transaction failed")
	}

	return httperr.ErrBusiness("payment_failed")
}
