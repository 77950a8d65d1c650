package appointment

import (
	"context"
	"time"

	"github.com/salonflow/salon-api/internal/models"
)

type Repository interface {
	// -------- Organization --------
	GetOrganizationByID(
		ctx context.Context,
		id uint,
	) (*models.Organization, error)

	GetOrganizationBySlug(
		ctx context.Context,
		slug string,
	) (*models.Organization, error)

	// -------- Catalog --------
	ListServices(
		ctx context.Context,
		organizationID uint,
		serviceIDs []uint,
	) ([]models.Service, error)

	// -------- Availability --------
	GetAvailability(
		ctx context.Context,
		organizationID uint,
	) (*models.OrganizationAvailability, error)

	SaveAvailability(
		ctx context.Context,
		av *models.OrganizationAvailability,
	) error

	// -------- Allocation --------
	MaxOrderNumber(
		ctx context.Context,
		organizationID uint,
		dayStart time.Time,
		dayEnd time.Time,
	) (int, error)

	// AnchorAppointment returns the highest-order appointment of the day
	// that is either not PENDING or was created after freshAfter, or nil
	// when the day has no valid anchor.
	AnchorAppointment(
		ctx context.Context,
		organizationID uint,
		dayStart time.Time,
		dayEnd time.Time,
		freshAfter time.Time,
	) (*models.Appointment, error)

	// CreateAppointmentWithServices persists the appointment and one line
	// item per service id as a single transaction.
	CreateAppointmentWithServices(
		ctx context.Context,
		ap *models.Appointment,
		serviceIDs []uint,
	) error

	ListAppointmentsForDay(
		ctx context.Context,
		organizationID uint,
		barberID *uint,
		dayStart time.Time,
		dayEnd time.Time,
	) ([]models.Appointment, error)

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		organizationID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ConfirmAppointment promotes PENDING to CONFIRMED. Re-confirming an
	// already confirmed appointment is a no-op.
	ConfirmAppointment(
		ctx context.Context,
		appointmentID uint,
	) error

	// DeletePendingAppointment removes an unpaid hold and its line items.
	// Returns false when nothing was deleted: the row is already gone or
	// no longer PENDING. Neither case is an error.
	DeletePendingAppointment(
		ctx context.Context,
		appointmentID uint,
	) (bool, error)

	// -------- Line items --------
	GetAppointmentService(
		ctx context.Context,
		organizationID uint,
		appointmentServiceID uint,
	) (*models.AppointmentService, error)

	UpdateAppointmentService(
		ctx context.Context,
		item *models.AppointmentService,
	) error

	// -------- Transactions --------
	CreateTransaction(
		ctx context.Context,
		tx *models.Transaction,
	) error

	UpdateTransaction(
		ctx context.Context,
		tx *models.Transaction,
	) error
}
