package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. Concurrent allocations that race past the day lock land
// here and get retried.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// --------------------------------------------------
// Organization
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrganizationByID(
	ctx context.Context,
	id uint,
) (*models.Organization, error) {

	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *AppointmentGormRepository) GetOrganizationBySlug(
	ctx context.Context,
	slug string,
) (*models.Organization, error) {

	var org models.Organization
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) ListServices(
	ctx context.Context,
	organizationID uint,
	serviceIDs []uint,
) ([]models.Service, error) {

	var services []models.Service
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = true", organizationID)

	if len(serviceIDs) > 0 {
		q = q.Where("id IN ?", serviceIDs)
	}

	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAvailability(
	ctx context.Context,
	organizationID uint,
) (*models.OrganizationAvailability, error) {

	var av models.OrganizationAvailability
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&av).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No template means always closed, not an error.
			return nil, nil
		}
		return nil, err
	}
	return &av, nil
}

func (r *AppointmentGormRepository) SaveAvailability(
	ctx context.Context,
	av *models.OrganizationAvailability,
) error {
	return r.db.WithContext(ctx).Save(av).Error
}

// --------------------------------------------------
// Allocation
// --------------------------------------------------

func (r *AppointmentGormRepository) MaxOrderNumber(
	ctx context.Context,
	organizationID uint,
	dayStart time.Time,
	dayEnd time.Time,
) (int, error) {

	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("MAX(order_number)").
		Where(
			"organization_id = ? AND day >= ? AND day < ?",
			organizationID, dayStart, dayEnd,
		).
		Scan(&max).Error; err != nil {
		return 0, err
	}

	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *AppointmentGormRepository) AnchorAppointment(
	ctx context.Context,
	organizationID uint,
	dayStart time.Time,
	dayEnd time.Time,
	freshAfter time.Time,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"organization_id = ? AND day >= ? AND day < ? AND (status <> ? OR created_at > ?)",
			organizationID, dayStart, dayEnd,
			string(domain.StatusPending), freshAfter,
		).
		Order("order_number DESC").
		First(&ap).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointmentWithServices(
	ctx context.Context,
	ap *models.Appointment,
	serviceIDs []uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ap).Error; err != nil {
			return err
		}

		for _, sid := range serviceIDs {
			item := models.AppointmentService{
				AppointmentID: ap.ID,
				ServiceID:     sid,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			ap.Services = append(ap.Services, item)
		}

		return nil
	})
}

func (r *AppointmentGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	organizationID uint,
	barberID *uint,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Services.Service").
		Where(
			"organization_id = ? AND day >= ? AND day < ?",
			organizationID, dayStart, dayEnd,
		)

	if barberID != nil {
		q = q.Where("barber_id = ?", *barberID)
	}

	var apps []models.Appointment
	if err := q.Order("order_number ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	organizationID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Services.Service").
		Where("id = ? AND organization_id = ?", appointmentID, organizationID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Omit("Services", "Organization", "Barber").
		Save(ap).Error
}

func (r *AppointmentGormRepository) ConfirmAppointment(
	ctx context.Context,
	appointmentID uint,
) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appointmentID, string(domain.StatusPending)).
		Update("status", string(domain.StatusConfirmed)).Error
}

func (r *AppointmentGormRepository) DeletePendingAppointment(
	ctx context.Context,
	appointmentID uint,
) (bool, error) {

	deleted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ap models.Appointment
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", appointmentID, string(domain.StatusPending)).
			First(&ap).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already gone or already paid. Expiry and explicit cancel
			// may both target the same hold; the second caller is fine.
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.
			Where("appointment_id = ?", ap.ID).
			Delete(&models.AppointmentService{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&ap).Error; err != nil {
			return err
		}

		deleted = true
		return nil
	})

	return deleted, err
}

// --------------------------------------------------
// Line items
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentService(
	ctx context.Context,
	organizationID uint,
	appointmentServiceID uint,
) (*models.AppointmentService, error) {

	var item models.AppointmentService
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Joins("JOIN appointments ON appointments.id = appointment_services.appointment_id").
		Where(
			"appointment_services.id = ? AND appointments.organization_id = ?",
			appointmentServiceID, organizationID,
		).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *AppointmentGormRepository) UpdateAppointmentService(
	ctx context.Context,
	item *models.AppointmentService,
) error {
	return r.db.WithContext(ctx).
		Omit("Service", "Barber").
		Save(item).Error
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateTransaction(
	ctx context.Context,
	tx *models.Transaction,
) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *AppointmentGormRepository) UpdateTransaction(
	ctx context.Context,
	tx *models.Transaction,
) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
