package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/models"
)

// fakeRepo is an in-memory domain.Repository for use case tests. It
// reproduces the contracts the gorm implementation honors: anchor
// selection, the unique (organization, day, order) constraint and the
// idempotent pending delete.
type fakeRepo struct {
	mu sync.Mutex

	org          *models.Organization
	services     map[uint]models.Service
	availability *models.OrganizationAvailability

	appointments map[uint]*models.Appointment
	items        map[uint]*models.AppointmentService
	transactions map[uint]*models.Transaction

	nextID uint

	// now stamps CreatedAt so freshness checks stay deterministic.
	now time.Time

	// failCreates makes the next N creates lose the order-number race.
	failCreates int
}

var _ domain.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		org: &models.Organization{
			ID:       1,
			Name:     "Test Salon",
			Slug:     "test-salon",
			Timezone: "UTC",
		},
		services:     map[uint]models.Service{},
		appointments: map[uint]*models.Appointment{},
		items:        map[uint]*models.AppointmentService{},
		transactions: map[uint]*models.Transaction{},
		now:          time.Now(),
	}
}

func testService(id uint, min, max int, price float64) models.Service {
	return models.Service{
		ID:             id,
		OrganizationID: 1,
		Name:           "Service",
		Price:          price,
		DurationMin:    min,
		DurationMax:    max,
		Active:         true,
	}
}

func testAppointment(
	day time.Time,
	order int,
	hour string,
	estimated int,
	status domain.Status,
	createdAt time.Time,
) models.Appointment {
	return models.Appointment{
		OrganizationID: 1,
		Day:            day,
		OrderNumber:    order,
		Hour:           hour,
		EstimatedTime:  estimated,
		Status:         string(status),
		CreatedAt:      createdAt,
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) addService(s models.Service) {
	f.services[s.ID] = s
}

func (f *fakeRepo) addAppointment(ap models.Appointment) *models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = f.id()
	}
	cp := ap
	f.appointments[cp.ID] = &cp
	return &cp
}

func (f *fakeRepo) addItem(item models.AppointmentService) *models.AppointmentService {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == 0 {
		item.ID = f.id()
	}
	cp := item
	f.items[cp.ID] = &cp
	return &cp
}

// -------- Organization --------

func (f *fakeRepo) GetOrganizationByID(_ context.Context, id uint) (*models.Organization, error) {
	if f.org == nil || f.org.ID != id {
		return nil, errors.New("organization not found")
	}
	cp := *f.org
	return &cp, nil
}

func (f *fakeRepo) GetOrganizationBySlug(_ context.Context, slug string) (*models.Organization, error) {
	if f.org == nil || f.org.Slug != slug {
		return nil, errors.New("organization not found")
	}
	cp := *f.org
	return &cp, nil
}

// -------- Catalog --------

func (f *fakeRepo) ListServices(_ context.Context, organizationID uint, serviceIDs []uint) ([]models.Service, error) {
	out := []models.Service{}
	for _, id := range serviceIDs {
		s, ok := f.services[id]
		if ok && s.OrganizationID == organizationID {
			out = append(out, s)
		}
	}
	return out, nil
}

// -------- Availability --------

func (f *fakeRepo) GetAvailability(_ context.Context, organizationID uint) (*models.OrganizationAvailability, error) {
	if f.availability == nil || f.availability.OrganizationID != organizationID {
		return nil, nil
	}
	cp := *f.availability
	return &cp, nil
}

func (f *fakeRepo) SaveAvailability(_ context.Context, av *models.OrganizationAvailability) error {
	cp := *av
	f.availability = &cp
	return nil
}

// -------- Allocation --------

func (f *fakeRepo) dayAppointments(organizationID uint, dayStart, dayEnd time.Time) []*models.Appointment {
	out := []*models.Appointment{}
	for _, ap := range f.appointments {
		if ap.OrganizationID != organizationID {
			continue
		}
		if ap.Day.Before(dayStart) || !ap.Day.Before(dayEnd) {
			continue
		}
		out = append(out, ap)
	}
	return out
}

func (f *fakeRepo) MaxOrderNumber(_ context.Context, organizationID uint, dayStart, dayEnd time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	max := 0
	for _, ap := range f.dayAppointments(organizationID, dayStart, dayEnd) {
		if ap.OrderNumber > max {
			max = ap.OrderNumber
		}
	}
	return max, nil
}

func (f *fakeRepo) AnchorAppointment(
	_ context.Context,
	organizationID uint,
	dayStart, dayEnd time.Time,
	freshAfter time.Time,
) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var best *models.Appointment
	for _, ap := range f.dayAppointments(organizationID, dayStart, dayEnd) {
		valid := ap.Status != string(domain.StatusPending) || ap.CreatedAt.After(freshAfter)
		if !valid {
			continue
		}
		if best == nil || ap.OrderNumber > best.OrderNumber {
			best = ap
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeRepo) CreateAppointmentWithServices(
	_ context.Context,
	ap *models.Appointment,
	serviceIDs []uint,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreates > 0 {
		f.failCreates--
		return gorm.ErrDuplicatedKey
	}

	for _, other := range f.appointments {
		if other.OrganizationID == ap.OrganizationID &&
			other.Day.Equal(ap.Day) &&
			other.OrderNumber == ap.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}

	ap.ID = f.id()
	ap.CreatedAt = f.now

	cp := *ap
	f.appointments[cp.ID] = &cp

	for _, sid := range serviceIDs {
		item := &models.AppointmentService{
			ID:            f.id(),
			AppointmentID: ap.ID,
			ServiceID:     sid,
			Service:       f.services[sid],
		}
		f.items[item.ID] = item
	}
	return nil
}

func (f *fakeRepo) ListAppointmentsForDay(
	_ context.Context,
	organizationID uint,
	barberID *uint,
	dayStart, dayEnd time.Time,
) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Appointment{}
	for _, ap := range f.dayAppointments(organizationID, dayStart, dayEnd) {
		if barberID != nil && ap.BarberID != nil && *ap.BarberID != *barberID {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderNumber < out[j].OrderNumber
	})
	return out, nil
}

// -------- Appointment (state change) --------

func (f *fakeRepo) GetAppointment(_ context.Context, organizationID, appointmentID uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ap, ok := f.appointments[appointmentID]
	if !ok || ap.OrganizationID != organizationID {
		return nil, gorm.ErrRecordNotFound
	}

	cp := *ap
	cp.Services = nil
	for _, item := range f.items {
		if item.AppointmentID == ap.ID {
			cp.Services = append(cp.Services, *item)
		}
	}
	sort.Slice(cp.Services, func(i, j int) bool {
		return cp.Services[i].ID < cp.Services[j].ID
	})
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.appointments[ap.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ap
	cp.Services = nil
	f.appointments[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) ConfirmAppointment(_ context.Context, appointmentID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ap, ok := f.appointments[appointmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if ap.Status == string(domain.StatusPending) {
		ap.Status = string(domain.StatusConfirmed)
	}
	return nil
}

func (f *fakeRepo) DeletePendingAppointment(_ context.Context, appointmentID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ap, ok := f.appointments[appointmentID]
	if !ok || ap.Status != string(domain.StatusPending) {
		return false, nil
	}

	delete(f.appointments, appointmentID)
	for id, item := range f.items {
		if item.AppointmentID == appointmentID {
			delete(f.items, id)
		}
	}
	return true, nil
}

// -------- Line items --------

func (f *fakeRepo) GetAppointmentService(_ context.Context, organizationID, appointmentServiceID uint) (*models.AppointmentService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[appointmentServiceID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	ap, ok := f.appointments[item.AppointmentID]
	if !ok || ap.OrganizationID != organizationID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointmentService(_ context.Context, item *models.AppointmentService) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *item
	f.items[cp.ID] = &cp
	return nil
}

// -------- Transactions --------

func (f *fakeRepo) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx.ID = f.id()
	cp := *tx
	f.transactions[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateTransaction(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.transactions[tx.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *tx
	f.transactions[cp.ID] = &cp
	return nil
}
