package models

import "time"

// AppointmentService is one line item of one service inside an
// appointment. Line items are created in bulk with the appointment and
// progress independently during the day.
type AppointmentService struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint `json:"appointment_id"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Assigned when staff starts the service, together with StartedAt.
	BarberID *uint `json:"barber_id"`
	Barber   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	StartedAt *time.Time `json:"start_date"`
	EndedAt   *time.Time `json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
