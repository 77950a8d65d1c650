package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint         `gorm:"uniqueIndex:idx_org_day_order" json:"organization_id"`
	Organization   Organization `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"organization"`

	// Unassigned barber is a valid terminal state, not only an
	// intermediate one.
	BarberID *uint `json:"barber_id"`
	Barber   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	// Day is the calendar day normalized to noon in the organization's
	// timezone, so same-day comparisons never drift across midnight.
	Day time.Time `gorm:"uniqueIndex:idx_org_day_order" json:"date"`

	// OrderNumber is the daily queue position, unique per organization
	// per day.
	OrderNumber int `gorm:"uniqueIndex:idx_org_day_order" json:"order_number"`

	// Hour is the allocated start time as "HH:MM".
	Hour string `gorm:"size:5" json:"hour_appointment"`

	// EstimatedTime is the expected total duration in minutes.
	EstimatedTime int `json:"estimated_time"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	FirstName   string `gorm:"size:100" json:"first_name"`
	PhoneNumber string `gorm:"size:20" json:"phone_number"`
	Notes       string `gorm:"size:255" json:"notes"`

	Services []AppointmentService `json:"services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
