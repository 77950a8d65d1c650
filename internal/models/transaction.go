package models

import "time"

const (
	TransactionTypeAppointment = "APPOINTMENT"
	TransactionTypeOrder       = "ORDER"
	TransactionTypeWithdrawal  = "WITHDRAWAL"
)

const (
	TransactionPending   = "pending"
	TransactionPaid      = "paid"
	TransactionProcessed = "processed"
	TransactionFailed    = "failed"
	TransactionExpired   = "expired"
	TransactionCancelled = "cancelled"
)

type Transaction struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint `json:"organization_id"`

	Amount    float64 `json:"amount"`
	Reference string  `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Type      string  `gorm:"size:20;not null" json:"type"`
	Status    string  `gorm:"size:20;default:'pending'" json:"status"`

	AppointmentID *uint `json:"appointment_id"`

	// BillID is the external payment-gateway identifier.
	BillID string `gorm:"size:64" json:"bill_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
