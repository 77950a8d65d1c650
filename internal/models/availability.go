package models

import "time"

// OrganizationAvailability is the weekly opening template of one salon.
// Opening and closing times are minutes from midnight.
type OrganizationAvailability struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `gorm:"uniqueIndex" json:"organization_id"`

	OpeningTime int `json:"opening_time"`
	ClosingTime int `json:"closing_time"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OpenOn reports whether the salon opens on the given weekday.
func (a *OrganizationAvailability) OpenOn(weekday time.Weekday) bool {
	switch weekday {
	case time.Monday:
		return a.Monday
	case time.Tuesday:
		return a.Tuesday
	case time.Wednesday:
		return a.Wednesday
	case time.Thursday:
		return a.Thursday
	case time.Friday:
		return a.Friday
	case time.Saturday:
		return a.Saturday
	case time.Sunday:
		return a.Sunday
	}
	return false
}
