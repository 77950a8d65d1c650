package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/salonflow/salon-api/internal/httperr"
)

// Business-rule violations get their specific code and message; any
// other failure surfaces as a generic internal error.
var businessMessages = map[string]string{
	"booking_closed_today":          "Bookings for today close after 5pm.",
	"no_services_selected":          "Select at least one service.",
	"invalid_date":                  "Invalid date.",
	"date_in_past":                  "That date has already passed.",
	"invalid_name":                  "Name must be at least 3 characters.",
	"invalid_phone":                 "Phone number must be 8 or 9 digits.",
	"payment_failed":                "Payment failed. You can retry.",
	"appointment_not_found":         "Appointment not found.",
	"appointment_already_confirmed": "This appointment is already paid.",
	"no_further_transition":         "No further status transition.",
	"service_item_not_found":        "Service not found on this appointment.",
	"service_not_started":           "Start the service first.",
	"service_already_started":       "This service was already started.",
	"service_already_completed":     "This service was already completed.",
	"organization_not_found":        "Salon not found.",
	"allocation_busy":               "The queue is busy, try again.",
	"could_not_save_appointment":    "Could not save appointment.",
}

func writeError(c *gin.Context, err error) {
	if code, ok := httperr.BusinessCode(err); ok {
		msg := businessMessages[code]
		if msg == "" {
			msg = code
		}
		httperr.BadRequest(c, code, msg)
		return
	}

	httperr.Internal(c, "internal_error", "Something went wrong.")
}
