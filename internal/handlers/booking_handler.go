package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/httpresp"
	"github.com/salonflow/salon-api/internal/payments"
	ucAppointment "github.com/salonflow/salon-api/internal/usecase/appointment"
	"github.com/salonflow/salon-api/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// BookingHandler is the public surface of the customer booking flow:
// catalog, slots, hold creation, payment, cancellation.
type BookingHandler struct {
	repo     domain.Repository
	allocate *ucAppointment.AllocateAppointment
	slots    *ucAppointment.ListSlots
	release  *ucAppointment.ReleaseHold
	confirm  *payments.Confirmer
}

func NewBookingHandler(
	repo domain.Repository,
	allocate *ucAppointment.AllocateAppointment,
	slots *ucAppointment.ListSlots,
	release *ucAppointment.ReleaseHold,
	confirm *payments.Confirmer,
) *BookingHandler {
	return &BookingHandler{
		repo:     repo,
		allocate: allocate,
		slots:    slots,
		release:  release,
		confirm:  confirm,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateHoldRequest struct {
	ServiceIDs  []uint `json:"service_ids" binding:"required,min=1"`
	FirstName   string `json:"first_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Notes       string `json:"notes"`
	BarberID    *uint  `json:"barber_id"`
	Date        string `json:"date" binding:"required"`
}

type PayRequest struct {
	PayerPhone string `json:"payer_phone" binding:"required"`
	Provider   string `json:"provider"`
}

// ======================================================
// CATALOG
// ======================================================

func (h *BookingHandler) ListServices(c *gin.Context) {
	org, err := h.repo.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "organization_not_found", "Salon not found.")
		return
	}

	services, err := h.repo.ListServices(c.Request.Context(), org.ID, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, services)
}

// ======================================================
// SLOTS
// ======================================================

func (h *BookingHandler) ListSlots(c *gin.Context) {
	org, err := h.repo.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "organization_not_found", "Salon not found.")
		return
	}

	in := ucAppointment.SlotsInput{
		OrganizationID: org.ID,
		Date:           c.Query("date"),
	}

	if raw := c.Query("barber_id"); raw != "" && raw != "any" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber", "Invalid barber id.")
			return
		}
		barberID := uint(id)
		in.BarberID = &barberID
	}

	for _, raw := range c.QueryArray("service_id") {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service", "Invalid service id.")
			return
		}
		in.ServiceIDs = append(in.ServiceIDs, uint(id))
	}

	slots, err := h.slots.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// HOLD (create / cancel)
// ======================================================

func (h *BookingHandler) CreateHold(c *gin.Context) {
	org, err := h.repo.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "organization_not_found", "Salon not found.")
		return
	}

	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if !validators.IsClientName(req.FirstName) {
		httperr.BadRequest(c, "invalid_name", "Name must be at least 3 characters.")
		return
	}
	if !validators.IsBookingPhone(req.PhoneNumber) {
		httperr.BadRequest(c, "invalid_phone", "Phone number must be 8 or 9 digits.")
		return
	}

	ap, err := h.allocate.Execute(c.Request.Context(), ucAppointment.AllocateInput{
		OrganizationID: org.ID,
		BarberID:       req.BarberID,
		ServiceIDs:     req.ServiceIDs,
		FirstName:      req.FirstName,
		PhoneNumber:    req.PhoneNumber,
		Notes:          req.Notes,
		Date:           req.Date,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(201, ap)
}

func (h *BookingHandler) CancelHold(c *gin.Context) {
	if _, err := h.repo.GetOrganizationBySlug(c.Request.Context(), c.Param("slug")); err != nil {
		httperr.NotFound(c, "organization_not_found", "Salon not found.")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	// Idempotent: a hold that already expired reports deleted=false and
	// still answers 200.
	deleted, err := h.release.Execute(c.Request.Context(), uint(id))
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"deleted": deleted})
}

// ======================================================
// PAYMENT
// ======================================================

func (h *BookingHandler) Pay(c *gin.Context) {
	org, err := h.repo.GetOrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		httperr.NotFound(c, "organization_not_found", "Salon not found.")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if !validators.IsBookingPhone(req.PayerPhone) {
		httperr.BadRequest(c, "invalid_phone", "Phone number must be 8 or 9 digits.")
		return
	}

	tx, err := h.confirm.Execute(c.Request.Context(), payments.ConfirmInput{
		OrganizationID: org.ID,
		AppointmentID:  uint(id),
		PayerPhone:     req.PayerPhone,
		Provider:       req.Provider,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, tx)
}
