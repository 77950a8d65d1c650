package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/httpresp"
	"github.com/salonflow/salon-api/internal/middleware"
	"github.com/salonflow/salon-api/internal/models"
	ucAppointment "github.com/salonflow/salon-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// AppointmentHandler backs the staff waiting board: the day's queue,
// board-status advancement, and per-service start/complete.
type AppointmentHandler struct {
	listByDay       *ucAppointment.ListByDay
	advance         *ucAppointment.AdvanceStatus
	startService    *ucAppointment.StartService
	completeService *ucAppointment.CompleteService
}

func NewAppointmentHandler(
	listByDay *ucAppointment.ListByDay,
	advance *ucAppointment.AdvanceStatus,
	startService *ucAppointment.StartService,
	completeService *ucAppointment.CompleteService,
) *AppointmentHandler {
	return &AppointmentHandler{
		listByDay:       listByDay,
		advance:         advance,
		startService:    startService,
		completeService: completeService,
	}
}

// ======================================================
// DTO
// ======================================================

type BoardEntryDTO struct {
	ID            uint   `json:"id"`
	OrderNumber   int    `json:"order_number"`
	Hour          string `json:"hour_appointment"`
	EstimatedTime int    `json:"estimated_time"`
	Status        string `json:"status"`
	StatusLabel   string `json:"status_label"`
	StatusColor   string `json:"status_color"`
	FirstName     string `json:"first_name"`
	PhoneNumber   string `json:"phone_number"`
	BarberID      *uint  `json:"barber_id"`

	Services []models.AppointmentService `json:"services"`
}

func toBoardEntry(ap models.Appointment) BoardEntryDTO {
	st := domain.Status(ap.Status)
	return BoardEntryDTO{
		ID:            ap.ID,
		OrderNumber:   ap.OrderNumber,
		Hour:          ap.Hour,
		EstimatedTime: ap.EstimatedTime,
		Status:        ap.Status,
		StatusLabel:   domain.Label(st),
		StatusColor:   domain.Color(st),
		FirstName:     ap.FirstName,
		PhoneNumber:   ap.PhoneNumber,
		BarberID:      ap.BarberID,
		Services:      ap.Services,
	}
}

// ======================================================
// BOARD
// ======================================================

func (h *AppointmentHandler) ListByDay(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter 'date' is required.")
		return
	}

	var barberID *uint
	if raw := c.Query("barber_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_barber", "Invalid barber id.")
			return
		}
		b := uint(id)
		barberID = &b
	}

	apps, err := h.listByDay.Execute(c.Request.Context(), organizationID, barberID, date)
	if err != nil {
		writeError(c, err)
		return
	}

	entries := make([]BoardEntryDTO, 0, len(apps))
	for _, ap := range apps {
		entries = append(entries, toBoardEntry(ap))
	}

	httpresp.List(c, entries)
}

func (h *AppointmentHandler) Advance(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.advance.Execute(c.Request.Context(), organizationID, userID, uint(id))
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, toBoardEntry(*ap))
}

// ======================================================
// LINE ITEMS
// ======================================================

func (h *AppointmentHandler) StartService(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid service item id.")
		return
	}

	item, err := h.startService.Execute(c.Request.Context(), organizationID, uint(id), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, item)
}

func (h *AppointmentHandler) CompleteService(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid service item id.")
		return
	}

	item, err := h.completeService.Execute(c.Request.Context(), organizationID, uint(id), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, item)
}
