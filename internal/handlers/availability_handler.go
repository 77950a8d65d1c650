package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/salonflow/salon-api/internal/domain/appointment"
	"github.com/salonflow/salon-api/internal/httperr"
	"github.com/salonflow/salon-api/internal/httpresp"
	"github.com/salonflow/salon-api/internal/middleware"
	"github.com/salonflow/salon-api/internal/models"
)

type AvailabilityHandler struct {
	repo domain.Repository
}

func NewAvailabilityHandler(repo domain.Repository) *AvailabilityHandler {
	return &AvailabilityHandler{repo: repo}
}

type UpdateAvailabilityRequest struct {
	OpeningTime int `json:"opening_time" binding:"min=0,max=1439"`
	ClosingTime int `json:"closing_time" binding:"min=0,max=1440"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)

	av, err := h.repo.GetAvailability(c.Request.Context(), organizationID)
	if err != nil {
		writeError(c, err)
		return
	}
	if av == nil {
		httperr.NotFound(c, "availability_not_set", "No opening hours configured yet.")
		return
	}

	httpresp.OK(c, av)
}

func (h *AvailabilityHandler) Update(c *gin.Context) {
	organizationID := c.MustGet(middleware.ContextOrganizationID).(uint)

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.ClosingTime <= req.OpeningTime {
		httperr.BadRequest(c, "invalid_hours", "Closing time must be after opening time.")
		return
	}

	av, err := h.repo.GetAvailability(c.Request.Context(), organizationID)
	if err != nil {
		writeError(c, err)
		return
	}
	if av == nil {
		av = &models.OrganizationAvailability{OrganizationID: organizationID}
	}

	av.OpeningTime = req.OpeningTime
	av.ClosingTime = req.ClosingTime
	av.Monday = req.Monday
	av.Tuesday = req.Tuesday
	av.Wednesday = req.Wednesday
	av.Thursday = req.Thursday
	av.Friday = req.Friday
	av.Saturday = req.Saturday
	av.Sunday = req.Sunday

	if err := h.repo.SaveAvailability(c.Request.Context(), av); err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, av)
}
