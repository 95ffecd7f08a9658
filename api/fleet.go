package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avialane/charterops/internal/domain"
	"github.com/avialane/charterops/internal/repository"
	"github.com/avialane/charterops/internal/service/scheduling"
	"github.com/gin-gonic/gin"
)

var (
	errMissingWindow = errors.New("from and to query parameters are required")
	errInvalidWindow = errors.New("from and to must be RFC3339 timestamps with from before to")
)

type FleetHandler struct {
	service   scheduling.SchedulingUseCase
	resources repository.ResourceRepository
}

type validateAssignmentRequest struct {
	AircraftID *int64    `json:"aircraft_id,omitempty"`
	CrewIDs    []int64   `json:"crew_ids,omitempty"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
}

func NewFleetHandler(service scheduling.SchedulingUseCase, resources repository.ResourceRepository) *FleetHandler {
	return &FleetHandler{service: service, resources: resources}
}

func (h *FleetHandler) Register(router *gin.RouterGroup) {
	router.GET("/summary", h.summary)
	router.GET("/resources", h.listResources)
	router.GET("/resources/:id/availability", h.availability)
	router.GET("/resources/:id/capacity", h.capacity)
	router.POST("/validate", h.validateAssignment)
}

func (h *FleetHandler) capacity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	passengers, err := strconv.Atoi(c.DefaultQuery("passengers", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid passengers count"})
		return
	}
	crew, err := strconv.Atoi(c.DefaultQuery("crew", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crew count"})
		return
	}

	if err := h.service.ValidateCapacity(c.Request.Context(), id, passengers, crew); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *FleetHandler) listResources(c *gin.Context) {
	kind := domain.ResourceKind(c.DefaultQuery("kind", string(domain.ResourceKindAircraft)))

	var (
		resources []domain.Resource
		err       error
	)
	if status := c.Query("status"); status != "" {
		resources, err = h.resources.ListByStatus(c.Request.Context(), kind, domain.ResourceStatus(status))
	} else {
		resources, err = h.resources.ListByKind(c.Request.Context(), kind)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (h *FleetHandler) availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	window, err := windowFromQuery(c, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	availability, err := h.service.CheckAvailability(c.Request.Context(), id, *window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *FleetHandler) validateAssignment(c *gin.Context) {
	var req validateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window := domain.Window{Start: req.Start, End: req.End}
	if !window.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be before end"})
		return
	}

	result, err := h.service.ValidateAssignment(c.Request.Context(), req.AircraftID, req.CrewIDs, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FleetHandler) summary(c *gin.Context) {
	window, err := windowFromQuery(c, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.SummarizeFleet(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// windowFromQuery parses optional from/to query params. When required is
// false and both are absent, it returns nil.
func windowFromQuery(c *gin.Context, required bool) (*domain.Window, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		if required {
			return nil, errMissingWindow
		}
		return nil, nil
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return nil, errInvalidWindow
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return nil, errInvalidWindow
	}

	window := domain.Window{Start: from, End: to}
	if !window.Valid() {
		return nil, errInvalidWindow
	}
	return &window, nil
}
