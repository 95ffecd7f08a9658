package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/avialane/charterops/internal/domain"
	"github.com/avialane/charterops/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

type bookingResponse struct {
	Reference      string  `json:"reference"`
	RequestedBy    string  `json:"requested_by"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	ScheduledStart string  `json:"scheduled_start"`
	ScheduledEnd   string  `json:"scheduled_end"`
	AircraftID     *int64  `json:"aircraft_id,omitempty"`
	CrewIDs        []int64 `json:"crew_ids,omitempty"`
	PassengerCount int     `json:"passenger_count"`
	Status         string  `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:reference", h.get)
	router.POST("/:reference/resources", h.assignResources)
	router.POST("/:reference/status", h.transition)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		// The booking may already be persisted when only its initial
		// assignment failed; name it so the client can retry against it.
		if created != nil {
			respondCreateConflict(c, created, err)
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func respondCreateConflict(c *gin.Context, created *domain.Booking, err error) {
	var conflictErr *domain.SchedulingConflictError
	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      conflictErr.Error(),
			"validation": conflictErr.Result,
			"reference":  created.Reference,
		})
	case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, booking.ErrResourcesBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reference": created.Reference})
	default:
		respondError(c, err)
	}
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetBooking(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) assignResources(c *gin.Context) {
	var req booking.AssignResourcesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.AssignResources(c.Request.Context(), c.Param("reference"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.TransitionBooking(c.Request.Context(), c.Param("reference"), domain.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference:      b.Reference,
		RequestedBy:    b.RequestedBy,
		Origin:         b.Origin,
		Destination:    b.Destination,
		ScheduledStart: b.ScheduledStart.Format(time.RFC3339),
		ScheduledEnd:   b.ScheduledEnd.Format(time.RFC3339),
		AircraftID:     b.AircraftID,
		CrewIDs:        b.CrewIDs,
		PassengerCount: b.PassengerCount,
		Status:         string(b.Status),
	}
}

// respondError maps domain errors to status codes and keeps their structured
// payloads in the body, so a conflict always names its blockers.
func respondError(c *gin.Context, err error) {
	var conflictErr *domain.SchedulingConflictError
	var capacityErr *domain.InsufficientCapacityError
	var transitionErr *domain.InvalidStateTransitionError

	switch {
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "validation": conflictErr.Result})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     capacityErr.Error(),
			"field":     capacityErr.Field,
			"limit":     capacityErr.Limit,
			"requested": capacityErr.Requested,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, booking.ErrResourcesBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
