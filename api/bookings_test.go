package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avialane/charterops/internal/domain"
	"github.com/avialane/charterops/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase.
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AssignResources(ctx context.Context, reference string, input booking.AssignResourcesInput) (*domain.Booking, error) {
	args := m.Called(ctx, reference, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) TransitionBooking(ctx context.Context, reference string, target domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, reference, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelOverdueRequests(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newBookingRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/bookings"))
	return router
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:             1,
		Reference:      "ref-1",
		RequestedBy:    "ops@charter.example",
		Origin:         "KTEB",
		Destination:    "KPBI",
		ScheduledStart: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		ScheduledEnd:   time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		PassengerCount: 8,
		Status:         domain.BookingStatusRequested,
	}
}

func TestBookingHandler_Create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Return(sampleBooking(), nil).Once()

	body, _ := json.Marshal(gin.H{
		"requested_by":    "ops@charter.example",
		"origin":          "KTEB",
		"destination":     "KPBI",
		"scheduled_start": "2025-06-01T10:00:00Z",
		"scheduled_end":   "2025-06-01T14:00:00Z",
		"passenger_count": 8,
	})
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ref-1", resp.Reference)
	assert.Equal(t, "REQUESTED", resp.Status)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_Create_InvalidBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

// Creation can persist the booking and still fail its initial assignment; the
// conflict body must then carry the reference so the client can retry.
func TestBookingHandler_Create_AssignmentConflictKeepsReference(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	conflictErr := &domain.SchedulingConflictError{Result: &domain.ValidationResult{
		Available: false,
		AircraftConflicts: []domain.ConflictEntry{
			{ResourceID: 2, BookingID: 42, Reference: "ref-42", Status: domain.BookingStatusConfirmed},
		},
		Summary: "aircraft 2: 1 overlapping booking(s)",
	}}
	mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Return(sampleBooking(), conflictErr).Once()

	body, _ := json.Marshal(gin.H{
		"requested_by":    "ops@charter.example",
		"origin":          "KTEB",
		"destination":     "KPBI",
		"scheduled_start": "2025-06-01T10:00:00Z",
		"scheduled_end":   "2025-06-01T14:00:00Z",
		"passenger_count": 8,
		"aircraft_id":     2,
	})
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		Error      string                  `json:"error"`
		Reference  string                  `json:"reference"`
		Validation domain.ValidationResult `json:"validation"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ref-1", resp.Reference)
	assert.False(t, resp.Validation.Available)
	assert.Len(t, resp.Validation.AircraftConflicts, 1)
}

func TestBookingHandler_Create_ResourcesBusyKeepsReference(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).
		Return(sampleBooking(), booking.ErrResourcesBusy).Once()

	body, _ := json.Marshal(gin.H{
		"requested_by":    "ops@charter.example",
		"origin":          "KTEB",
		"destination":     "KPBI",
		"scheduled_start": "2025-06-01T10:00:00Z",
		"scheduled_end":   "2025-06-01T14:00:00Z",
		"passenger_count": 8,
		"aircraft_id":     2,
	})
	req := httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		Reference string `json:"reference"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ref-1", resp.Reference)
}

func TestBookingHandler_Get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("GetBooking", mock.Anything, "missing").Return(nil, domain.ErrBookingNotFound).Once()

	req := httptest.NewRequest("GET", "/bookings/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_AssignResources_Conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	conflictErr := &domain.SchedulingConflictError{Result: &domain.ValidationResult{
		Available: false,
		AircraftConflicts: []domain.ConflictEntry{
			{ResourceID: 2, BookingID: 42, Reference: "ref-42", Status: domain.BookingStatusConfirmed},
		},
		Summary: "aircraft 2: 1 overlapping booking(s)",
	}}
	mockService.On("AssignResources", mock.Anything, "ref-1", mock.AnythingOfType("booking.AssignResourcesInput")).
		Return(nil, conflictErr).Once()

	body, _ := json.Marshal(gin.H{"aircraft_id": 2})
	req := httptest.NewRequest("POST", "/bookings/ref-1/resources", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		Error      string                  `json:"error"`
		Validation domain.ValidationResult `json:"validation"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Validation.Available)
	assert.Len(t, resp.Validation.AircraftConflicts, 1)
	assert.Equal(t, int64(42), resp.Validation.AircraftConflicts[0].BookingID)
}

func TestBookingHandler_Transition(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	confirmed := sampleBooking()
	confirmed.Status = domain.BookingStatusConfirmed
	mockService.On("TransitionBooking", mock.Anything, "ref-1", domain.BookingStatusConfirmed).
		Return(confirmed, nil).Once()

	body, _ := json.Marshal(gin.H{"status": "CONFIRMED"})
	req := httptest.NewRequest("POST", "/bookings/ref-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
}

func TestBookingHandler_Transition_Invalid(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	tErr := &domain.InvalidStateTransitionError{
		From:   domain.BookingStatusRequested,
		To:     domain.BookingStatusInProgress,
		Reason: "cannot go from REQUESTED to IN_PROGRESS",
	}
	mockService.On("TransitionBooking", mock.Anything, "ref-1", domain.BookingStatusInProgress).
		Return(nil, tErr).Once()

	body, _ := json.Marshal(gin.H{"status": "IN_PROGRESS"})
	req := httptest.NewRequest("POST", "/bookings/ref-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REQUESTED", resp.From)
	assert.Equal(t, "IN_PROGRESS", resp.To)
}
