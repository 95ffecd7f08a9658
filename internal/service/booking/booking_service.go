package booking

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"

	"github.com/avialane/charterops/internal/clock"
	"github.com/avialane/charterops/internal/domain"
	"github.com/avialane/charterops/internal/kafka"
	"github.com/avialane/charterops/internal/repository"
	"github.com/avialane/charterops/internal/service/scheduling"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	AssignResources(ctx context.Context, reference string, input AssignResourcesInput) (*domain.Booking, error)
	TransitionBooking(ctx context.Context, reference string, target domain.BookingStatus) (*domain.Booking, error)
	CancelOverdueRequests(ctx context.Context) ([]domain.Booking, error)
}

type Locker interface {
	AcquireResourceLock(ctx context.Context, resourceID int64, ttl time.Duration) (bool, error)
	ReleaseResourceLock(ctx context.Context, resourceID int64) error
	InvalidateFleetSummary(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ErrResourcesBusy is returned when another request holds the assignment lock
// for one of the requested resources. The caller may simply retry.
var ErrResourcesBusy = errors.New("resources are being assigned by another request")

type BookingService struct {
	bookings           repository.BookingRepository
	scheduler          scheduling.SchedulingUseCase
	locker             Locker
	producer           Producer
	clock              clock.Clock
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
}

type CreateBookingInput struct {
	RequestedBy       string    `json:"requested_by"`
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	ScheduledStart    time.Time `json:"scheduled_start"`
	ScheduledEnd      time.Time `json:"scheduled_end"`
	PassengerCount    int       `json:"passenger_count"`
	AircraftID        *int64    `json:"aircraft_id,omitempty"`
	CrewIDs           []int64   `json:"crew_ids,omitempty"`
	CostEstimateCents *int64    `json:"cost_estimate_cents,omitempty"`
}

type AssignResourcesInput struct {
	AircraftID *int64  `json:"aircraft_id,omitempty"`
	CrewIDs    []int64 `json:"crew_ids,omitempty"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(clk clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = clk
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	scheduler scheduling.SchedulingUseCase,
	locker Locker,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		scheduler:    scheduler,
		locker:       locker,
		producer:     producer,
		clock:        clock.NewSystem(),
		bookingTopic: bookingTopic,
		lockTTL:      lockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.RequestedBy == "" {
		return nil, errors.New("requested_by is required")
	}
	if input.Origin == "" || input.Destination == "" {
		return nil, errors.New("origin and destination are required")
	}
	window := domain.Window{Start: input.ScheduledStart, End: input.ScheduledEnd}
	if !window.Valid() {
		return nil, errors.New("scheduled_start must be before scheduled_end")
	}
	if input.PassengerCount <= 0 {
		return nil, errors.New("passenger count must be positive")
	}

	// Capacity can be checked up front: it does not depend on scheduling.
	if input.AircraftID != nil {
		if err := s.scheduler.ValidateCapacity(ctx, *input.AircraftID, input.PassengerCount, len(input.CrewIDs)); err != nil {
			return nil, err
		}
	}

	booking := &domain.Booking{
		Reference:         uuid.NewString(),
		RequestedBy:       input.RequestedBy,
		Origin:            input.Origin,
		Destination:       input.Destination,
		ScheduledStart:    input.ScheduledStart,
		ScheduledEnd:      input.ScheduledEnd,
		PassengerCount:    input.PassengerCount,
		CostEstimateCents: input.CostEstimateCents,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	if input.AircraftID != nil || len(input.CrewIDs) > 0 {
		if err := s.assign(ctx, booking, input.AircraftID, input.CrewIDs); err != nil {
			// The booking stays REQUESTED and unassigned; the caller can
			// retry the assignment once the conflict is resolved.
			return booking, err
		}
	}

	s.publish(ctx, "booking_requested", booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) AssignResources(ctx context.Context, reference string, input AssignResourcesInput) (*domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	switch booking.Status {
	case domain.BookingStatusRequested, domain.BookingStatusConfirmed:
	default:
		return nil, errors.New("cannot assign resources to a " + string(booking.Status) + " booking")
	}

	if input.AircraftID != nil {
		if err := s.scheduler.ValidateCapacity(ctx, *input.AircraftID, booking.PassengerCount, len(input.CrewIDs)); err != nil {
			return nil, err
		}
	}

	if err := s.assign(ctx, booking, input.AircraftID, input.CrewIDs); err != nil {
		return nil, err
	}

	s.publish(ctx, "resources_assigned", booking)
	return booking, nil
}

// assign serializes the check-then-reserve sequence per resource: advisory
// locks first, then the conflict validation, then the reservation
// transaction, which re-checks overlap under row locks.
func (s *BookingService) assign(ctx context.Context, booking *domain.Booking, aircraftID *int64, crewIDs []int64) error {
	resourceIDs := make([]int64, 0, len(crewIDs)+1)
	if aircraftID != nil {
		resourceIDs = append(resourceIDs, *aircraftID)
	}
	resourceIDs = append(resourceIDs, crewIDs...)
	slices.Sort(resourceIDs)

	var locked []int64
	release := func() {
		for _, id := range locked {
			_ = s.locker.ReleaseResourceLock(ctx, id)
		}
	}

	if s.locker != nil {
		for _, id := range resourceIDs {
			ok, err := s.locker.AcquireResourceLock(ctx, id, s.lockTTL)
			if err != nil {
				release()
				return err
			}
			if !ok {
				release()
				return ErrResourcesBusy
			}
			locked = append(locked, id)
		}
		defer release()
	}

	if err := s.scheduler.ValidateAssignmentOrFail(ctx, aircraftID, crewIDs, booking.Window()); err != nil {
		return err
	}

	if err := s.bookings.ReserveResources(ctx, booking.ID, aircraftID, crewIDs, booking.Window()); err != nil {
		return err
	}

	booking.AircraftID = aircraftID
	booking.CrewIDs = crewIDs

	if s.locker != nil {
		_ = s.locker.InvalidateFleetSummary(ctx)
	}
	return nil
}

var transitionEvents = map[domain.BookingStatus]string{
	domain.BookingStatusConfirmed:  "booking_confirmed",
	domain.BookingStatusInProgress: "booking_started",
	domain.BookingStatusCompleted:  "booking_completed",
	domain.BookingStatusCancelled:  "booking_cancelled",
}

func (s *BookingService) TransitionBooking(ctx context.Context, reference string, target domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := domain.CanTransition(booking.Status, target); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, target)
	if err != nil {
		return nil, err
	}

	// A terminal status frees the booking's intervals, so the cached fleet
	// rollup is stale.
	if target.Terminal() && s.locker != nil {
		_ = s.locker.InvalidateFleetSummary(ctx)
	}

	s.publish(ctx, transitionEvents[target], updated)
	return updated, nil
}

func (s *BookingService) CancelOverdueRequests(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.clock.Now()
	overdue, err := s.bookings.ListOverdueRequested(ctx, deadline)
	if err != nil {
		return nil, err
	}

	cancelled := make([]domain.Booking, 0, len(overdue))
	for _, b := range overdue {
		updated, err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusRequested, domain.BookingStatusCancelled)
		if err != nil {
			// Someone confirmed or cancelled it between the list and the
			// write; skip it, the sweep is best effort.
			if errors.Is(err, domain.ErrConcurrentModification) {
				continue
			}
			return cancelled, err
		}
		s.publish(ctx, "booking_cancelled", updated)
		cancelled = append(cancelled, *updated)
	}
	if len(cancelled) > 0 && s.locker != nil {
		_ = s.locker.InvalidateFleetSummary(ctx)
	}
	return cancelled, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		RequestedBy: booking.RequestedBy,
		Origin:      booking.Origin,
		Destination: booking.Destination,
		Start:       booking.ScheduledStart,
		End:         booking.ScheduledEnd,
		Status:      string(booking.Status),
		AircraftID:  booking.AircraftID,
		CrewIDs:     booking.CrewIDs,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.Reference, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.Reference, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
