package domain

import "time"

type BookingStatus string

const (
	BookingStatusRequested  BookingStatus = "REQUESTED"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses are the statuses whose intervals still occupy a
// resource's timeline. COMPLETED and CANCELLED bookings contribute no
// interval to conflict checks.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusRequested,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// Active reports whether the status keeps the booking's intervals in play.
func (s BookingStatus) Active() bool {
	switch s {
	case BookingStatusRequested, BookingStatusConfirmed, BookingStatusInProgress:
		return true
	}
	return false
}

type Booking struct {
	ID                int64
	Reference         string
	RequestedBy       string
	Origin            string
	Destination       string
	ScheduledStart    time.Time
	ScheduledEnd      time.Time
	ActualStart       *time.Time
	ActualEnd         *time.Time
	AircraftID        *int64
	CrewIDs           []int64
	PassengerCount    int
	Status            BookingStatus
	CostEstimateCents *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Window returns the scheduled window of the booking.
func (b *Booking) Window() Window {
	return Window{Start: b.ScheduledStart, End: b.ScheduledEnd}
}

// BookingInterval is one resource occupation on the timeline, joined with
// enough of the owning booking to describe the blocker.
type BookingInterval struct {
	ResourceID  int64
	BookingID   int64
	Reference   string
	Origin      string
	Destination string
	Window      Window
	Status      BookingStatus
}
