package domain

import (
	"errors"
	"fmt"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrBookingNotFound  = errors.New("booking not found")

	// ErrConcurrentModification is reported by the storage layer when an
	// atomic check-then-reserve or status write loses a race. The caller
	// decides whether to re-run the validation; nothing retries here.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// InsufficientCapacityError is returned when a requested passenger or crew
// count exceeds an aircraft's declared limit.
type InsufficientCapacityError struct {
	AircraftID int64
	Field      string
	Limit      int
	Requested  int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("aircraft %d %s capacity exceeded: limit %d, requested %d", e.AircraftID, e.Field, e.Limit, e.Requested)
}

// SchedulingConflictError carries the full validation result so the caller
// can name every blocking booking instead of surfacing a generic failure.
type SchedulingConflictError struct {
	Result *ValidationResult
}

func (e *SchedulingConflictError) Error() string {
	if e.Result != nil && e.Result.Summary != "" {
		return "scheduling conflict: " + e.Result.Summary
	}
	return "scheduling conflict"
}

// InvalidStateTransitionError names the rejected lifecycle edge.
type InvalidStateTransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s: %s", e.From, e.To, e.Reason)
}
