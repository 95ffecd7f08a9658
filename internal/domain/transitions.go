package domain

// bookingTransitions is the legal lifecycle graph. Adding a state is a data
// change here, not a code change in callers.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusRequested:  {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// Terminal reports whether no further transitions are permitted from s.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransition checks the transition table and returns a typed error naming
// the rejected edge, or nil when the move is legal.
func CanTransition(from, to BookingStatus) error {
	if from == to {
		return &InvalidStateTransitionError{From: from, To: to, Reason: "booking is already " + string(from)}
	}
	if from.Terminal() {
		return &InvalidStateTransitionError{From: from, To: to, Reason: "cannot change state of a " + string(from) + " booking"}
	}
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidStateTransitionError{From: from, To: to, Reason: "cannot go from " + string(from) + " to " + string(to)}
}
