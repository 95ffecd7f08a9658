package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []BookingStatus{
	BookingStatusRequested,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := [][2]BookingStatus{
		{BookingStatusRequested, BookingStatusConfirmed},
		{BookingStatusRequested, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusInProgress},
		{BookingStatusConfirmed, BookingStatusCancelled},
		{BookingStatusInProgress, BookingStatusCompleted},
		{BookingStatusInProgress, BookingStatusCancelled},
	}

	for _, edge := range allowed {
		assert.NoError(t, CanTransition(edge[0], edge[1]), "%s -> %s should be legal", edge[0], edge[1])
	}
}

func TestCanTransition_Closure(t *testing.T) {
	allowed := map[[2]BookingStatus]bool{
		{BookingStatusRequested, BookingStatusConfirmed}:  true,
		{BookingStatusRequested, BookingStatusCancelled}:  true,
		{BookingStatusConfirmed, BookingStatusInProgress}: true,
		{BookingStatusConfirmed, BookingStatusCancelled}:  true,
		{BookingStatusInProgress, BookingStatusCompleted}: true,
		{BookingStatusInProgress, BookingStatusCancelled}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := CanTransition(from, to)
			if allowed[[2]BookingStatus{from, to}] {
				assert.NoError(t, err)
				continue
			}
			assert.Error(t, err, "%s -> %s should be rejected", from, to)
			var tErr *InvalidStateTransitionError
			assert.ErrorAs(t, err, &tErr)
			assert.Equal(t, from, tErr.From)
			assert.Equal(t, to, tErr.To)
		}
	}
}

func TestCanTransition_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		assert.True(t, from.Terminal())
		for _, to := range allStatuses {
			assert.Error(t, CanTransition(from, to))
		}
	}
}

func TestCanTransition_SameStateRejected(t *testing.T) {
	err := CanTransition(BookingStatusConfirmed, BookingStatusConfirmed)
	var tErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &tErr)
	assert.Contains(t, tErr.Reason, "already")
}

func TestCanTransition_SkippingStatesRejected(t *testing.T) {
	err := CanTransition(BookingStatusRequested, BookingStatusInProgress)
	var tErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &tErr)
	assert.Equal(t, BookingStatusRequested, tErr.From)
	assert.Equal(t, BookingStatusInProgress, tErr.To)
}

func TestBookingStatus_Active(t *testing.T) {
	assert.True(t, BookingStatusRequested.Active())
	assert.True(t, BookingStatusConfirmed.Active())
	assert.True(t, BookingStatusInProgress.Active())
	assert.False(t, BookingStatusCompleted.Active())
	assert.False(t, BookingStatusCancelled.Active())
}
