package notify

import (
	"context"
	"fmt"

	"github.com/avialane/charterops/internal/kafka"
)

// Sender delivers booking lifecycle notifications to the requesting operator.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify %s: booking %s (%s -> %s) is now %s\n",
		event.RequestedBy, event.Reference, event.Origin, event.Destination, event.Status)
	return nil
}
