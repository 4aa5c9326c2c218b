package services

import (
	"context"
	"fmt"
	"log"

	pubnub "github.com/pubnub/go"

	"train-booking/models"
	"train-booking/utils"
)

// Notifier publishes booking lifecycle events to a per-user PubNub channel.
// Publishes run through a circuit breaker so a degraded notification
// backend cannot stall bookings; a nil Notifier or one without a client
// drops events silently.
type Notifier struct {
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("pubnub"),
	}
}

func (n *Notifier) BookingConfirmed(ctx context.Context, ticket models.Ticket) {
	n.publish(ctx, ticket.UserID, map[string]any{
		"type":           "booking_confirmed",
		"ticket_id":      ticket.TicketID,
		"train_id":       ticket.Train.TrainID,
		"source":         ticket.Source,
		"destination":    ticket.Destination,
		"date_of_travel": ticket.DateOfTravel,
	})
}

func (n *Notifier) BookingCancelled(ctx context.Context, userID, ticketID string) {
	n.publish(ctx, userID, map[string]any{
		"type":      "booking_cancelled",
		"ticket_id": ticketID,
	})
}

func (n *Notifier) publish(ctx context.Context, userID string, message map[string]any) {
	if n == nil || n.pubnub == nil {
		return
	}
	channel := fmt.Sprintf("user-%s", userID)
	_, err := n.breaker.Execute(ctx, func() (interface{}, error) {
		_, _, err := n.pubnub.Publish().
			Channel(channel).
			Message(message).
			Execute()
		return nil, err
	})
	if err != nil {
		log.Printf("Error publishing %v notification: %v", message["type"], err)
	}
}
