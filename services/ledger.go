package services

import (
	"iter"

	"train-booking/models"
)

// Ledger is a thin view over a user's booked tickets. Tickets have no
// storage of their own; they persist as part of the owning User record, so
// mutations run inside a UserService.Update so the change is written
// through under the collection lock.
type Ledger struct{}

func (Ledger) Append(user *models.User, ticket models.Ticket) {
	user.TicketsBooked = append(user.TicketsBooked, ticket)
}

// RemoveByID removes the first ticket with the given id and reports whether
// a match was found.
func (Ledger) RemoveByID(user *models.User, ticketID string) bool {
	for i := range user.TicketsBooked {
		if user.TicketsBooked[i].TicketID == ticketID {
			user.TicketsBooked = append(user.TicketsBooked[:i], user.TicketsBooked[i+1:]...)
			return true
		}
	}
	return false
}

// All enumerates the user's tickets lazily; the sequence can be ranged over
// more than once.
func (Ledger) All(user *models.User) iter.Seq[models.Ticket] {
	return func(yield func(models.Ticket) bool) {
		for _, ticket := range user.TicketsBooked {
			if !yield(ticket) {
				return
			}
		}
	}
}
