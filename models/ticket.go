package models

import "fmt"

// Ticket records one booked seat. Train holds a deep-copied snapshot of the
// train at booking time, not a reference to the live catalog entry.
type Ticket struct {
	TicketID     string `json:"ticket_id"`
	UserID       string `json:"user_id"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	DateOfTravel string `json:"date_of_travel"`
	Train        Train  `json:"train"`
}

// Summary returns a one-line description for display.
func (t *Ticket) Summary() string {
	return fmt.Sprintf("Ticket %s: %s to %s on %s (train %s)",
		t.TicketID, t.Source, t.Destination, t.DateOfTravel, t.Train.TrainNo)
}
