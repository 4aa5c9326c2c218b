package services

import (
	"context"
	"errors"
	"log"

	"train-booking/internal/status"
	"train-booking/models"
	"train-booking/monitoring"
	"train-booking/utils"
)

// BookingService is the reservation engine. It coordinates the train
// catalog (seat grid mutation) and the requesting user's ticket ledger as
// one logical operation, serialized through the booking lock.
type BookingService struct {
	catalog  *TrainService
	users    *UserService
	ledger   Ledger
	lock     *utils.BookingLock
	notifier *Notifier
}

func NewBookingService(catalog *TrainService, users *UserService, lock *utils.BookingLock, notifier *Notifier) *BookingService {
	return &BookingService{
		catalog:  catalog,
		users:    users,
		lock:     lock,
		notifier: notifier,
	}
}

// Book reserves the seat at (row, col) on the given train for the user and
// returns the issued ticket. The ticket always covers the whole route:
// source is the first station, destination the last. Partial-route
// ticketing is intentionally unsupported; seat occupancy models the whole
// journey.
//
// Validation failures (unknown train, out-of-range index, occupied seat)
// mutate nothing. The seat flip is persisted before the ticket, so a
// storage failure on the first step cannot leave an orphaned ticket; a
// failure persisting the ticket triggers a compensating rollback of the
// seat flip, and only when that rollback also fails does the caller see a
// PartialBookingError.
func (s *BookingService) Book(ctx context.Context, trainID string, row, col int, userID, travelDate string) (models.Ticket, error) {
	if err := s.lock.Acquire(ctx); err != nil {
		return models.Ticket{}, err
	}
	defer s.lock.Release(ctx)

	user, ok := s.users.FindByID(userID)
	if !ok {
		return models.Ticket{}, status.ErrUserNotFound
	}

	train, err := s.catalog.Get(trainID)
	if err != nil {
		return models.Ticket{}, err
	}
	if len(train.Stations) < 2 {
		return models.Ticket{}, status.ErrInvalidTrain
	}

	state, inRange := train.SeatAt(row, col)
	if !inRange {
		monitoring.TrackBooking(train.TrainID, "invalid_seat")
		return models.Ticket{}, status.ErrInvalidSeatIndex
	}
	if state != models.SeatFree {
		monitoring.TrackBooking(train.TrainID, "unavailable")
		return models.Ticket{}, status.ErrSeatUnavailable
	}

	train.Seats[row][col] = models.SeatOccupied
	if err := s.catalog.AddOrReplace(train); err != nil {
		return models.Ticket{}, err
	}

	snapshot, err := s.catalog.Get(train.TrainID)
	if err != nil {
		snapshot = train.Clone()
	}
	ticket := models.Ticket{
		TicketID:     utils.NewTicketID(),
		UserID:       user.UserID,
		Source:       train.Stations[0],
		Destination:  train.Stations[len(train.Stations)-1],
		DateOfTravel: travelDate,
		Train:        snapshot,
	}

	err = s.users.Update(user.UserID, func(u *models.User) error {
		s.ledger.Append(u, ticket)
		return nil
	})
	if err != nil {
		if rbErr := s.releaseSeat(train.TrainID, row, col); rbErr != nil {
			log.Printf("Error rolling back seat (%d,%d) on train %s: %v", row, col, train.TrainID, rbErr)
			monitoring.TrackBooking(train.TrainID, "partial")
			return models.Ticket{}, &status.PartialBookingError{
				TrainID:     train.TrainID,
				Row:         row,
				Col:         col,
				TicketErr:   err,
				RollbackErr: rbErr,
			}
		}
		monitoring.TrackBooking(train.TrainID, "failed")
		return models.Ticket{}, err
	}

	monitoring.TrackBooking(train.TrainID, "confirmed")
	s.notifier.BookingConfirmed(ctx, ticket)
	return ticket, nil
}

// Cancel removes the first ticket with the given id from the user's ledger
// and persists the user collection. A miss returns ErrTicketNotFound with
// nothing persisted. The originating train's seat is deliberately not
// released; see DESIGN.md.
func (s *BookingService) Cancel(ctx context.Context, userID, ticketID string) error {
	if ticketID == "" {
		return status.ErrTicketNotFound
	}

	if err := s.lock.Acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release(ctx)

	err := s.users.Update(userID, func(u *models.User) error {
		if !s.ledger.RemoveByID(u, ticketID) {
			return status.ErrTicketNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, status.ErrTicketNotFound):
		monitoring.TrackCancellation("not_found")
		return err
	case errors.Is(err, status.ErrUserNotFound):
		return err
	case err != nil:
		monitoring.TrackCancellation("failed")
		return err
	}

	monitoring.TrackCancellation("ok")
	s.notifier.BookingCancelled(ctx, userID, ticketID)
	return nil
}

// Tickets enumerates the user's booked tickets.
func (s *BookingService) Tickets(userID string) ([]models.Ticket, error) {
	user, ok := s.users.FindByID(userID)
	if !ok {
		return nil, status.ErrUserNotFound
	}
	tickets := []models.Ticket{}
	for ticket := range s.ledger.All(&user) {
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (s *BookingService) releaseSeat(trainID string, row, col int) error {
	train, err := s.catalog.Get(trainID)
	if err != nil {
		return err
	}
	if _, ok := train.SeatAt(row, col); !ok {
		return status.ErrInvalidSeatIndex
	}
	train.Seats[row][col] = models.SeatFree
	return s.catalog.AddOrReplace(train)
}
