package status

import (
	"errors"
	"fmt"
)

var (
	ErrCatalogNotLoaded = errors.New("catalog: train catalog not loaded")
	ErrUsersNotLoaded   = errors.New("users: user collection not loaded")
	ErrTrainNotFound    = errors.New("catalog: train not found")
	ErrInvalidTrain     = errors.New("catalog: invalid train record")
	ErrVersionConflict  = errors.New("catalog: train modified by another writer")

	ErrInvalidSeatIndex = errors.New("booking: seat index out of range")
	ErrSeatUnavailable  = errors.New("booking: seat already occupied")
	ErrTicketNotFound   = errors.New("booking: ticket not found")
	ErrLockBusy         = errors.New("booking: another booking is in progress")

	ErrUserNotFound       = errors.New("users: user not found")
	ErrDuplicateUsername  = errors.New("signup: username already taken")
	ErrInvalidUsername    = errors.New("signup: username must be non-empty without whitespace")
	ErrInvalidCredentials = errors.New("login: invalid username or password")
)

// StorageError reports a failed read or write of a backing record
// collection. A write failure after an in-memory mutation means the change
// is not guaranteed durable.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PartialBookingError reports a booking whose seat flip was persisted but
// whose ticket was not, and whose compensating rollback also failed. The
// seat stays occupied on disk with no corresponding ticket.
type PartialBookingError struct {
	TrainID     string
	Row         int
	Col         int
	TicketErr   error
	RollbackErr error
}

func (e *PartialBookingError) Error() string {
	return fmt.Sprintf("booking: partially applied on train %s seat (%d,%d): ticket persist: %v; seat rollback: %v",
		e.TrainID, e.Row, e.Col, e.TicketErr, e.RollbackErr)
}

func (e *PartialBookingError) Unwrap() error { return e.TicketErr }
