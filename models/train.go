package models

import (
	"fmt"
	"strings"

	"train-booking/internal/status"
)

// Seat cell states as stored in the seats grid.
const (
	SeatFree     = 0
	SeatOccupied = 1
)

// Train describes one train on the network: its ordered route, the
// scheduled time at every station on the route, and the seat-availability
// grid. Version is a monotonically increasing counter used for
// compare-and-swap on persist, so concurrent process instances cannot
// silently overwrite each other's seat flips.
type Train struct {
	TrainID      string            `json:"train_id"`
	TrainNo      string            `json:"train_no"`
	Seats        [][]int           `json:"seats"`
	StationTimes map[string]string `json:"station_times"`
	Stations     []string          `json:"stations"`
	Version      int64             `json:"version"`
}

// Clone returns a deep copy of the train. Tickets embed clones so later
// catalog mutations never alter issued tickets.
func (t *Train) Clone() Train {
	c := Train{
		TrainID: t.TrainID,
		TrainNo: t.TrainNo,
		Version: t.Version,
	}
	if t.Seats != nil {
		c.Seats = make([][]int, len(t.Seats))
		for i, row := range t.Seats {
			c.Seats[i] = make([]int, len(row))
			copy(c.Seats[i], row)
		}
	}
	if t.StationTimes != nil {
		c.StationTimes = make(map[string]string, len(t.StationTimes))
		for k, v := range t.StationTimes {
			c.StationTimes[k] = v
		}
	}
	if t.Stations != nil {
		c.Stations = make([]string, len(t.Stations))
		copy(c.Stations, t.Stations)
	}
	return c
}

// SeatAt returns the state of the seat at (row, col). ok is false when the
// indices fall outside the grid.
func (t *Train) SeatAt(row, col int) (state int, ok bool) {
	if row < 0 || row >= len(t.Seats) {
		return 0, false
	}
	if col < 0 || col >= len(t.Seats[row]) {
		return 0, false
	}
	return t.Seats[row][col], true
}

// Validate checks the structural invariants of a train record: a non-empty
// id, a route of at least two stations, every scheduled station on the
// route, and only free/occupied cells in the seat grid.
func (t *Train) Validate() error {
	if strings.TrimSpace(t.TrainID) == "" {
		return fmt.Errorf("%w: missing train_id", status.ErrInvalidTrain)
	}
	if len(t.Stations) < 2 {
		return fmt.Errorf("%w: route of train %s needs at least two stations", status.ErrInvalidTrain, t.TrainID)
	}
	onRoute := make(map[string]bool, len(t.Stations))
	for _, station := range t.Stations {
		onRoute[strings.ToLower(station)] = true
	}
	for station := range t.StationTimes {
		if !onRoute[strings.ToLower(station)] {
			return fmt.Errorf("%w: scheduled station %q is not on the route of train %s", status.ErrInvalidTrain, station, t.TrainID)
		}
	}
	for i, row := range t.Seats {
		for j, cell := range row {
			if cell != SeatFree && cell != SeatOccupied {
				return fmt.Errorf("%w: seat (%d,%d) of train %s has state %d", status.ErrInvalidTrain, i, j, t.TrainID, cell)
			}
		}
	}
	return nil
}
