package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"train-booking/models"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Seat booking attempts by outcome",
		},
		[]string{"train_id", "status"},
	)

	cancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cancellations_total",
			Help: "Ticket cancellation attempts by outcome",
		},
		[]string{"status"},
	)

	searchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "train_searches_total",
			Help: "Route search requests",
		},
	)

	occupiedSeats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "occupied_seats",
			Help: "Occupied seats per train",
		},
		[]string{"train_id"},
	)
)

func TrackBooking(trainID, status string) {
	bookingsTotal.WithLabelValues(trainID, status).Inc()
}

func TrackCancellation(status string) {
	cancellationsTotal.WithLabelValues(status).Inc()
}

func TrackSearch() {
	searchesTotal.Inc()
}

// CatalogSource is the slice of the train catalog the monitor reads.
type CatalogSource interface {
	All() []models.Train
}

// Monitor periodically republishes seat occupancy gauges from the catalog.
type Monitor struct {
	catalog  CatalogSource
	interval time.Duration
	stop     chan struct{}
}

func NewMonitor(catalog CatalogSource) *Monitor {
	m := &Monitor{
		catalog:  catalog,
		interval: 30 * time.Second,
		stop:     make(chan struct{}),
	}
	go m.collect()
	return m
}

func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) collect() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collectOccupancy()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) collectOccupancy() {
	for _, train := range m.catalog.All() {
		occupied := 0
		for _, row := range train.Seats {
			for _, cell := range row {
				if cell == models.SeatOccupied {
					occupied++
				}
			}
		}
		occupiedSeats.WithLabelValues(train.TrainID).Set(float64(occupied))
	}
}
