package services

import (
	"strings"
	"sync"

	"train-booking/internal/status"
	"train-booking/localdb"
	"train-booking/models"
)

// TrainService is the in-memory train catalog backed by the localdb store.
// Every mutation is written through to disk immediately; the persist step
// compare-and-swaps on the per-train version counter so a concurrent
// process instance cannot silently lose a seat flip. The catalog mutex
// covers in-process readers racing a write on another goroutine.
type TrainService struct {
	store *localdb.Store

	mu     sync.RWMutex
	trains []models.Train
	loaded bool
}

func NewTrainService(store *localdb.Store) *TrainService {
	return &TrainService{store: store}
}

// Load reads the full train collection into memory. A storage failure is
// fatal to the call: no partial catalog is served.
func (s *TrainService) Load() error {
	trains, err := s.store.LoadTrains()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.trains = trains
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *TrainService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Search returns every train whose route contains both stations with the
// source strictly before the destination. Matching is case-insensitive.
// No qualifying train, an unknown station, or source == destination all
// yield an empty result, not an error. Returned trains are copies.
func (s *TrainService) Search(source, destination string) ([]models.Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, status.ErrCatalogNotLoaded
	}
	matches := []models.Train{}
	for i := range s.trains {
		if routeCovers(&s.trains[i], source, destination) {
			matches = append(matches, s.trains[i].Clone())
		}
	}
	return matches, nil
}

func routeCovers(train *models.Train, source, destination string) bool {
	src := strings.ToLower(strings.TrimSpace(source))
	dst := strings.ToLower(strings.TrimSpace(destination))
	if src == "" || dst == "" || src == dst {
		return false
	}
	srcIdx, dstIdx := -1, -1
	for i, station := range train.Stations {
		switch strings.ToLower(station) {
		case src:
			if srcIdx == -1 {
				srcIdx = i
			}
		case dst:
			if dstIdx == -1 {
				dstIdx = i
			}
		}
	}
	return srcIdx != -1 && dstIdx != -1 && srcIdx < dstIdx
}

// Get returns a copy of the train with the given id (case-insensitive).
func (s *TrainService) Get(trainID string) (models.Train, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.Train{}, status.ErrCatalogNotLoaded
	}
	for i := range s.trains {
		if strings.EqualFold(s.trains[i].TrainID, trainID) {
			return s.trains[i].Clone(), nil
		}
	}
	return models.Train{}, status.ErrTrainNotFound
}

// All returns a copy of the loaded catalog.
func (s *TrainService) All() []models.Train {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trains := make([]models.Train, len(s.trains))
	for i := range s.trains {
		trains[i] = s.trains[i].Clone()
	}
	return trains
}

// AddOrReplace replaces the train with the same id (case-insensitive) or
// appends it, then persists the whole collection. Before writing it
// re-reads the on-disk collection and verifies the target train's version
// still matches the one this catalog loaded; ErrVersionConflict means
// another writer got there first and nothing was changed. Other trains'
// on-disk records are carried over as-is, so a concurrent writer's changes
// to unrelated trains are not clobbered.
//
// A persist failure after the checks leaves memory untouched; the caller
// must treat the change as not durable and may retry.
func (s *TrainService) AddOrReplace(train models.Train) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return status.ErrCatalogNotLoaded
	}
	if err := train.Validate(); err != nil {
		return err
	}

	baseVersion := int64(0)
	memIdx := -1
	for i := range s.trains {
		if strings.EqualFold(s.trains[i].TrainID, train.TrainID) {
			baseVersion = s.trains[i].Version
			memIdx = i
			break
		}
	}

	disk, err := s.store.LoadTrains()
	if err != nil {
		return err
	}

	diskVersion := int64(0)
	diskIdx := -1
	for i := range disk {
		if strings.EqualFold(disk[i].TrainID, train.TrainID) {
			diskVersion = disk[i].Version
			diskIdx = i
			break
		}
	}
	if diskVersion != baseVersion {
		return status.ErrVersionConflict
	}

	train.Version = baseVersion + 1
	if diskIdx >= 0 {
		disk[diskIdx] = train
	} else {
		disk = append(disk, train)
	}

	if err := s.store.SaveTrains(disk); err != nil {
		return err
	}

	if memIdx >= 0 {
		s.trains[memIdx] = train.Clone()
	} else {
		s.trains = append(s.trains, train.Clone())
	}
	return nil
}
