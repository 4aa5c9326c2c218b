package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-booking/internal/status"
	"train-booking/localdb"
	"train-booking/models"
)

func seedCatalog(t *testing.T, trains []models.Train) (*TrainService, *localdb.Store) {
	t.Helper()
	store := localdb.New(t.TempDir())
	require.NoError(t, store.SaveTrains(trains))
	require.NoError(t, store.SaveUsers([]models.User{}))

	catalog := NewTrainService(store)
	require.NoError(t, catalog.Load())
	return catalog, store
}

func expressTrain() models.Train {
	return models.Train{
		TrainID:      "T1",
		TrainNo:      "12345",
		Seats:        [][]int{{0, 0}, {0, 0}},
		StationTimes: map[string]string{"a": "08:00", "b": "09:00", "c": "10:00"},
		Stations:     []string{"a", "b", "c"},
	}
}

func TestTrainService_SearchMatchesRouteOrder(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	trains, err := catalog.Search("a", "c")
	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "T1", trains[0].TrainID)

	trains, err = catalog.Search("b", "c")
	require.NoError(t, err)
	assert.Len(t, trains, 1)

	// destination before source on the route
	trains, err = catalog.Search("c", "a")
	require.NoError(t, err)
	assert.Empty(t, trains)
}

func TestTrainService_SearchCaseInsensitive(t *testing.T) {
	train := expressTrain()
	train.Stations = []string{"Delhi", "Agra", "Bhopal"}
	train.StationTimes = map[string]string{"Delhi": "08:00", "Agra": "10:00", "Bhopal": "13:00"}
	catalog, _ := seedCatalog(t, []models.Train{train})

	trains, err := catalog.Search("DELHI", "bhopal")
	require.NoError(t, err)
	assert.Len(t, trains, 1)
}

func TestTrainService_SearchSameStationIsEmpty(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	trains, err := catalog.Search("a", "a")
	require.NoError(t, err)
	assert.Empty(t, trains)
}

func TestTrainService_SearchUnknownStationIsEmpty(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	trains, err := catalog.Search("a", "nowhere")
	require.NoError(t, err)
	assert.Empty(t, trains)
}

func TestTrainService_SearchHasNoSideEffects(t *testing.T) {
	catalog, store := seedCatalog(t, []models.Train{expressTrain()})

	trains, err := catalog.Search("a", "c")
	require.NoError(t, err)
	trains[0].Seats[0][0] = models.SeatOccupied

	current, err := catalog.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, models.SeatFree, current.Seats[0][0])

	onDisk, err := store.LoadTrains()
	require.NoError(t, err)
	assert.Equal(t, models.SeatFree, onDisk[0].Seats[0][0])
}

func TestTrainService_RequiresLoad(t *testing.T) {
	catalog := NewTrainService(localdb.New(t.TempDir()))

	_, err := catalog.Search("a", "b")
	assert.ErrorIs(t, err, status.ErrCatalogNotLoaded)

	_, err = catalog.Get("T1")
	assert.ErrorIs(t, err, status.ErrCatalogNotLoaded)

	err = catalog.AddOrReplace(expressTrain())
	assert.ErrorIs(t, err, status.ErrCatalogNotLoaded)
}

func TestTrainService_LoadFailsOnMissingCollection(t *testing.T) {
	catalog := NewTrainService(localdb.New(t.TempDir()))
	err := catalog.Load()
	require.Error(t, err)

	var storageErr *status.StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.False(t, catalog.Loaded())
}

func TestTrainService_GetIsCaseInsensitive(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	train, err := catalog.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "T1", train.TrainID)

	_, err = catalog.Get("T404")
	assert.ErrorIs(t, err, status.ErrTrainNotFound)
}

func TestTrainService_AddOrReplaceAppendsAndPersists(t *testing.T) {
	catalog, store := seedCatalog(t, []models.Train{expressTrain()})

	newTrain := expressTrain()
	newTrain.TrainID = "T2"
	newTrain.TrainNo = "67890"
	require.NoError(t, catalog.AddOrReplace(newTrain))

	onDisk, err := store.LoadTrains()
	require.NoError(t, err)
	require.Len(t, onDisk, 2)
	assert.Equal(t, "T2", onDisk[1].TrainID)
	assert.Equal(t, int64(1), onDisk[1].Version)
}

func TestTrainService_AddOrReplaceReplacesByIDCaseInsensitive(t *testing.T) {
	catalog, store := seedCatalog(t, []models.Train{expressTrain()})

	updated := expressTrain()
	updated.TrainID = "t1"
	updated.TrainNo = "54321"
	require.NoError(t, catalog.AddOrReplace(updated))

	onDisk, err := store.LoadTrains()
	require.NoError(t, err)
	require.Len(t, onDisk, 1)
	assert.Equal(t, "54321", onDisk[0].TrainNo)

	inMemory, err := catalog.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, "54321", inMemory.TrainNo)
}

func TestTrainService_AddOrReplaceRejectsInvalidTrain(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	bad := expressTrain()
	bad.Stations = []string{"a"}
	bad.StationTimes = map[string]string{"a": "08:00"}
	assert.ErrorIs(t, catalog.AddOrReplace(bad), status.ErrInvalidTrain)
}

func TestTrainService_AddOrReplaceDetectsLostUpdate(t *testing.T) {
	catalog, store := seedCatalog(t, []models.Train{expressTrain()})

	// Another process instance writes the same train behind our back.
	other := NewTrainService(store)
	require.NoError(t, other.Load())
	foreign := expressTrain()
	foreign.Seats[1][1] = models.SeatOccupied
	require.NoError(t, other.AddOrReplace(foreign))

	stale := expressTrain()
	stale.Seats[0][0] = models.SeatOccupied
	err := catalog.AddOrReplace(stale)
	assert.ErrorIs(t, err, status.ErrVersionConflict)

	// The foreign write survived.
	onDisk, loadErr := store.LoadTrains()
	require.NoError(t, loadErr)
	assert.Equal(t, models.SeatOccupied, onDisk[0].Seats[1][1])
	assert.Equal(t, models.SeatFree, onDisk[0].Seats[0][0])
}

func TestTrainService_AddOrReplaceVersionAdvances(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})

	for i := 1; i <= 3; i++ {
		train, err := catalog.Get("T1")
		require.NoError(t, err)
		require.NoError(t, catalog.AddOrReplace(train))

		train, err = catalog.Get("T1")
		require.NoError(t, err)
		assert.Equal(t, int64(i), train.Version)
	}
}

// Readers on other goroutines must never observe an in-flight write; run
// with -race.
func TestTrainService_ConcurrentReadersAndWriter(t *testing.T) {
	catalog, _ := seedCatalog(t, []models.Train{expressTrain()})
	const writes = 50

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			train, err := catalog.Get("T1")
			if !assert.NoError(t, err) {
				return
			}
			train.Seats[0][0] = 1 - train.Seats[0][0]
			if !assert.NoError(t, catalog.AddOrReplace(train)) {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			trains, err := catalog.Search("a", "c")
			assert.NoError(t, err)
			assert.Len(t, trains, 1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			assert.Len(t, catalog.All(), 1)
			_, err := catalog.Get("T1")
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	train, err := catalog.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, int64(writes), train.Version)
}
