package localdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-booking/internal/status"
	"train-booking/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir())
}

func TestStore_TrainsRoundTrip(t *testing.T) {
	store := testStore(t)

	trains := []models.Train{
		{
			TrainID:      "T1",
			TrainNo:      "12345",
			Seats:        [][]int{{0, 1}, {0, 0}},
			StationTimes: map[string]string{"a": "08:00", "b": "09:00"},
			Stations:     []string{"a", "b"},
			Version:      2,
		},
		{
			TrainID:  "T2",
			TrainNo:  "67890",
			Seats:    [][]int{{1}},
			Stations: []string{"x", "y", "z"},
		},
	}

	require.NoError(t, store.SaveTrains(trains))

	loaded, err := store.LoadTrains()
	require.NoError(t, err)
	assert.Equal(t, trains, loaded)
}

func TestStore_UsersRoundTrip(t *testing.T) {
	store := testStore(t)

	users := []models.User{
		{
			Username:       "bob",
			UserID:         "u1",
			HashedPassword: "hash",
			TicketsBooked: []models.Ticket{
				{
					TicketID:     "TKT-1",
					UserID:       "u1",
					Source:       "a",
					Destination:  "b",
					DateOfTravel: "2026-01-15",
					Train:        models.Train{TrainID: "T1", Stations: []string{"a", "b"}},
				},
			},
		},
	}

	require.NoError(t, store.SaveUsers(users))

	loaded, err := store.LoadUsers()
	require.NoError(t, err)
	assert.Equal(t, users, loaded)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := testStore(t)

	_, err := store.LoadTrains()
	require.Error(t, err)

	var storageErr *status.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "read", storageErr.Op)
}

func TestStore_LoadMalformedFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.TrainsPath, []byte("{not json"), 0o644))

	_, err := store.LoadTrains()
	require.Error(t, err)

	var storageErr *status.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "decode", storageErr.Op)
}

func TestStore_LoadTolerantOfUnknownFields(t *testing.T) {
	store := testStore(t)
	data := `[{"train_id":"T1","train_no":"1","stations":["a","b"],"seats":[[0]],"operator":"legacy"}]`
	require.NoError(t, os.WriteFile(store.TrainsPath, []byte(data), 0o644))

	trains, err := store.LoadTrains()
	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "T1", trains[0].TrainID)
}

func TestStore_LoadUsersNormalizesTicketList(t *testing.T) {
	store := testStore(t)
	data := `[{"username":"bob","user_id":"u1","hashed_password":"hash"}]`
	require.NoError(t, os.WriteFile(store.UsersPath, []byte(data), 0o644))

	users, err := store.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].TicketsBooked)
	assert.Empty(t, users[0].TicketsBooked)
}

func TestStore_SaveFailureLeavesExistingFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SaveTrains([]models.Train{{TrainID: "T1", Stations: []string{"a", "b"}}}))

	// Redirect writes at a path whose parent does not exist
	goodPath := store.TrainsPath
	store.TrainsPath = filepath.Join(filepath.Dir(goodPath), "missing", "trains.json")
	err := store.SaveTrains([]models.Train{{TrainID: "T2"}})
	require.Error(t, err)

	var storageErr *status.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "write", storageErr.Op)

	store.TrainsPath = goodPath
	trains, err := store.LoadTrains()
	require.NoError(t, err)
	require.Len(t, trains, 1)
	assert.Equal(t, "T1", trains[0].TrainID)
}

func TestStore_EmptyCollections(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.TrainsPath, []byte("null"), 0o644))
	require.NoError(t, os.WriteFile(store.UsersPath, []byte("[]"), 0o644))

	trains, err := store.LoadTrains()
	require.NoError(t, err)
	assert.NotNil(t, trains)
	assert.Empty(t, trains)

	users, err := store.LoadUsers()
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
