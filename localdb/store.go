package localdb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"train-booking/internal/status"
	"train-booking/models"
)

// Store persists the user and train record collections as flat JSON files.
// Each call opens and closes its own file handle; writes go to a temp file
// in the same directory and are renamed into place, so a failed write never
// truncates an existing collection. Unknown fields in stored records are
// ignored on read.
type Store struct {
	TrainsPath string
	UsersPath  string
}

func New(dataDir string) *Store {
	return &Store{
		TrainsPath: filepath.Join(dataDir, "trains.json"),
		UsersPath:  filepath.Join(dataDir, "users.json"),
	}
}

func (s *Store) LoadTrains() ([]models.Train, error) {
	var trains []models.Train
	if err := readCollection(s.TrainsPath, &trains); err != nil {
		return nil, err
	}
	if trains == nil {
		trains = []models.Train{}
	}
	return trains, nil
}

func (s *Store) SaveTrains(trains []models.Train) error {
	return writeCollection(s.TrainsPath, trains)
}

func (s *Store) LoadUsers() ([]models.User, error) {
	var users []models.User
	if err := readCollection(s.UsersPath, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

func (s *Store) SaveUsers(users []models.User) error {
	return writeCollection(s.UsersPath, users)
}

func readCollection(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &status.StorageError{Op: "read", Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &status.StorageError{Op: "decode", Path: path, Err: err}
	}
	return nil
}

func writeCollection(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &status.StorageError{Op: "encode", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &status.StorageError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &status.StorageError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &status.StorageError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &status.StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}
