package services

import (
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"train-booking/internal/status"
	"train-booking/localdb"
	"train-booking/models"
	"train-booking/utils"
)

// UserService is the identity store: the set of registered users and their
// credential hashes, persisted as one flat record collection. All access
// goes through the collection mutex; lookups return detached copies, so
// requests handled on other goroutines never observe an in-flight mutation.
type UserService struct {
	store *localdb.Store

	mu     sync.RWMutex
	users  []models.User
	loaded bool
}

func NewUserService(store *localdb.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Load() error {
	users, err := s.store.LoadUsers()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.users = users
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *UserService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// FindByUsername returns a copy of the matching user record.
func (s *UserService) FindByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Username == username {
			return s.users[i].Clone(), true
		}
	}
	return models.User{}, false
}

func (s *UserService) FindByID(userID string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].UserID == userID {
			return s.users[i].Clone(), true
		}
	}
	return models.User{}, false
}

// SignUp registers a new user. The username must be unique and contain no
// whitespace; the password is stored only as a bcrypt hash. The collection
// is persisted before the call returns; if the write fails the new user is
// dropped again so a retry starts clean.
func (s *UserService) SignUp(username, password string) (models.User, error) {
	if username == "" || strings.ContainsFunc(username, unicode.IsSpace) {
		return models.User{}, status.ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.User{}, status.ErrUsersNotLoaded
	}
	for i := range s.users {
		if s.users[i].Username == username {
			return models.User{}, status.ErrDuplicateUsername
		}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:       username,
		UserID:         uuid.New().String(),
		HashedPassword: hash,
		TicketsBooked:  []models.Ticket{},
	}
	s.users = append(s.users, user)

	if err := s.store.SaveUsers(s.users); err != nil {
		s.users = s.users[:len(s.users)-1]
		return models.User{}, err
	}
	return user.Clone(), nil
}

// Login verifies the credentials and returns a copy of the matching user.
func (s *UserService) Login(username, password string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.User{}, status.ErrUsersNotLoaded
	}
	for i := range s.users {
		if s.users[i].Username == username {
			if !utils.CheckPassword(password, s.users[i].HashedPassword) {
				break
			}
			return s.users[i].Clone(), nil
		}
	}
	return models.User{}, status.ErrInvalidCredentials
}

// Update runs fn against the stored record for userID and persists the
// whole collection, all under the collection write lock. When fn or the
// write fails the record is restored first, so callers see all-or-nothing
// updates and memory never drifts from disk.
func (s *UserService) Update(userID string, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return status.ErrUsersNotLoaded
	}
	for i := range s.users {
		if s.users[i].UserID != userID {
			continue
		}
		prev := s.users[i].Clone()
		if err := fn(&s.users[i]); err != nil {
			s.users[i] = prev
			return err
		}
		if err := s.store.SaveUsers(s.users); err != nil {
			s.users[i] = prev
			return err
		}
		return nil
	}
	return status.ErrUserNotFound
}

// Persist writes the full user collection through to disk.
func (s *UserService) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return status.ErrUsersNotLoaded
	}
	return s.store.SaveUsers(s.users)
}
