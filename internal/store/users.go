package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

// Key prefixes for user storage.
const (
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
)

// ErrUserNotFound is returned when no user record matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserStore persists user documents in BadgerDB with a secondary email
// index. Override writes are last-write-wins: concurrent admin edits to
// the same user's override are not merged. Admin edits to one user are
// serialized by the surrounding UI, so the race is accepted.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a user store over an open BadgerDB handle.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

// Put stores a user document, replacing any existing document with the
// same ID and updating the email index.
func (s *UserStore) Put(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID is required")
	}
	user.UpdatedAt = time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(userKeyPrefix+user.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if user.Email != "" {
			if err := txn.Set([]byte(userEmailKeyPrefix+user.Email), []byte(user.ID)); err != nil {
				return fmt.Errorf("set email index: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a user document by ID.
// Returns ErrUserNotFound if no document exists.
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user document through the email index.
// Returns ErrUserNotFound if no document exists.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailKeyPrefix + email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get email index: %w", err)
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateOverride replaces only the authz override on a user document,
// leaving every other field untouched. nil clears the override back to
// pure role defaults. Last write wins; there is no optimistic-concurrency
// check.
func (s *UserStore) UpdateOverride(ctx context.Context, id string, doc *models.AuthzDoc) error {
	return s.updateUser(id, func(user *models.User) {
		user.Authz = doc
	})
}

// UpdatePinnedTabs replaces only the pinned-tabs field.
func (s *UserStore) UpdatePinnedTabs(ctx context.Context, id string, tabs []string) error {
	return s.updateUser(id, func(user *models.User) {
		user.PinnedTabs = tabs
	})
}

// UpdateRole replaces only the role field. The caller is responsible for
// invalidating the user's sessions: a role change requires
// re-authentication.
func (s *UserStore) UpdateRole(ctx context.Context, id, role string) error {
	return s.updateUser(id, func(user *models.User) {
		user.Role = role
	})
}

// updateUser applies a field mutation inside one read-modify-write
// transaction so unrelated fields written by the same transaction are
// preserved. Writes racing between transactions remain last-write-wins.
func (s *UserStore) updateUser(id string, mutate func(*models.User)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		var user models.User
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		}); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}

		mutate(&user)
		user.UpdatedAt = time.Now()

		data, err := json.Marshal(&user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ListByRole returns every user with the given role, or all users when
// role is empty. Intended for the small admin listing surfaces, not bulk
// export.
func (s *UserStore) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	var users []*models.User
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return fmt.Errorf("unmarshal user: %w", err)
			}
			if role == "" || user.Role == role {
				u := user
				users = append(users, &u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
