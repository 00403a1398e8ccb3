package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrRecordNotFound is returned when no record matches the lookup.
var ErrRecordNotFound = errors.New("record not found")

// Collection is a typed JSON document collection under one key prefix.
// It backs the record types that only need put/get/list access
// (complaints, visitors).
type Collection[T any] struct {
	db     *badger.DB
	prefix string
}

// NewCollection creates a collection with the given key prefix, e.g.
// "complaint:".
func NewCollection[T any](db *badger.DB, prefix string) *Collection[T] {
	return &Collection[T]{db: db, prefix: prefix}
}

// Put stores a record under the given ID.
func (c *Collection[T]) Put(ctx context.Context, id string, record *T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(c.prefix+id), data)
	})
}

// Get retrieves a record by ID. Returns ErrRecordNotFound if absent.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var record T
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(c.prefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a record by ID. Deleting an absent record is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(c.prefix + id))
	})
}

// List returns every record in the collection.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	var records []*T
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(c.prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
