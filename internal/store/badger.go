// Package store provides the BadgerDB-backed document store: user records
// with their authz overrides, plus lightweight collections for other
// record types. Documents are stored as JSON values under typed key
// prefixes.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Options configures the underlying BadgerDB instance.
type Options struct {
	// Path is the on-disk directory. Ignored when InMemory is set.
	Path string

	// InMemory runs the store without persistence. Used in tests.
	InMemory bool
}

// Open opens the BadgerDB instance backing all collections.
// The caller owns the returned handle and must Close it.
func Open(opts Options) (*badger.DB, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's own logger is noisy at INFO; route nothing through it and
	// rely on our own logging around store operations.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return db, nil
}
