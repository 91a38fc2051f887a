package counters

import (
	"context"
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// counterTTL keeps entries long enough to cover the weekly window with
// room to spare; after that the store cleans itself up.
const counterTTL = 15 * 24 * time.Hour

// Store holds rate-limit counters in an embedded Badger database.
// Increments run inside serializable transactions, so concurrent
// admissions for the same user never double-count.
type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening counter store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the current value of a counter and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (int64, bool, error) {
	var n int64
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		n, err = strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt counter %s: %w", key, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("reading counter %s: %w", key, err)
	}
	return n, found, nil
}

// Incr atomically increments a counter and returns the new value.
// Conflicting transactions are retried.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	for {
		var n int64
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err == nil {
				val, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				n, err = strconv.ParseInt(string(val), 10, 64)
				if err != nil {
					return fmt.Errorf("corrupt counter %s: %w", key, err)
				}
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			n++
			entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(n, 10))).WithTTL(counterTTL)
			return txn.SetEntry(entry)
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("incrementing counter %s: %w", key, err)
		}
		return n, nil
	}
}
