// Package journal implements the optional, disabled-by-default handle
// journal: a badger-backed persistence of the (slot id -> host path)
// mapping the FSDB arena holds in memory, so a restarted server can
// pre-seed its slot table and reuse the 16-bit handles a client already
// cached.
//
// Flushing happens off the event-loop goroutine: Record enqueues an update
// onto a buffered channel drained by one dedicated writer goroutine. The
// writer touches no shared FSDB/cache state, only the badger handle, so it
// adds no locking requirement on the event loop's data.
package journal

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// queueDepth bounds how many pending slot updates Record can buffer before
// it starts dropping writes. The journal is a best-effort optimization, not
// a durability guarantee, so a full queue degrades by dropping rather than
// blocking the event loop.
const queueDepth = 256

type update struct {
	slot    uint16
	path    string
	deleted bool
}

// Store is the persistent handle journal. A nil *Store is valid and every
// method on it is a no-op, so callers can pass a disabled journal through
// unconditionally rather than branching on whether it's enabled.
type Store struct {
	db      *badger.DB
	ttl     time.Duration
	updates chan update
	closed  chan struct{}
}

// Open opens (creating if necessary) a badger database at path and starts
// its background writer goroutine. A non-zero ttl expires journal entries
// that haven't been re-recorded within it, mirroring the arena's own idle
// reclaim so a long-dead handle isn't resurrected across a restart.
// Callers must call Close on shutdown.
func Open(path string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	s := &Store{
		db:      db,
		ttl:     ttl,
		updates: make(chan update, queueDepth),
		closed:  make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Record enqueues the mapping from slot to path for asynchronous
// persistence. It never blocks: if the writer goroutine is backed up, the
// update is dropped and will simply be re-recorded the next time the slot
// is touched.
func (s *Store) Record(slot uint16, path string) {
	if s == nil {
		return
	}
	select {
	case s.updates <- update{slot: slot, path: path}:
	default:
	}
}

// Forget enqueues removal of slot's journal entry, mirroring fsdb's
// eviction path so a reused or freed slot doesn't resurrect a stale
// path on the next restart.
func (s *Store) Forget(slot uint16) {
	if s == nil {
		return
	}
	select {
	case s.updates <- update{slot: slot, deleted: true}:
	default:
	}
}

// LoadAll returns every (slot, path) mapping currently persisted, for the
// FSDB arena to pre-seed at startup. A nil *Store returns an empty map.
func (s *Store) LoadAll() (map[uint16]string, error) {
	out := make(map[uint16]string)
	if s == nil {
		return out, nil
	}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(slotPrefix); it.ValidForPrefix(slotPrefix); it.Next() {
			item := it.Item()
			slot, ok := slotFromKey(item.KeyCopy(nil))
			if !ok {
				continue
			}
			if err := item.Value(func(val []byte) error {
				out[slot] = string(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("journal: load: %w", err)
	}
	return out, nil
}

// Close stops the writer goroutine and closes the underlying database. A
// nil *Store is a no-op.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	close(s.updates)
	<-s.closed
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}

// run drains the update queue and applies each change to badger, one
// transaction per update. It exits once updates is closed and drained.
func (s *Store) run() {
	defer close(s.closed)
	for u := range s.updates {
		var err error
		if u.deleted {
			err = s.db.Update(func(txn *badger.Txn) error {
				delErr := txn.Delete(slotKey(u.slot))
				if errors.Is(delErr, badger.ErrKeyNotFound) {
					return nil
				}
				return delErr
			})
		} else {
			err = s.db.Update(func(txn *badger.Txn) error {
				e := badger.NewEntry(slotKey(u.slot), []byte(u.path))
				if s.ttl > 0 {
					e = e.WithTTL(s.ttl)
				}
				return txn.SetEntry(e)
			})
		}
		_ = err // best-effort: a failed journal write never aborts the server
	}
}
