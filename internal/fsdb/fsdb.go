// Package fsdb implements the handle/directory cache: a 65536-slot arena
// mapping a host path to a stable 16-bit "start sector" token, reused both
// as the wire-protocol file handle and as the directory token for
// FINDFIRST/FINDNEXT pagination.
package fsdb

import (
	"time"

	"github.com/etherdfs/ethersrv/internal/attr"
)

// SlotID is the 16-bit wire handle / directory token. NoSlot (0xFFFF) is
// reserved as the sentinel meaning "no slot".
type SlotID uint16

// NoSlot is the reserved sentinel value.
const NoSlot SlotID = 0xFFFF

// numSlots is the fixed arena size: every value a 16-bit handle can take.
const numSlots = 1 << 16

// idleTimeout is the reclaim threshold: entries idle longer than this are
// opportunistically freed during allocation scans.
const idleTimeout = time.Hour

// slot is one entry in the arena. An empty path marks the slot empty.
type slot struct {
	path     string
	lastUsed time.Time
	snapshot []attr.FileProps
}

// Arena is the process-scoped singleton handle/directory cache. It is not
// safe for concurrent use; the single-threaded event loop needs no
// locking.
type Arena struct {
	slots    [numSlots]slot
	byPath   map[string]SlotID
	now      func() time.Time
	freeHint int // next index to try when scanning for an empty slot

	// onAssign/onEvict are the optional handle-journal hooks. Left nil,
	// they cost nothing: a disabled journal never touches the arena.
	onAssign func(SlotID, string)
	onEvict  func(SlotID)
}

// New creates an empty Arena. now is injected for deterministic eviction
// tests; production callers pass time.Now.
func New(now func() time.Time) *Arena {
	if now == nil {
		now = time.Now
	}
	return &Arena{
		byPath: make(map[string]SlotID),
		now:    now,
	}
}

// Intern returns the existing slot for path, refreshing its last-used time,
// or allocates a new one: first empty slot found, falling back to
// LRU-eviction of the oldest occupied slot if the arena is full. Eviction
// drops any cached directory snapshot.
func (a *Arena) Intern(path string) SlotID {
	a.reclaimIdle()

	if id, ok := a.byPath[path]; ok {
		a.slots[id].lastUsed = a.now()
		return id
	}

	id, ok := a.firstEmpty()
	if !ok {
		id = a.oldest()
		a.evict(id)
	}

	a.slots[id] = slot{path: path, lastUsed: a.now()}
	a.byPath[path] = id
	if a.onAssign != nil {
		a.onAssign(id, path)
	}
	return id
}

// SetPersistence installs the handle-journal hooks: onAssign is called
// whenever a path is newly interned into a slot, onEvict whenever a slot is
// freed (idle reclaim or LRU eviction). Either may be nil. Not safe to call concurrently with other Arena methods, but the
// single-threaded event loop never needs to.
func (a *Arena) SetPersistence(onAssign func(SlotID, string), onEvict func(SlotID)) {
	a.onAssign = onAssign
	a.onEvict = onEvict
}

// Seed pre-populates the arena directly from a persisted (slot -> path)
// mapping at startup, so a restarted server can reuse the 16-bit handles a
// client already cached. Entries for
// out-of-range slots or slots already occupied by the time Seed runs are
// skipped. Seed does not invoke the persistence hooks: it is restoring
// state the journal already has, not creating new state to journal.
func (a *Arena) Seed(mappings map[uint16]string) {
	for rawID, path := range mappings {
		id := SlotID(rawID)
		if id == NoSlot || path == "" {
			continue
		}
		if a.slots[id].path != "" {
			continue
		}
		if _, exists := a.byPath[path]; exists {
			continue
		}
		a.slots[id] = slot{path: path, lastUsed: a.now()}
		a.byPath[path] = id
	}
}

// Lookup returns the path held in slot id, or ("", false) if the slot is
// empty or out of range. A successful lookup refreshes the last-used
// time.
func (a *Arena) Lookup(id SlotID) (string, bool) {
	if id == NoSlot || int(id) >= numSlots {
		return "", false
	}
	s := &a.slots[id]
	if s.path == "" {
		return "", false
	}
	s.lastUsed = a.now()
	return s.path, true
}

// Snapshot returns the directory snapshot cached on slot id, if any.
func (a *Arena) Snapshot(id SlotID) ([]attr.FileProps, bool) {
	if id == NoSlot || int(id) >= numSlots {
		return nil, false
	}
	s := &a.slots[id]
	if s.path == "" || s.snapshot == nil {
		return nil, false
	}
	return s.snapshot, true
}

// SetSnapshot attaches a freshly generated directory snapshot to slot id.
func (a *Arena) SetSnapshot(id SlotID, entries []attr.FileProps) {
	if id == NoSlot || int(id) >= numSlots {
		return
	}
	a.slots[id].snapshot = entries
}

// ClearSnapshot discards the cached directory snapshot on slot id without
// evicting the slot itself, used when a FINDNEXT signals rewind (position
// 0). fsnotify-based invalidation uses ClearSnapshotForPath instead.
func (a *Arena) ClearSnapshot(id SlotID) {
	if id == NoSlot || int(id) >= numSlots {
		return
	}
	a.slots[id].snapshot = nil
}

// ClearSnapshotForPath discards the cached directory snapshot for the slot
// currently interned at path, if any, without evicting the slot itself.
// Used by fsnotify-based invalidation, which observes host paths, not slot
// IDs.
func (a *Arena) ClearSnapshotForPath(path string) {
	if id, ok := a.byPath[path]; ok {
		a.slots[id].snapshot = nil
	}
}

func (a *Arena) firstEmpty() (SlotID, bool) {
	n := numSlots
	for i := 0; i < n; i++ {
		idx := (a.freeHint + i) % n
		if idx == int(NoSlot) {
			continue
		}
		if a.slots[idx].path == "" {
			a.freeHint = (idx + 1) % n
			return SlotID(idx), true
		}
	}
	return 0, false
}

// oldest returns the slot with the smallest last-used time, the LRU
// fallback when no slot is free.
func (a *Arena) oldest() SlotID {
	var oldestID SlotID
	var oldestTime time.Time
	first := true
	for i := 0; i < numSlots; i++ {
		if i == int(NoSlot) || a.slots[i].path == "" {
			continue
		}
		if first || a.slots[i].lastUsed.Before(oldestTime) {
			oldestID = SlotID(i)
			oldestTime = a.slots[i].lastUsed
			first = false
		}
	}
	return oldestID
}

// reclaimIdle opportunistically frees entries idle longer than
// idleTimeout.
func (a *Arena) reclaimIdle() {
	now := a.now()
	for i := 0; i < numSlots; i++ {
		if i == int(NoSlot) || a.slots[i].path == "" {
			continue
		}
		if now.Sub(a.slots[i].lastUsed) > idleTimeout {
			a.evict(SlotID(i))
		}
	}
}

func (a *Arena) evict(id SlotID) {
	path := a.slots[id].path
	if path == "" {
		return
	}
	delete(a.byPath, path)
	a.slots[id] = slot{}
	if a.onEvict != nil {
		a.onEvict(id)
	}
}

// Len reports the number of occupied slots, for tests and diagnostics.
func (a *Arena) Len() int {
	return len(a.byPath)
}
