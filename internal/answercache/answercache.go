// Package answercache implements the per-client retransmit-suppression
// cache: a bounded memo of the last complete reply frame sent to each
// client MAC, so a retransmitted request (same MAC, same sequence byte)
// gets the byte-identical previous reply instead of re-invoking a
// non-idempotent handler.
package answercache

import "time"

// numSlots is the fixed cache size: one active client per slot.
const numSlots = 16

// maxFrameLen bounds the stored reply frame.
const maxFrameLen = 1520

type entry struct {
	occupied  bool
	mac       [6]byte
	seq       byte
	frame     [maxFrameLen]byte
	frameLen  int
	timestamp time.Time
}

// Cache is the process-scoped singleton answer cache. Not safe for
// concurrent use; the single-threaded event loop needs no locking.
type Cache struct {
	entries [numSlots]entry
	now     func() time.Time
}

// New creates an empty Cache. now is injected for deterministic eviction
// ordering in tests; production callers pass time.Now.
func New(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{now: now}
}

// Lookup returns the cached reply for (mac, seq), if the entry for this MAC
// exists and its stored sequence byte matches. Slots are keyed on MAC
// equality alone: a stale sequence byte in the slot is simply a miss (the
// request is novel and must be dispatched).
func (c *Cache) Lookup(mac [6]byte, seq byte) ([]byte, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if !e.occupied || e.mac != mac {
			continue
		}
		if e.seq != seq || e.frameLen == 0 {
			return nil, false
		}
		return e.frame[:e.frameLen], true
	}
	return nil, false
}

// Store records the reply frame sent to mac for sequence byte seq,
// overwriting any existing entry for this MAC, or replacing the
// oldest-timestamp slot when the MAC is new.
//
// A silently ignored request stores frame == nil (or empty): the entry's
// length field is zeroed so a later identical retransmit will not match it
// as a cache hit.
func (c *Cache) Store(mac [6]byte, seq byte, frame []byte) {
	if len(frame) > maxFrameLen {
		frame = frame[:maxFrameLen]
	}

	idx := c.indexForMAC(mac)
	if idx < 0 {
		idx = c.oldestSlot()
	}

	e := &c.entries[idx]
	e.occupied = true
	e.mac = mac
	e.seq = seq
	e.frameLen = copy(e.frame[:], frame)
	e.timestamp = c.now()
}

func (c *Cache) indexForMAC(mac [6]byte) int {
	for i := range c.entries {
		if c.entries[i].occupied && c.entries[i].mac == mac {
			return i
		}
	}
	return -1
}

// oldestSlot returns the lowest-timestamp slot, preferring any unoccupied
// slot first (an unoccupied slot's zero-value timestamp naturally sorts
// oldest, but being explicit here avoids relying on that incidentally).
func (c *Cache) oldestSlot() int {
	oldest := 0
	for i := range c.entries {
		if !c.entries[i].occupied {
			return i
		}
		if c.entries[i].timestamp.Before(c.entries[oldest].timestamp) {
			oldest = i
		}
	}
	return oldest
}
