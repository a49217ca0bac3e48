package journal

import "encoding/binary"

// Key Namespace
// =============
//
// Data Type           Prefix   Key Format              Value
// slot -> path         "s:"    s:<slot uint16 BE>       host path (UTF-8 bytes)
//
// Big-endian encoding keeps slot keys in numeric order under badger's
// lexicographic iteration, so a future range-scan (e.g. a journal-dump
// diagnostic) walks slots in ascending order for free.

var slotPrefix = []byte("s:")

func slotKey(slot uint16) []byte {
	key := make([]byte, 4)
	copy(key, slotPrefix)
	binary.BigEndian.PutUint16(key[2:], slot)
	return key
}

func slotFromKey(key []byte) (uint16, bool) {
	if len(key) != 4 || key[0] != 's' || key[1] != ':' {
		return 0, false
	}
	return binary.BigEndian.Uint16(key[2:]), true
}
