package answercache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var macA = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
var macB = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x03}

func TestStoreThenLookupHit(t *testing.T) {
	c := New(nil)
	c.Store(macA, 0x42, []byte("reply-one"))

	got, ok := c.Lookup(macA, 0x42)
	require.True(t, ok)
	require.Equal(t, []byte("reply-one"), got)
}

func TestLookupMissOnDifferentSeq(t *testing.T) {
	c := New(nil)
	c.Store(macA, 0x42, []byte("reply-one"))

	_, ok := c.Lookup(macA, 0x43)
	require.False(t, ok)
}

func TestLookupMissOnUnknownMAC(t *testing.T) {
	c := New(nil)
	c.Store(macA, 0x42, []byte("reply-one"))

	_, ok := c.Lookup(macB, 0x42)
	require.False(t, ok)
}

func TestZeroLengthStoreNeverHits(t *testing.T) {
	c := New(nil)
	c.Store(macA, 0x42, nil)

	_, ok := c.Lookup(macA, 0x42)
	require.False(t, ok)
}

func TestEvictsOldestTimestampOnMiss(t *testing.T) {
	clock := time.Unix(0, 0)
	c := New(func() time.Time { return clock })

	var macs [numSlots + 1][6]byte
	for i := range macs {
		macs[i] = [6]byte{0x02, 0, 0, 0, 0, byte(i)}
		c.Store(macs[i], 0x01, []byte("x"))
		clock = clock.Add(time.Second)
	}

	// The first MAC's entry should have been evicted to make room for the
	// (numSlots+1)th.
	_, ok := c.Lookup(macs[0], 0x01)
	require.False(t, ok)

	_, ok = c.Lookup(macs[numSlots], 0x01)
	require.True(t, ok)
}

func TestReplayIsByteIdentical(t *testing.T) {
	c := New(nil)
	reply := []byte{1, 2, 3, 4, 5}
	c.Store(macA, 0x42, reply)

	got1, ok1 := c.Lookup(macA, 0x42)
	got2, ok2 := c.Lookup(macA, 0x42)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, got1, got2)
}
