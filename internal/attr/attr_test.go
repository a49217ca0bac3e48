package attr

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/etherdfs/ethersrv/internal/nametrans"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 10, 30, 37, 0, time.UTC),
		time.Date(2107, 12, 31, 23, 59, 58, 0, time.UTC),
	}
	for _, tc := range cases {
		packed := PackDOSTime(tc)
		got := UnpackDOSTime(packed)
		want := tc.Add(-time.Duration(tc.Second()%2) * time.Second)
		require.True(t, got.Equal(want), "case %v: got %v want %v", tc, got, want)
	}
}

func TestPackDOSTimeKnownValue(t *testing.T) {
	// 2025-1980=45 into bits 31..25, month 1, day 15, 10:30:00.
	tc := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	require.Equal(t, uint32(0x5A2F53C0), PackDOSTime(tc))
}

func TestStatDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/games", 0o755))

	fattr, _, fsize, err := Stat(fsys, "/root/games", false)
	require.NoError(t, err)
	require.Equal(t, byte(nametrans.AttrDir), fattr)
	require.Equal(t, uint32(0), fsize)
}

func TestStatRegularFileSynthesizesArchive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/root/readme.txt", []byte("hello world"), 0o644))

	fattr, _, fsize, err := Stat(fsys, "/root/readme.txt", false)
	require.NoError(t, err)
	require.Equal(t, byte(nametrans.AttrArchive), fattr)
	require.Equal(t, uint32(11), fsize)
}

func TestStatWriteProtectedFileGetsReadOnlyBit(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/root/locked.txt", []byte("x"), 0o644))
	require.NoError(t, fsys.Chmod("/root/locked.txt", 0o444))

	fattr, _, _, err := Stat(fsys, "/root/locked.txt", false)
	require.NoError(t, err)
	require.Equal(t, byte(nametrans.AttrArchive|nametrans.AttrReadOnly), fattr)
}

func TestStatMissingReturnsErrAttr(t *testing.T) {
	fsys := afero.NewMemMapFs()
	fattr, _, _, err := Stat(fsys, "/root/nope.txt", false)
	require.Error(t, err)
	require.Equal(t, byte(ErrAttr), fattr)
}

func TestSetAttrNoopOnNonFAT(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/root/readme.txt", []byte("hi"), 0o644))
	require.NoError(t, SetAttr(fsys, "/root/readme.txt", 0x01, false))
}
