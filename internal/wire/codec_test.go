package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRawFrame(t *testing.T, seq, drive, subfunc byte, withCksum bool, payload []byte) []byte {
	t.Helper()
	total := HeaderLen + len(payload)
	b := make([]byte, total)
	copy(b[0:6], []byte{0x02, 0, 0, 0, 0, 1})
	copy(b[6:12], []byte{0x02, 0, 0, 0, 0, 2})
	binary.BigEndian.PutUint16(b[12:14], EtherType)
	binary.LittleEndian.PutUint16(b[52:54], uint16(total))
	ver := byte(ProtocolVersion)
	if withCksum {
		ver |= checksumFlag
	}
	b[56] = ver
	b[57] = seq
	b[58] = drive & driveMask
	b[59] = subfunc
	copy(b[60:], payload)
	if withCksum {
		sum := bsdChecksum(b[56:])
		binary.LittleEndian.PutUint16(b[54:56], sum)
	}
	return b
}

func TestBSDChecksumRotateAdd(t *testing.T) {
	require.Equal(t, uint16(0), bsdChecksum(nil))
	require.Equal(t, uint16(1), bsdChecksum([]byte{1}))
	// rotate-right-1 of 1 is 0x8000, +2 = 0x8002
	require.Equal(t, uint16(0x8002), bsdChecksum([]byte{1, 2}))
}

func TestDecodeWellFormed(t *testing.T) {
	raw := buildRawFrame(t, 0x11, 2, 0x00, false, nil)
	f, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, byte(0x11), f.Seq)
	require.Equal(t, byte(2), f.Drive)
	require.Equal(t, byte(0x00), f.Subfunc)
	require.False(t, f.HasCksum)
}

func TestDecodeWithChecksum(t *testing.T) {
	raw := buildRawFrame(t, 0x42, 2, 0x17, true, []byte("PATH"))
	f, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, f.HasCksum)
	require.Equal(t, []byte("PATH"), f.Payload)
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	raw := buildRawFrame(t, 0x42, 2, 0x17, true, []byte("PATH"))
	raw[54] ^= 0xFF // corrupt stored checksum
	_, err := Decode(raw)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := Decode(make([]byte, 59))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	raw := buildRawFrame(t, 0x11, 2, 0x00, false, nil)
	raw[56] = 1 // version 1, not 2
	_, err := Decode(raw)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeTruncatesToDeclaredLength(t *testing.T) {
	raw := buildRawFrame(t, 0x11, 2, 0x00, false, []byte("hello world"))
	// pad extra trailing garbage as if the link layer padded the frame
	raw = append(raw, 0, 0, 0, 0)
	f, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), f.Payload)
}

func TestBuildReplyInvariants(t *testing.T) {
	raw := buildRawFrame(t, 0x42, 2, 0x17, true, []byte("PATH"))
	req, err := Decode(raw)
	require.NoError(t, err)

	serverMAC := [6]byte{0x02, 0, 0, 0, 0, 0x99}
	reply := BuildReply(req, serverMAC, 5, []byte{0xAA})

	// dst = client's src MAC
	require.Equal(t, req.SrcMAC[:], reply[0:6])
	// src = server MAC
	require.Equal(t, serverMAC[:], reply[6:12])
	// opaque header bytes pass through untouched
	require.Equal(t, raw[14:52], reply[14:52])
	// sequence byte preserved
	require.Equal(t, req.Seq, reply[57])
	// AX rides at bytes 58..59
	require.Equal(t, uint16(5), binary.LittleEndian.Uint16(reply[58:60]))
	// payload follows the header
	require.Equal(t, byte(0xAA), reply[60])
	// declared frame length covers header + payload
	require.Equal(t, uint16(61), binary.LittleEndian.Uint16(reply[52:54]))

	// checksum must validate since request had the flag set
	require.NotEqual(t, byte(0), reply[56]&checksumFlag)
	sum := bsdChecksum(reply[56:])
	require.Equal(t, sum, binary.LittleEndian.Uint16(reply[54:56]))
}

func TestBuildReplyNoChecksumWhenRequestHadNone(t *testing.T) {
	raw := buildRawFrame(t, 0x01, 2, 0x00, false, nil)
	req, err := Decode(raw)
	require.NoError(t, err)

	reply := BuildReply(req, [6]byte{1, 2, 3, 4, 5, 6}, 0, nil)
	require.Equal(t, byte(0), reply[56]&checksumFlag)
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(reply[54:56]))
}

func TestDecodeRejectsWrongEtherType(t *testing.T) {
	raw := buildRawFrame(t, 0x11, 2, 0x00, false, nil)
	binary.BigEndian.PutUint16(raw[12:14], 0x0800)
	_, err := Decode(raw)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestPathStringStopsAtNULOrEnd(t *testing.T) {
	r := NewReader([]byte("README.TXT"))
	require.Equal(t, "README.TXT", r.PathString())
	require.Equal(t, 0, r.Remaining())

	r = NewReader(append([]byte("A.TXT"), 0, 'x'))
	require.Equal(t, "A.TXT", r.PathString())
}
