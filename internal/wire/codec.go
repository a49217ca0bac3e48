// Package wire implements the EtherDFS frame codec: parsing and building the
// raw-Ethernet request/response frames exchanged with DOS clients.
//
// Layout (little-endian multi-byte fields unless noted; offsets into the raw
// Ethernet frame):
//
//	 0   6   destination MAC
//	 6   6   source MAC
//	12   2   EtherType 0xEDF5 (big-endian, per Ethernet)
//	14  38   opaque payload header bytes (pass-through)
//	52   2   total EDF5 frame length (LE); 0 means "use link length"
//	54   2   BSD checksum (LE), valid iff bit 7 of byte 56 is set
//	56   1   bit 0..6 protocol version (must equal 2); bit 7 checksum-present
//	57   1   per-client sequence byte (opaque, echoed in reply)
//	58   1   low 5 bits drive number (0=A..25=Z); high 3 bits request flags
//	59   1   subfunction (AL)
//	60  N    request-specific payload
package wire

import (
	"encoding/binary"
	"errors"
)

const (
	// EtherType is the EtherDFS EtherType, big-endian on the wire.
	EtherType = 0xEDF5

	// ProtocolVersion is the only protocol version this codec understands.
	ProtocolVersion = 2

	// HeaderLen is the fixed EtherDFS header length, including the Ethernet
	// header. Request payload starts at this offset.
	HeaderLen = 60

	offDstMAC     = 0
	offSrcMAC     = 6
	offEtherType  = 12
	offOpaque     = 14
	opaqueLen     = 38
	offFrameLen   = 52
	offChecksum   = 54
	offVersion    = 56
	offSeq        = 57
	offDriveFlags = 58
	offSubfunc    = 59

	// offAX is where the DOS status word rides in replies, overwriting the
	// request's drive and subfunction bytes.
	offAX = 58

	versionMask  = 0x7F
	checksumFlag = 0x80

	driveMask = 0x1F
	flagsMask = 0xE0
)

// ErrMalformed is returned (and the frame must be silently dropped, never
// replied to) whenever a received frame fails the well-formedness check.
var ErrMalformed = errors.New("wire: malformed frame")

// Frame is a decoded EtherDFS request.
type Frame struct {
	DstMAC   [6]byte
	SrcMAC   [6]byte
	Opaque   [opaqueLen]byte
	HasCksum bool
	Seq      byte
	Drive    byte // 0=A..25=Z
	Flags    byte // high 3 bits of byte 58
	Subfunc  byte
	Payload  []byte
}

// bsdChecksum computes the 16-bit rotate-add checksum: start at 0, for
// each byte rotate the accumulator right by 1 bit then add the byte,
// modulo 2^16.
func bsdChecksum(b []byte) uint16 {
	var acc uint16
	for _, c := range b {
		acc = (acc >> 1) | (acc << 15)
		acc += uint16(c)
	}
	return acc
}

// Decode parses a raw link-layer frame into a Frame. It returns
// ErrMalformed for any frame that fails validation; callers must drop such
// frames silently (no reply, no cache update).
func Decode(link []byte) (*Frame, error) {
	if len(link) < HeaderLen {
		return nil, ErrMalformed
	}
	if binary.BigEndian.Uint16(link[offEtherType:offEtherType+2]) != EtherType {
		return nil, ErrMalformed
	}

	n := len(link)
	declared := binary.LittleEndian.Uint16(link[offFrameLen : offFrameLen+2])
	if declared != 0 {
		if int(declared) < HeaderLen || int(declared) > n {
			return nil, ErrMalformed
		}
		n = int(declared)
		link = link[:n]
	}

	verByte := link[offVersion]
	if verByte&versionMask != ProtocolVersion {
		return nil, ErrMalformed
	}
	hasCksum := verByte&checksumFlag != 0

	if hasCksum {
		stored := binary.LittleEndian.Uint16(link[offChecksum : offChecksum+2])
		if bsdChecksum(link[offVersion:]) != stored {
			return nil, ErrMalformed
		}
	}

	f := &Frame{
		HasCksum: hasCksum,
		Seq:      link[offSeq],
		Drive:    link[offDriveFlags] & driveMask,
		Flags:    (link[offDriveFlags] & flagsMask) >> 5,
		Subfunc:  link[offSubfunc],
		Payload:  link[HeaderLen:n],
	}
	copy(f.DstMAC[:], link[offDstMAC:offDstMAC+6])
	copy(f.SrcMAC[:], link[offSrcMAC:offSrcMAC+6])
	copy(f.Opaque[:], link[offOpaque:offOpaque+opaqueLen])
	return f, nil
}

// BuildReply constructs the reply frame for req: header bytes 0..51 and the
// sequence byte are reused unchanged except that the MAC addresses are
// swapped and serverMAC becomes the new source. ax is the DOS status word;
// it overwrites bytes 58..59 (the request's drive and subfunction bytes,
// which carry no meaning in a reply). payload is the subfunction-specific
// data starting at offset 60.
func BuildReply(req *Frame, serverMAC [6]byte, ax uint16, payload []byte) []byte {
	total := HeaderLen + len(payload)
	out := make([]byte, total)

	// Swap source/destination MAC: the client becomes the destination, the
	// server is the new source.
	copy(out[offDstMAC:offDstMAC+6], req.SrcMAC[:])
	copy(out[offSrcMAC:offSrcMAC+6], serverMAC[:])
	binary.BigEndian.PutUint16(out[offEtherType:offEtherType+2], EtherType)
	copy(out[offOpaque:offOpaque+opaqueLen], req.Opaque[:])

	binary.LittleEndian.PutUint16(out[offFrameLen:offFrameLen+2], uint16(total))

	verByte := byte(ProtocolVersion)
	if req.HasCksum {
		verByte |= checksumFlag
	}
	out[offVersion] = verByte
	out[offSeq] = req.Seq
	binary.LittleEndian.PutUint16(out[offAX:offAX+2], ax)
	copy(out[HeaderLen:], payload)

	if req.HasCksum {
		sum := bsdChecksum(out[offVersion:])
		binary.LittleEndian.PutUint16(out[offChecksum:offChecksum+2], sum)
	} else {
		binary.LittleEndian.PutUint16(out[offChecksum:offChecksum+2], 0)
	}

	return out
}
