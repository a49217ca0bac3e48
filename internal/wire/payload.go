package wire

import (
	"encoding/binary"
	"fmt"
)

// Reader reads little-endian primitives from a request payload: minimal,
// bounds-checked, no reflection. The wire format is little-endian and not
// 4-byte aligned, so generic codecs like XDR cannot serve here.
type Reader struct {
	b []byte
	o int
}

func NewReader(b []byte) *Reader { return &Reader{b: b} }

func (r *Reader) Remaining() int { return len(r.b) - r.o }

func (r *Reader) U8() (byte, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("wire: need 1 byte, have %d", r.Remaining())
	}
	v := r.b[r.o]
	r.o++
	return v, nil
}

func (r *Reader) U16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, fmt.Errorf("wire: need 2 bytes, have %d", r.Remaining())
	}
	v := binary.LittleEndian.Uint16(r.b[r.o : r.o+2])
	r.o += 2
	return v, nil
}

func (r *Reader) U32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, fmt.Errorf("wire: need 4 bytes, have %d", r.Remaining())
	}
	v := binary.LittleEndian.Uint32(r.b[r.o : r.o+4])
	r.o += 4
	return v, nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("wire: need %d bytes, have %d", n, r.Remaining())
	}
	v := r.b[r.o : r.o+n]
	r.o += n
	return v, nil
}

// PathString reads a DOS path argument: everything from the cursor to the
// end of the payload. Paths on the wire are delimited by the EDF5 frame
// length, not NUL-terminated; an embedded NUL, if a client sends one,
// truncates the path.
func (r *Reader) PathString() string {
	s := r.b[r.o:]
	r.o = len(r.b)
	for i, c := range s {
		if c == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

// Writer builds little-endian reply payloads.
type Writer struct {
	b []byte
}

func NewWriter(capacity int) *Writer {
	if capacity < 0 {
		capacity = 0
	}
	return &Writer{b: make([]byte, 0, capacity)}
}

func (w *Writer) Bytes() []byte { return w.b }

func (w *Writer) U8(v byte) { w.b = append(w.b, v) }

func (w *Writer) U16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *Writer) U32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.b = append(w.b, tmp[:]...)
}

func (w *Writer) Raw(b []byte) { w.b = append(w.b, b...) }
