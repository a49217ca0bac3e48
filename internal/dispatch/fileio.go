package dispatch

import (
	"github.com/etherdfs/ethersrv/internal/fsdb"
	"github.com/etherdfs/ethersrv/internal/fsops"
	"github.com/etherdfs/ethersrv/internal/wire"
)

func dispatchReadFile(ctx *Context, r *wire.Reader) (uint16, []byte) {
	off, _ := r.U32()
	handle, _ := r.U16()
	length, _ := r.U16()

	path, ok := ctx.Handles.Lookup(fsdb.SlotID(handle))
	if !ok {
		return AXAccessDenied, nil
	}

	buf := make([]byte, length)
	n, err := fsops.Read(ctx.FS, path, int64(off), buf)
	if err != nil {
		return AXAccessDenied, nil
	}
	return AXSuccess, buf[:n]
}

func dispatchWriteFile(ctx *Context, r *wire.Reader) (uint16, []byte) {
	off, _ := r.U32()
	handle, _ := r.U16()
	data, _ := r.Bytes(r.Remaining())

	path, ok := ctx.Handles.Lookup(fsdb.SlotID(handle))
	if !ok {
		return AXAccessDenied, nil
	}

	n, err := fsops.Write(ctx.FS, path, int64(off), data)
	if err != nil {
		return AXAccessDenied, nil
	}

	w := wire.NewWriter(2)
	w.U16(uint16(n))
	return AXSuccess, w.Bytes()
}

func dispatchSeekFromEnd(ctx *Context, r *wire.Reader) (uint16, []byte) {
	offset, _ := r.I32()
	handle, _ := r.U16()

	path, ok := ctx.Handles.Lookup(fsdb.SlotID(handle))
	if !ok {
		return AXFileNotFound, nil
	}

	fi, err := fsops.Stat(ctx.FS, path)
	if err != nil {
		return AXFileNotFound, nil
	}

	// The input offset is clamped <= 0, the result >= 0.
	if offset > 0 {
		offset = 0
	}
	newOffset := fi.Size() + int64(offset)
	if newOffset < 0 {
		newOffset = 0
	}

	w := wire.NewWriter(4)
	w.U32(uint32(newOffset))
	return AXSuccess, w.Bytes()
}
